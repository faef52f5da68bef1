package telemetry_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setupRecorder installs a provider that records spans into recorder.
func setupRecorder(t *testing.T, recorder sdktrace.SpanProcessor) func() {
	t.Helper()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	return func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	}
}
