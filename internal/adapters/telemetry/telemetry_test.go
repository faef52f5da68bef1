package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/openge/internal/adapters/telemetry"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/openge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = (*telemetry.NoOpSpan)(nil)
	var _ sdktrace.SpanProcessor = (*telemetry.LogBridge)(nil)
}

func TestOTelTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	shutdown := setupRecorder(t, recorder)
	defer shutdown()

	tracer := telemetry.NewOTelTracer("test")
	ctx, span := tracer.Start(context.Background(), "job", ports.WithAttribute("tasks", 3))
	tracer.EmitPlan(ctx, []string{"a", "b"})
	span.SetAttribute("worker", "w1")
	n, err := span.Write([]byte("line"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	span.RecordError(errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "job", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)

	var events []string
	for _, e := range ended[0].Events() {
		events = append(events, e.Name)
	}
	assert.Equal(t, []string{"plan_emitted", "log", "exception"}, events)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx := context.Background()
	got, span := tracer.Start(ctx, "span")
	assert.Equal(t, ctx, got)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	n, err := span.Write([]byte("test log"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	span.End()
}

func TestLogBridge(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	logger.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, "ok-span took")
	})
	logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		assert.True(t, strings.HasSuffix(msg, ": exit 1"), msg)
	})

	shutdown := telemetry.Setup(logger)
	defer func() { require.NoError(t, shutdown(context.Background())) }()

	tracer := telemetry.NewOTelTracer("test")
	_, ok := tracer.Start(context.Background(), "ok-span")
	ok.End()

	_, failed := tracer.Start(context.Background(), "bad-span")
	failed.RecordError(errors.New("exit 1"))
	failed.End()
}
