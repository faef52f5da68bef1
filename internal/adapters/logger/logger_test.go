package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing uncolored output to a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{name: "info", log: func(l *logger.Logger) { l.Info("worker w1 listening on :7600") }, goldenName: "info_basic"},
		{name: "warn", log: func(l *logger.Logger) { l.Warn("reservation idle timeout expired") }, goldenName: "warn_basic"},
		{name: "error chain", log: func(l *logger.Logger) {
			l.Error(zerr.Wrap(zerr.Wrap(errors.New("connection refused"), "failed to dial worker"), "job failed"))
		}, goldenName: "error_chain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("hello")
	lg.Error(errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var info, failure map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &info))
	require.NoError(t, json.Unmarshal(lines[1], &failure))
	assert.Equal(t, "hello", info["msg"])
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "boom", failure["error"])
}

func TestErrorChain(t *testing.T) {
	err := zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer")
	assert.Equal(t, []string{"outer layer", "middle layer", "root cause"}, logger.ErrorChain(err))
	assert.Equal(t, []string{"plain"}, logger.ErrorChain(errors.New("plain")))
}

func TestFormatChain(t *testing.T) {
	got := logger.FormatChain([]string{"outer\nsecond line", "cause"})
	assert.Equal(t, "Error: outer\n       second line\n\n  Caused by:\n    → cause", got)
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).WithGroup("task").With("id", "t1")
	lg.Debug("filtered")
	lg.Info("started", "core", 3)

	assert.Equal(t, "started task.id=t1 task.core=3\n", buf.String())
}
