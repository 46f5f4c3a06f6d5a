package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*LoggerAdapter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core)), logs
}

func TestLoggerAdapter_KeyValueArgs(t *testing.T) {
	l, logs := newObserved()

	l.Info("Task completed", "taskId", "t-1", "category", "ALLOWED")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Task completed", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "t-1", entry.ContextMap()["taskId"])
	assert.Equal(t, "ALLOWED", entry.ContextMap()["category"])
}

func TestLoggerAdapter_OddArgsAndErrors(t *testing.T) {
	l, logs := newObserved()

	l.Error("LLM call failed", "error", errors.New("boom"), "dangling")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Contains(t, ctx, "dangling")
}

func TestLoggerAdapter_WithFields(t *testing.T) {
	l, logs := newObserved()

	scoped := l.WithField("taskId", "t-2").WithFields(map[string]any{"topic": "analyze-fare-rules"})
	scoped.Debug("Fetched task")
	l.Warn("Unscoped")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "t-2", logs.All()[0].ContextMap()["taskId"])
	assert.Equal(t, "analyze-fare-rules", logs.All()[0].ContextMap()["topic"])
	assert.NotContains(t, logs.All()[1].ContextMap(), "taskId")
}

func TestNewLoggerAdapter_Level(t *testing.T) {
	l, err := NewLoggerAdapter(Config{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Zap().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Zap().Core().Enabled(zapcore.WarnLevel))
	assert.NoError(t, l.Close())

	_, err = NewLoggerAdapter(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLoggerAdapter_Development(t *testing.T) {
	l, err := NewLoggerAdapter(Config{Development: true})
	require.NoError(t, err)
	assert.True(t, l.Zap().Core().Enabled(zapcore.DebugLevel))
	assert.NoError(t, l.Close())

	l, err = NewLoggerAdapter(Config{Development: true, Level: "info"})
	require.NoError(t, err)
	assert.False(t, l.Zap().Core().Enabled(zapcore.DebugLevel))
	assert.NoError(t, l.Close())
}
