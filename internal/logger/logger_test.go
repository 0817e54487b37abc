package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	quiet, err := New(Config{LogFormat: "human"})
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.ErrorLevel))

	debug, err := New(Config{Debug: true, LogFormat: "json"})
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sysuuid.log")

	l, err := New(Config{Debug: true, LogFormat: "json", LogFile: path})
	require.NoError(t, err)

	l.Info("hello", zap.String("component", "test"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestSlogBridge(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	Slog(zap.New(core)).Debug("strategy succeeded", "strategy", "sysfs")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "strategy succeeded", entry.Message)
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
	assert.Equal(t, "sysfs", entry.ContextMap()["strategy"])
}
