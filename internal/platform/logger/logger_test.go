package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, LoggerConfig{Level: in}.ToZapLevel(), in)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "village.log")
	l := New(LoggerConfig{Level: "warn", Format: "json", OutputFile: path})

	l.Named("Test").Info("dropped below level")
	l.Named("Test").Warn("kept", zap.String("kind", "car"))
	// Sync fails on stdout when it is a pipe; the file tee is unbuffered.
	_ = l.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "dropped below level")
	assert.Contains(t, string(content), `"logger":"Test"`)
	assert.Contains(t, string(content), `"kind":"car"`)
}

func TestNewNop(t *testing.T) {
	l := NewNop().Named("a").With(zap.Int("n", 1))
	assert.NotPanics(t, func() { l.Error("ignored") })
}
