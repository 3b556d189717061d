package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShouldLog(t *testing.T) {
	cfg := &LoggerConfig{Level: "warn"}

	assert.False(t, cfg.ShouldLog("debug"))
	assert.False(t, cfg.ShouldLog("info"))
	assert.True(t, cfg.ShouldLog("warn"))
	assert.True(t, cfg.ShouldLog("ERROR"))
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := NewLogger(&LoggerConfig{Level: "info", Format: "json", OutputFile: path})

	l.Named("test").Info("hello", zap.String("listing_id", "abc"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"listing_id":"abc"`)
	assert.Contains(t, string(data), `"logger":"test"`)
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	l := NewLogger(&LoggerConfig{Level: "loud", Format: "console", OutputFile: "stderr"})
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}
