package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"success-mcp/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewHandlerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h := NewHandler(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	require.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	slog.New(h).Info("tool.call", "tool", "getTodos")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tool.call"`)
	assert.Contains(t, string(data), `"tool":"getTodos"`)
}

func TestNewHandlerLevelFilter(t *testing.T) {
	h := NewHandler(config.LogConfig{Level: "warn", Console: true, Stderr: true})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
