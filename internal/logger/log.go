package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"success-mcp/internal/config"

	"gopkg.in/lumberjack.v2"
)

// Init installs the process logger. When cfg.Stderr is set console output
// goes to stderr, which the stdio transport requires because stdout carries
// protocol frames.
func Init(cfg config.LogConfig) {
	slog.SetDefault(slog.New(NewHandler(cfg)))
	Info("logger initialized", "level", cfg.Level, "file", cfg.File)
}

func NewHandler(cfg config.LogConfig) slog.Handler {
	level := parseLevel(cfg.Level)

	var writers []io.Writer
	if cfg.Console {
		if cfg.Stderr {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, os.Stdout)
		}
	}
	if cfg.File != "" {
		writers = append(writers, RotatingFile(cfg.File, cfg))
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	return slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
}

// RotatingFile returns a size-rotated append-only file writer.
func RotatingFile(path string, cfg config.LogConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
