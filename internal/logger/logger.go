package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Err returns the canonical attribute used for logging errors.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

// New builds a text slog handler at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func New(out io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
