package observability

import (
	"io"
	"log/slog"
)

// NewLogger returns a JSON logger at level and installs it as the slog default
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
