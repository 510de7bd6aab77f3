package utils

import (
	"log/slog"
	"os"
)

// NewSlogLogger builds the process logger. Production gets JSON lines for log
// ingestion; everything else gets the text handler.
func NewSlogLogger(environment string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
