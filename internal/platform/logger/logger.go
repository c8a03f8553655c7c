package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Production environments get JSON output for
// log pipelines; everything else gets human-readable text.
func New(environment string) *slog.Logger {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler).With("service", "bre-gateway")
}
