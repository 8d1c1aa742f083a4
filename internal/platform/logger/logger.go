package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog.
// The dev environment logs at debug level; everything else at info.
func New(environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment)
}

// NewWithWriter is New with an explicit destination, used by the CLI to keep
// stdout free for report output.
func NewWithWriter(w io.Writer, environment string) *slog.Logger {
	level := slog.LevelInfo
	if environment == "dev" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "agedist")
}
