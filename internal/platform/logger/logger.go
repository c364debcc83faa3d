package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. Services accept a
// *slog.Logger via options, so tests can pass slog.Default() or a discard
// handler.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
