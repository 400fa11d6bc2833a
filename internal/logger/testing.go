package logger

import (
	"io"
	"log/slog"
	"os"
)

// EnvTestLevel sets the level of NewTestLogger, e.g. TEST_LOG_LEVEL=debug.
const EnvTestLevel = "TEST_LOG_LEVEL"

// NewTestLogger creates a logger for tests that only reports warnings and
// errors unless EnvTestLevel asks for more.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if v := os.Getenv(EnvTestLevel); v != "" {
		if parsed, err := ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return NewLogger(Config{Level: level, Format: "text", Output: os.Stdout})
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
