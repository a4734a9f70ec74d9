package codegen

import (
	"context"
	"log/slog"
)

// LevelTrace sits between Info and Warn so translation traces can be enabled
// without the rest of the debug output.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
