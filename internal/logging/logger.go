// Package logging defines the structured-logging interface used by every
// TrailKeeper component and a slog-backed implementation of it.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "push finished", "hikes", n, "identity", uid)
type Logger interface {
	// Debug logs verbose diagnostics (payload sizes, skipped documents).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a recoverable per-record failure that did not abort a batch.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure that is surfaced to the caller.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
