// Package logging defines the structured-logging contract used across the
// record pipeline and the credential services, plus an slog-backed
// implementation. Services take the interface so tests can hand in a
// discarding logger.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Warn(ctx, "record failed integrity check", "record_id", id)
//
// Callers must never pass plaintext record content, passwords or token
// strings as values; identifiers only.
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning for unusual but non-fatal conditions, including
	// every tamper and replay detection.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs. Services use it to tag themselves with a "module" attribute.
	With(args ...any) Logger
}
