// Package logging defines the minimal structured-logging interface the
// storage services log through. Implementations can wrap slog, zap, zerolog,
// etc.; a slog-backed one is provided.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key–value pairs:
//
//	log.Info(ctx, "file uploaded", "path", path, "blocks", n)
type Logger interface {
	// Debug logs fine-grained flow detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value
	// pairs.
	With(args ...any) Logger
}
