// Package logging is the structured logger used by every imagevault
// component. The only implementation wraps log/slog with a JSON handler.
package logging

import "context"

// Logger takes a message plus alternating key/value pairs:
//
//	logger.Warn(ctx, "token rejected", "request_id", id, "error", err.Error())
//
// Components scope their logger once with With("module", name).
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
