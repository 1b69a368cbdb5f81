package logger

import "context"

// Logger is the leveled, printf-style logger shared by every component.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}
