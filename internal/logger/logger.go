package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type implLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// New creates a Logger writing to stdout. Format "json" emits one JSON object
// per line, anything else uses the colored text handler.
func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(level, format string, w io.Writer) Logger {
	lvl := parseLevel(level)

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.DateTime,
			NoColor:    w != os.Stdout,
		})
	}

	return &implLogger{
		logger: slog.New(handler),
		level:  lvl,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &implLogger{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		level:  slog.LevelError + 1,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo // default to info
	}
}

func (l *implLogger) shouldLog(level slog.Level) bool {
	return level >= l.level
}

func (l *implLogger) log(ctx context.Context, level slog.Level, msg string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(ctx, level, msg)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelError, msg, args...)
}
