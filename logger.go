package tuplego

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tuplego-specific helpers for
// structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, a default text handler to stderr is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogScan logs a scan operation.
func (l *Logger) LogScan(ctx context.Context, pointLookup bool, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"point_lookup", pointLookup,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scan completed",
			"point_lookup", pointLookup,
			"rows", rows,
		)
	}
}

// LogWrite logs a write operation.
func (l *Logger) LogWrite(ctx context.Context, groups int, rows int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"groups", groups,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "write completed",
			"groups", groups,
			"rows", rows,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"name", name,
		)
	}
}
