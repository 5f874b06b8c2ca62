package batbit

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with batbit-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(c Component) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", c.String()),
	}
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBatch logs a batch operation.
func (l *Logger) LogBatch(ctx context.Context, op string, count, workers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch failed",
			"op", op,
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "batch completed",
			"op", op,
			"count", count,
			"workers", workers,
		)
	}
}

// LogSchema logs a column definition.
func (l *Logger) LogSchema(ctx context.Context, column string, kind string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add column failed",
			"column", column,
			"kind", kind,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "column added",
			"column", column,
			"kind", kind,
		)
	}
}

// LogAllocationFailure logs a refused memory reservation.
func (l *Logger) LogAllocationFailure(ctx context.Context, op string, usage, limit int64, err error) {
	l.WarnContext(ctx, "memory reservation refused",
		"op", op,
		"usage_bytes", usage,
		"limit_bytes", limit,
		"error", err,
	)
}
