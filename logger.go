package pointgeo

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
)

// Logger wraps slog.Logger with pointgeo-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	// slog.DiscardHandler needs Go 1.24; a handler whose minimum level is
	// unreachable discards every record the same way.
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
}

// WithK adds a k (neighborhood size) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithRadius adds a radius field to the logger.
func (l *Logger) WithRadius(radius float32) *Logger {
	return &Logger{
		Logger: l.Logger.With("radius", radius),
	}
}

// WithBatch adds a batch size field to the logger.
func (l *Logger) WithBatch(batch int) *Logger {
	return &Logger{
		Logger: l.Logger.With("batch", batch),
	}
}

// WithStage adds the stage name and scale to the logger.
func (l *Logger) WithStage(s Stage) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", s.Name, "scale", s.Scale),
	}
}

// LogSample logs a sampling operation.
func (l *Logger) LogSample(ctx context.Context, method string, points, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sample failed",
			"method", method,
			"points", points,
			"samples", samples,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "sample completed",
			"method", method,
			"points", points,
			"samples", samples,
		)
	}
}

// LogQuery logs a neighbor search.
func (l *Logger) LogQuery(ctx context.Context, kind string, queries, k int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "neighbor query failed",
			"kind", kind,
			"queries", queries,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "neighbor query completed",
			"kind", kind,
			"queries", queries,
			"k", k,
		)
	}
}

// LogGroup logs a grouping or pooling step.
func (l *Logger) LogGroup(ctx context.Context, op string, groups, slots int, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"groups", groups,
			"slots", slots,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"groups", groups,
			"slots", slots,
		)
	}
}

// LogInterpolate logs a feature interpolation.
func (l *Logger) LogInterpolate(ctx context.Context, dense, sparse int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "interpolate failed",
			"dense", dense,
			"sparse", sparse,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "interpolate completed",
			"dense", dense,
			"sparse", sparse,
		)
	}
}
