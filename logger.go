package shadematch

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with shadematch-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTarget adds a target index field to the logger.
func (l *Logger) WithTarget(idx int) *Logger {
	return &Logger{
		Logger: l.Logger.With("target", idx),
	}
}

// LogRound logs the outcome of one refinement round.
func (l *Logger) LogRound(ctx context.Context, round, pending, measured int) {
	l.DebugContext(ctx, "round completed",
		"round", round,
		"pending", pending,
		"measured", measured,
	)
}

// LogLocate logs a point-location attempt over the tessellation.
func (l *Logger) LogLocate(ctx context.Context, target int, found bool) {
	l.DebugContext(ctx, "tessellation locate",
		"target", target,
		"found", found,
	)
}

// LogFallbackSearch logs a combinatorial enclosing-simplex search.
func (l *Logger) LogFallbackSearch(ctx context.Context, target, maxNeighbors int, found bool) {
	l.DebugContext(ctx, "enclosing simplex search",
		"target", target,
		"max_neighbors", maxNeighbors,
		"found", found,
	)
}

// LogRefine logs a refinement step.
func (l *Logger) LogRefine(ctx context.Context, target, candidates int, err error) {
	if err != nil {
		l.WarnContext(ctx, "refinement failed",
			"target", target,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "refinement completed",
			"target", target,
			"candidates", candidates,
		)
	}
}

// LogClip logs an out-of-domain candidate that was clipped back into the
// device range. These are warnings: clipping degrades convergence and the
// trail matters for diagnosis.
func (l *Logger) LogClip(ctx context.Context, target int, components []int, input []float64) {
	l.WarnContext(ctx, "candidate clipped to device domain",
		"target", target,
		"components", components,
		"input", input,
	)
}

// LogMeasure logs a batched measurement round-trip.
func (l *Logger) LogMeasure(ctx context.Context, batch int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "measurement failed",
			"batch", batch,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "measurement completed",
			"batch", batch,
		)
	}
}

// LogStatus logs a target status transition.
func (l *Logger) LogStatus(ctx context.Context, target int, status Status, bestError float64) {
	l.InfoContext(ctx, "target status",
		"target", target,
		"status", status.String(),
		"best_error", bestError,
	)
}

// LogFinalScan logs the closing full-pool scan.
func (l *Logger) LogFinalScan(ctx context.Context, resolved, frozen int) {
	l.InfoContext(ctx, "final pool scan completed",
		"resolved", resolved,
		"frozen", frozen,
	)
}
