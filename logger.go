package assetstream

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with assetstream-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithAsset adds an asset id field to the logger.
func (l *Logger) WithAsset(id AssetID) *Logger {
	return &Logger{
		Logger: l.Logger.With("asset", uint32(id)),
	}
}

// LogPass logs the outcome of a completed controller pass.
func (l *Logger) LogPass(ctx context.Context, generation uint64, activated, evicted int, total, budget uint64) {
	l.DebugContext(ctx, "residency pass completed",
		"generation", generation,
		"activated", activated,
		"evicted", evicted,
		"total_consumed", total,
		"budget", budget,
	)
}

// LogBackpressure logs a pass skipped because async work is lagging.
func (l *Logger) LogBackpressure(ctx context.Context, generation, completed uint64) {
	l.InfoContext(ctx, "residency pass skipped, async work lagging",
		"generation", generation,
		"completed_units", completed,
	)
}

// LogEviction logs assets released to get back under budget.
func (l *Logger) LogEviction(ctx context.Context, evicted int, total, budget uint64) {
	l.InfoContext(ctx, "evicted assets",
		"count", evicted,
		"total_consumed", total,
		"budget", budget,
	)
}

// LogSwap logs the release of all assets on instantiator replacement or Close.
func (l *Logger) LogSwap(ctx context.Context, released, assets int) {
	l.InfoContext(ctx, "instantiator detached",
		"released", released,
		"assets", assets,
	)
}

// LogRegister logs a path registration.
func (l *Logger) LogRegister(ctx context.Context, path string, id AssetID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "register failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "register completed",
			"path", path,
			"asset", uint32(id),
		)
	}
}
