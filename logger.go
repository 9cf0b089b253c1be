package segmenta

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with segmenta-specific context.
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

// WithQuery adds a query field to the logger.
func (l *Logger) WithQuery(query string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", query),
	}
}

// WithK adds a k (segment or result count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCatalogVersion adds a catalog version field to the logger.
func (l *Logger) WithCatalogVersion(version uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("catalog_version", version),
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, query string, topK, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"top_k", topK,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"top_k", topK,
			"results", resultsFound,
		)
	}
}

// LogRefine logs a refinement operation.
func (l *Logger) LogRefine(ctx context.Context, topK, excluded, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "refine failed",
			"top_k", topK,
			"excluded", excluded,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "refine completed",
			"top_k", topK,
			"excluded", excluded,
			"results", resultsFound,
		)
	}
}

// LogPartition logs a partition run.
func (l *Logger) LogPartition(ctx context.Context, k, records, iterations int, converged bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "partition failed",
			"k", k,
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "partition completed",
			"k", k,
			"records", records,
			"iterations", iterations,
			"converged", converged,
		)
	}
}

// LogCatalogBuild logs a catalog build.
func (l *Logger) LogCatalogBuild(ctx context.Context, variables int, version uint64, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog build failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "catalog built",
			"variables", variables,
			"version", version,
			"took", took,
		)
	}
}

// LogCatalogSwap logs a catalog swap.
func (l *Logger) LogCatalogSwap(ctx context.Context, oldVersion, newVersion uint64) {
	l.InfoContext(ctx, "catalog swapped",
		"old_version", oldVersion,
		"new_version", newVersion,
	)
}
