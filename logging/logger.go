// Package logging wraps slog.Logger with field names for PCA runs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger wraps slog.Logger with run-specific context.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to w in the given format ("text" or "json") at the
// given level ("debug", "info", "warn" or "error").
func New(w io.Writer, format, level string) (*Logger, error) {
	parsedLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: parsedLevel}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, options)
	case "json":
		handler = slog.NewJSONHandler(w, options)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &Logger{Logger: slog.New(handler)}, nil
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var parsed slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", level)
	}
	return parsed, nil
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", runID)}
}

// WithShape adds the embedding matrix shape to the logger.
func (l *Logger) WithShape(samples, features int) *Logger {
	return &Logger{Logger: l.Logger.With("samples", samples, "features", features)}
}

// LogLoad logs reading the input table.
func (l *Logger) LogLoad(ctx context.Context, source string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"source", source,
			"rows", rows,
		)
	}
}

// LogSelection logs the component count chosen for a threshold.
func (l *Logger) LogSelection(ctx context.Context, threshold float64, components int, captured float64) {
	l.InfoContext(ctx, "components selected",
		"threshold", threshold,
		"components", components,
		"captured_variance", captured,
	)
}

// LogWrite logs writing the reduced table.
func (l *Logger) LogWrite(ctx context.Context, destination string, rows, columns int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"destination", destination,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "write completed",
			"destination", destination,
			"rows", rows,
			"columns", columns,
		)
	}
}
