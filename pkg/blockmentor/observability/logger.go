// Package observability provides structured logging, metrics and tracing
// for blockmentor.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Metrics and tracing have no-op implementations for when they are disabled.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger creates a logger writing text or json records to w.
// It does not touch the global logger.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text", "":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(h), nil
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type loggerKey struct{}

// WithLogger stores a request-scoped logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger stored in ctx, or fallback.
func LoggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// EnrichLogger adds request context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "4f0c...", "chat")
//	enriched.Info("calling model") // includes request_id and operation
func EnrichLogger(logger *slog.Logger, requestID, operation string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("request_id", requestID),
		slog.String("operation", operation),
	)
}

// LogConversion logs a finished flowchart conversion.
func LogConversion(logger *slog.Logger, blocks, lines, skipped, orphans int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("flowchart converted",
		slog.Int("blocks", blocks),
		slog.Int("lines", lines),
		slog.Int("skipped", skipped),
		slog.Int("orphans", orphans),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogLLMCall logs a completed or failed model call.
func LogLLMCall(logger *slog.Logger, model, mentor string, attempts int, durationMs float64, err error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("model", model),
		slog.Int("attempts", attempts),
		slog.Float64("duration_ms", durationMs),
	}
	if mentor != "" {
		attrs = append(attrs, slog.String("mentor", mentor))
	}
	if err != nil {
		logger.Error("llm call failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	logger.Info("llm call completed", attrs...)
}

// LogRetrieval logs the scores of a context search.
func LogRetrieval(logger *slog.Logger, scores []float64, kept int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("context retrieved",
		slog.Any("scores", scores),
		slog.Int("kept", kept),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRetrievalError logs a failed context search (non-fatal).
func LogRetrievalError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("context retrieval failed, continuing without context",
		slog.String("error", err.Error()),
	)
}

// LogRequest logs a served HTTP request.
func LogRequest(logger *slog.Logger, requestID, method, path string, status int, durationMs float64) {
	if logger == nil {
		return
	}
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	} else if status >= 400 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "request served",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation returns a function reporting the elapsed milliseconds.
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
