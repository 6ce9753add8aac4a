package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records blockmentor metrics.
// Use NewMetricsRecorder for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordConversion records a flowchart conversion.
	RecordConversion(ctx context.Context, lines int, duration time.Duration)

	// RecordLLMCall records a model call with its outcome.
	RecordLLMCall(ctx context.Context, model, operation string, duration time.Duration, err error)

	// RecordRetrieval records how many context passages passed the threshold.
	RecordRetrieval(ctx context.Context, hits int)
}

type otelMetrics struct {
	conversions       metric.Int64Counter
	conversionLatency metric.Float64Histogram
	conversionLines   metric.Int64Histogram
	llmCalls          metric.Int64Counter
	llmErrors         metric.Int64Counter
	llmLatency        metric.Float64Histogram
	retrievalHits     metric.Int64Histogram
}

func newOtelMetrics(provider metric.MeterProvider) (*otelMetrics, error) {
	meter := provider.Meter("blockmentor")
	m := &otelMetrics{}
	var err error

	if m.conversions, err = meter.Int64Counter("blockmentor.conversions",
		metric.WithDescription("Number of flowchart conversions"),
	); err != nil {
		return nil, err
	}
	if m.conversionLatency, err = meter.Float64Histogram("blockmentor.conversion.latency_ms",
		metric.WithDescription("Flowchart conversion latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.conversionLines, err = meter.Int64Histogram("blockmentor.conversion.lines",
		metric.WithDescription("Lines per flowchart"),
	); err != nil {
		return nil, err
	}
	if m.llmCalls, err = meter.Int64Counter("blockmentor.llm.calls",
		metric.WithDescription("Number of language model calls"),
	); err != nil {
		return nil, err
	}
	if m.llmErrors, err = meter.Int64Counter("blockmentor.llm.errors",
		metric.WithDescription("Number of failed language model calls"),
	); err != nil {
		return nil, err
	}
	if m.llmLatency, err = meter.Float64Histogram("blockmentor.llm.latency_ms",
		metric.WithDescription("Language model call latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.retrievalHits, err = meter.Int64Histogram("blockmentor.retrieval.hits",
		metric.WithDescription("Context passages kept per query"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns an OTel recorder on provider, or on the global
// meter provider when provider is nil. If the instruments cannot be created
// it logs a warning and returns NoopMetrics.
func NewMetricsRecorder(provider metric.MeterProvider) MetricsRecorder {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	m, err := newOtelMetrics(provider)
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func (m *otelMetrics) RecordConversion(ctx context.Context, lines int, duration time.Duration) {
	m.conversions.Add(ctx, 1)
	m.conversionLatency.Record(ctx, ms(duration))
	m.conversionLines.Record(ctx, int64(lines))
}

func (m *otelMetrics) RecordLLMCall(ctx context.Context, model, operation string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
	)
	m.llmCalls.Add(ctx, 1, attrs)
	m.llmLatency.Record(ctx, ms(duration), attrs)
	if err != nil {
		m.llmErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordRetrieval(ctx context.Context, hits int) {
	m.retrievalHits.Record(ctx, int64(hits))
}
