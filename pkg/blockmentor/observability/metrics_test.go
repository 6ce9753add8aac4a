package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a recorder on a private provider with a manual reader.
func setupMetricsTest(t *testing.T) (MetricsRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	return NewMetricsRecorder(provider), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] for %s", name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	recorder, _ := setupMetricsTest(t)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "expected real metrics recorder")

	assert.NotNil(t, NewMetricsRecorder(nil), "nil provider uses the global one")
}

func TestRecordConversion(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	ctx := context.Background()

	recorder.RecordConversion(ctx, 12, 3*time.Millisecond)
	recorder.RecordConversion(ctx, 4, time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, rm, "blockmentor.conversions"))

	lines := findMetric(rm, "blockmentor.conversion.lines")
	require.NotNil(t, lines)
	hist, ok := lines.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(16), hist.DataPoints[0].Sum)

	latency := findMetric(rm, "blockmentor.conversion.latency_ms")
	require.NotNil(t, latency)
	assert.Equal(t, "ms", latency.Unit)
}

func TestRecordLLMCall(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	ctx := context.Background()

	recorder.RecordLLMCall(ctx, "gemini-2.0-flash", "chat", 100*time.Millisecond, nil)
	recorder.RecordLLMCall(ctx, "gemini-2.0-flash", "chat", 50*time.Millisecond, errors.New("boom"))
	recorder.RecordLLMCall(ctx, "gemini-2.5-flash", "describe", 900*time.Millisecond, nil)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(3), sumOf(t, rm, "blockmentor.llm.calls"))
	assert.Equal(t, int64(1), sumOf(t, rm, "blockmentor.llm.errors"))

	calls := findMetric(rm, "blockmentor.llm.calls").Data.(metricdata.Sum[int64])
	found := false
	for _, dp := range calls.DataPoints {
		model, _ := dp.Attributes.Value(attribute.Key("model"))
		op, _ := dp.Attributes.Value(attribute.Key("operation"))
		if model.AsString() == "gemini-2.0-flash" && op.AsString() == "chat" {
			found = true
			assert.Equal(t, int64(2), dp.Value)
		}
	}
	assert.True(t, found, "chat data point missing")
}

func TestRecordRetrieval(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	recorder.RecordRetrieval(context.Background(), 2)
	recorder.RecordRetrieval(context.Background(), 0)

	rm := collectMetrics(t, reader)
	m := findMetric(rm, "blockmentor.retrieval.hits")
	require.NotNil(t, m)
	hist := m.Data.(metricdata.Histogram[int64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(2), hist.DataPoints[0].Sum)
}
