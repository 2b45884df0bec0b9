package observability

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("aggregation is %T, want Sum[int64]", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestAdvisorMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewAdvisorMetrics(provider, "test")
	if err != nil {
		t.Fatalf("NewAdvisorMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordRecommendationRun(ctx, 120*time.Millisecond, "ok", 5, 3, 1)
	m.RecordCatalogSync(ctx, "ok")
	m.RecordOutboxRelayed(ctx, 4)
	m.RecordOutboxRelayed(ctx, 0)

	got := collect(t, reader)
	if n := sumOf(t, got["advisor.recommendation.runs"]); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
	if n := sumOf(t, got["advisor.recommendation.candidates"]); n != 9 {
		t.Errorf("candidates = %d, want 9", n)
	}
	if n := sumOf(t, got["advisor.catalog.syncs"]); n != 1 {
		t.Errorf("catalog syncs = %d, want 1", n)
	}
	if n := sumOf(t, got["advisor.outbox.relayed"]); n != 4 {
		t.Errorf("outbox relayed = %d, want 4", n)
	}
	if _, ok := got["advisor.recommendation.duration"].(metricdata.Histogram[float64]); !ok {
		t.Error("duration histogram not recorded")
	}
}

func TestAdvisorMetricsNilSafe(t *testing.T) {
	var m *AdvisorMetrics
	m.RecordRecommendationRun(context.Background(), time.Second, "ok", 1, 0, 0)
	m.RecordCatalogSync(context.Background(), "error")
	m.RecordOutboxRelayed(context.Background(), 1)
}
