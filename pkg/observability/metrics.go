package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	Port        int
}

// InitMetrics initializes the Prometheus metrics exporter and registers the
// provider globally. Returns the MeterProvider and an HTTP handler for the
// /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	return provider, promhttp.Handler(), nil
}

// AdvisorMetrics are the instruments recorded by the advisor use cases and
// background jobs. A zero AdvisorMetrics is valid and records nothing.
type AdvisorMetrics struct {
	recommendationRuns     otelmetric.Int64Counter
	recommendationDuration otelmetric.Float64Histogram
	candidateOutcomes      otelmetric.Int64Counter
	catalogSyncs           otelmetric.Int64Counter
	outboxRelayed          otelmetric.Int64Counter
}

// NewAdvisorMetrics creates the instruments on the meter of provider. A nil
// provider falls back to the global one.
func NewAdvisorMetrics(provider otelmetric.MeterProvider, serviceName string) (*AdvisorMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(serviceName)

	m := &AdvisorMetrics{}
	var err error
	if m.recommendationRuns, err = meter.Int64Counter(
		"advisor.recommendation.runs",
		otelmetric.WithDescription("Number of recommendation runs"),
	); err != nil {
		return nil, err
	}
	if m.recommendationDuration, err = meter.Float64Histogram(
		"advisor.recommendation.duration",
		otelmetric.WithDescription("Recommendation run duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.candidateOutcomes, err = meter.Int64Counter(
		"advisor.recommendation.candidates",
		otelmetric.WithDescription("Evaluated products by outcome"),
	); err != nil {
		return nil, err
	}
	if m.catalogSyncs, err = meter.Int64Counter(
		"advisor.catalog.syncs",
		otelmetric.WithDescription("Catalog synchronisations by status"),
	); err != nil {
		return nil, err
	}
	if m.outboxRelayed, err = meter.Int64Counter(
		"advisor.outbox.relayed",
		otelmetric.WithDescription("Outbox entries published to the broker"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRecommendationRun records one run, its duration and the number of
// recommended, rejected and failed candidates.
func (m *AdvisorMetrics) RecordRecommendationRun(ctx context.Context, d time.Duration, status string, recommended, rejected, failed int) {
	if m == nil || m.recommendationRuns == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	m.recommendationRuns.Add(ctx, 1, attrs)
	m.recommendationDuration.Record(ctx, float64(d.Milliseconds()), attrs)

	for outcome, n := range map[string]int{"recommended": recommended, "rejected": rejected, "failed": failed} {
		if n > 0 {
			m.candidateOutcomes.Add(ctx, int64(n), otelmetric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}
}

// RecordCatalogSync records a catalog synchronisation attempt.
func (m *AdvisorMetrics) RecordCatalogSync(ctx context.Context, status string) {
	if m == nil || m.catalogSyncs == nil {
		return
	}
	m.catalogSyncs.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("status", status)))
}

// RecordOutboxRelayed records the number of outbox entries published.
func (m *AdvisorMetrics) RecordOutboxRelayed(ctx context.Context, n int) {
	if m == nil || m.outboxRelayed == nil || n == 0 {
		return
	}
	m.outboxRelayed.Add(ctx, int64(n))
}
