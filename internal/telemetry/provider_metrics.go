package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/leavetime/leavetime/internal/telemetry"

// ProviderMetrics records outbound provider calls and departure searches.
// It satisfies resilience.Recorder.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	searchProbes    metric.Int64Histogram
	weatherDegraded metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on the global meter.
func NewProviderMetrics() (*ProviderMetrics, error) {
	return NewProviderMetricsWithMeter(otel.Meter(meterName))
}

// NewProviderMetricsWithMeter creates the provider instruments on meter.
func NewProviderMetricsWithMeter(meter metric.Meter) (*ProviderMetrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	searchProbes, err := meter.Int64Histogram(
		"trip.search.probes",
		metric.WithDescription("Duration probes issued per departure search"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	weatherDegraded, err := meter.Int64Counter(
		"weather.degraded.total",
		metric.WithDescription("Weather lookups that fell back to the unavailable assessment"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		searchProbes:    searchProbes,
		weatherDegraded: weatherDegraded,
	}, nil
}

// RecordRequest records one provider attempt.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// metrics outlive the request context
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSearch records the probe count of one departure search.
func (m *ProviderMetrics) RecordSearch(ctx context.Context, probes int, leaveNow bool) {
	m.searchProbes.Record(ctx, int64(probes), metric.WithAttributes(
		attribute.Bool("trip.leave_now", leaveNow),
	))
}

// RecordWeatherDegraded counts a weather lookup that failed and was absorbed.
func (m *ProviderMetrics) RecordWeatherDegraded(ctx context.Context) {
	m.weatherDegraded.Add(ctx, 1)
}
