package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/orgchart"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Organization view metrics
	OrganizationCacheHits    metric.Int64Counter
	OrganizationCacheMisses  metric.Int64Counter
	OrganizationRebuilds     metric.Int64Counter
	OrganizationRebuildError metric.Int64Counter
	OrganizationCacheClears  metric.Int64Counter
	OrganizationRebuildTime  metric.Float64Histogram

	// Mutation metrics
	MutationsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.OrganizationCacheHits, _ = meter.Int64Counter(
		"orgchart.organization.cache.hits.total",
		metric.WithDescription("Total number of organization reads served from the cached snapshot"),
		metric.WithUnit("{read}"),
	)

	m.OrganizationCacheMisses, _ = meter.Int64Counter(
		"orgchart.organization.cache.misses.total",
		metric.WithDescription("Total number of organization reads that found no cached snapshot"),
		metric.WithUnit("{read}"),
	)

	m.OrganizationRebuilds, _ = meter.Int64Counter(
		"orgchart.organization.rebuilds.total",
		metric.WithDescription("Total number of organization tree rebuilds"),
		metric.WithUnit("{rebuild}"),
	)

	m.OrganizationRebuildError, _ = meter.Int64Counter(
		"orgchart.organization.rebuilds.errors.total",
		metric.WithDescription("Total number of failed organization tree rebuilds"),
		metric.WithUnit("{error}"),
	)

	m.OrganizationCacheClears, _ = meter.Int64Counter(
		"orgchart.organization.cache.clears.total",
		metric.WithDescription("Total number of manual organization cache clears"),
		metric.WithUnit("{clear}"),
	)

	m.OrganizationRebuildTime, _ = meter.Float64Histogram(
		"orgchart.organization.rebuild.duration",
		metric.WithDescription("Duration of organization tree rebuilds"),
		metric.WithUnit("ms"),
	)

	m.MutationsTotal, _ = meter.Int64Counter(
		"orgchart.mutations.total",
		metric.WithDescription("Total number of successful person and group mutations"),
		metric.WithUnit("{mutation}"),
	)

	return m
}
