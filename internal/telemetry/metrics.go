package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CensusMeterName is the meter of census run instruments
	CensusMeterName = "github.com/freifunk/gluon-census/census"

	// CensusTracerName is the tracer of census run spans
	CensusTracerName = "github.com/freifunk/gluon-census/census"
)

// CensusMetrics holds the OpenTelemetry instruments of census runs
type CensusMetrics struct {
	fetchDuration metric.Float64Histogram
	nodesTotal    metric.Int64Counter
	duplicates    metric.Int64Counter
}

// NewCensusMetrics creates the census instruments. A nil provider yields
// nil metrics, on which every Record method is a no-op.
func NewCensusMetrics(provider metric.MeterProvider) (*CensusMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CensusMeterName)

	fetchDuration, err := meter.Float64Histogram(
		"gluon_census_fetch_duration_seconds",
		metric.WithDescription("Duration of fetching and parsing one census source"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	nodesTotal, err := meter.Int64Counter(
		"gluon_census_nodes",
		metric.WithDescription("Unique nodes counted by census runs"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	duplicates, err := meter.Int64Counter(
		"gluon_census_duplicates",
		metric.WithDescription("Node reports skipped because the node was already counted"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	return &CensusMetrics{
		fetchDuration: fetchDuration,
		nodesTotal:    nodesTotal,
		duplicates:    duplicates,
	}, nil
}

// RecordFetch records how long one source took and whether it succeeded
func (m *CensusMetrics) RecordFetch(ctx context.Context, community, format string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("community", community),
		attribute.String("format", format),
		attribute.Bool("success", success),
	))
}

// RecordNodes adds counted nodes of one community, split by gluon/alien class
func (m *CensusMetrics) RecordNodes(ctx context.Context, community string, gluon, alien int) {
	if m == nil {
		return
	}

	m.nodesTotal.Add(ctx, int64(gluon), metric.WithAttributes(
		attribute.String("community", community), attribute.String("class", "gluon")))
	m.nodesTotal.Add(ctx, int64(alien), metric.WithAttributes(
		attribute.String("community", community), attribute.String("class", "alien")))
}

// RecordDuplicates adds skipped duplicate reports
func (m *CensusMetrics) RecordDuplicates(ctx context.Context, count int) {
	if m == nil {
		return
	}

	m.duplicates.Add(ctx, int64(count))
}

// StartSourceSpan starts the span covering one source. A nil provider
// returns ctx unchanged and a non-recording span.
func StartSourceSpan(ctx context.Context, provider trace.TracerProvider, community, url string) (context.Context, trace.Span) {
	if provider == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}

	return provider.Tracer(CensusTracerName).Start(ctx, "census.source", trace.WithAttributes(
		attribute.String("census.community", community),
		attribute.String("census.url", url),
	))
}
