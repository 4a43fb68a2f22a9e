package app

import (
	"context"
	"fmt"

	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/config"
	"github.com/freifunk/gluon-census/internal/filtering"
	"github.com/freifunk/gluon-census/internal/formats"
	"github.com/freifunk/gluon-census/internal/httpclient"
	"github.com/freifunk/gluon-census/internal/logger"
	"github.com/freifunk/gluon-census/internal/sources"
	"github.com/freifunk/gluon-census/internal/telemetry"
	"github.com/freifunk/gluon-census/pkg/versions"
)

// newTelemetry creates the providers and census instruments of cfg
func newTelemetry(ctx context.Context, cfg *config.Config, opts ...telemetry.Option) (*telemetry.Telemetry, *telemetry.CensusMetrics, error) {
	opts = append([]telemetry.Option{
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithServiceVersion(versions.GetVersionInfo().Version),
	}, opts...)

	tel, err := telemetry.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := telemetry.NewCensusMetrics(tel.MeterProvider())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, nil, fmt.Errorf("failed to create census metrics: %w", err)
	}

	return tel, metrics, nil
}

// newCollector wires the fetch pipeline configured by cfg
func newCollector(cfg *config.Config, tel *telemetry.Telemetry, metrics *telemetry.CensusMetrics) (*census.Collector, error) {
	registry, err := formats.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build format registry: %w", err)
	}

	factory := sources.NewSourceHandlerFactory(httpclient.NewDefaultClient(cfg.GetTimeout()))
	loader := sources.NewLoader(factory, registry)

	return census.NewCollector(loader,
		census.WithWorkers(cfg.GetWorkers()),
		census.WithMetrics(metrics),
		census.WithTracerProvider(tel.TracerProvider()),
	), nil
}

// newFilter compiles the community filter of cfg
func newFilter(cfg *config.Config) (filtering.CommunityFilter, error) {
	include, exclude := cfg.GetFilter()
	return filtering.NewCommunityFilter(include, exclude)
}

// collect reads the communities file and runs one census over the
// communities passing filter
func collect(ctx context.Context, cfg *config.Config, filter filtering.CommunityFilter, collector *census.Collector) (*census.Run, error) {
	communities, err := config.LoadCommunities(cfg.GetCommunitiesFile())
	if err != nil {
		return nil, err
	}

	srcs := filtering.Apply(filter, communities.Sources(), func(community, reason string) {
		logger.Debugf("Skipping community %s: %s", community, reason)
	})
	return collector.Collect(ctx, srcs)
}
