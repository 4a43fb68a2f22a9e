package census

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/freifunk/gluon-census/internal/config"
	"github.com/freifunk/gluon-census/internal/httpclient"
	"github.com/freifunk/gluon-census/internal/sources"
	"github.com/freifunk/gluon-census/internal/telemetry"
)

// DefaultWorkers is the size of the worker pool when none is configured
const DefaultWorkers = 16

//go:generate mockgen -destination=mocks/mock_loader.go -package=mocks -source=collector.go SourceLoader

// SourceLoader fetches one source and extracts its nodes
type SourceLoader interface {
	Load(ctx context.Context, rawURL string) (*sources.FetchResult, error)
}

// Collector runs a census over a list of sources with bounded parallelism
type Collector struct {
	loader  SourceLoader
	workers int
	metrics *telemetry.CensusMetrics
	tracer  trace.TracerProvider
}

// Option configures a Collector
type Option func(*Collector)

// WithWorkers sets the worker pool size. Values below one keep the default.
func WithWorkers(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMetrics records run instruments into m
func WithMetrics(m *telemetry.CensusMetrics) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

// WithTracerProvider traces each source with tp
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Collector) {
		c.tracer = tp
	}
}

// NewCollector creates a collector reading sources through loader
func NewCollector(loader SourceLoader, opts ...Option) *Collector {
	c := &Collector{
		loader:  loader,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect processes every source and returns the finished run. Source
// failures are recorded in the run's results. Cancelling ctx aborts the whole
// run: Collect then returns ctx.Err() and no run.
func (c *Collector) Collect(ctx context.Context, srcs []config.Source) (*Run, error) {
	log := logr.FromContextOrDiscard(ctx)
	run := NewRun()
	log = log.WithValues("run", run.ID.String())
	ctx = logr.NewContext(ctx, log)

	log.V(1).Info("Starting census", "sources", len(srcs), "workers", c.workers)

	results := make(chan SourceResult, len(srcs))
	var g errgroup.Group
	g.SetLimit(c.workers)

	go func() {
		defer close(results)
		for _, src := range srcs {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results <- c.process(ctx, run, src)
				return nil
			})
		}
		_ = g.Wait()
	}()

	for res := range results {
		if ctx.Err() != nil {
			continue
		}
		run.addResult(res)
		if res.Err != nil {
			log.Info("Source failed", "community", res.Community, "url", res.URL, "error", res.Err.Error())
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.finish()
	c.recordRun(ctx, run)
	return run, nil
}

func (c *Collector) process(ctx context.Context, run *Run, src config.Source) SourceResult {
	start := time.Now()
	ctx, span := telemetry.StartSourceSpan(ctx, c.tracer, src.Community, src.URL)
	defer span.End()

	res := SourceResult{Community: src.Community, URL: src.URL}

	fetched, err := c.loader.Load(ctx, src.URL)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if status := httpclient.StatusCode(err); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		c.metrics.RecordFetch(ctx, src.Community, "", res.Duration, false)
		return res
	}

	logr.FromContextOrDiscard(ctx).Info("Processing", "format", fetched.Format, "url", src.URL)
	span.SetAttributes(attribute.String("census.format", fetched.Format))

	rec := run.Record(src.Community, fetched.Format, fetched.Nodes)

	res.Format = fetched.Format
	res.Nodes = rec.Counted()
	res.Duplicates = rec.Duplicates
	res.Skipped = fetched.Skipped
	res.Duration = time.Since(start)
	c.metrics.RecordFetch(ctx, src.Community, fetched.Format, res.Duration, true)
	return res
}

func (c *Collector) recordRun(ctx context.Context, run *Run) {
	for _, name := range run.Communities() {
		agg, _ := run.Aggregate(name)
		gluon, alien := agg.Nodes()
		c.metrics.RecordNodes(ctx, name, gluon, alien)
	}
	c.metrics.RecordDuplicates(ctx, run.Duplicates())
}
