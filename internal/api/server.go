// Package api provides the HTTP surface of the serve command.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/freifunk/gluon-census/internal/coordinator"
	"github.com/freifunk/gluon-census/internal/logger"
	"github.com/freifunk/gluon-census/internal/status"
)

//go:generate mockgen -destination=mocks/mock_census_source.go -package=mocks -source=server.go CensusSource

// CensusSource provides the published census state
type CensusSource interface {
	// Latest returns the last completed census, nil before the first
	Latest() *coordinator.Snapshot

	// Status returns the state of the census loop
	Status() *status.RunStatus
}

// ServerOption configures the HTTP server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	process     prometheus.Gatherer
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithProcessGatherer appends process metrics to the census families on /metrics
func WithProcessGatherer(g prometheus.Gatherer) ServerOption {
	return func(cfg *serverConfig) {
		cfg.process = g
	}
}

// NewServer creates the router serving the census published by src
func NewServer(src CensusSource, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	gatherers := prometheus.Gatherers{snapshotGatherer{src: src}}
	if cfg.process != nil {
		gatherers = append(gatherers, cfg.process)
	}

	h := &handlers{src: src}
	r.Get("/health", healthHandler)
	r.Get("/readiness", h.readiness)
	r.Get("/version", versionHandler)
	r.Get("/status", h.status)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))

	return r
}

// snapshotGatherer gathers from whichever registry is currently published
type snapshotGatherer struct {
	src CensusSource
}

func (g snapshotGatherer) Gather() ([]*dto.MetricFamily, error) {
	snap := g.src.Latest()
	if snap == nil {
		return nil, nil
	}
	return snap.Registry.Gatherer().Gather()
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debugf("HTTP %s %s %d %s %s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start),
			middleware.GetReqID(r.Context()),
		)
	})
}
