package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freifunk/gluon-census/internal/api"
	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/config"
	"github.com/freifunk/gluon-census/internal/coordinator"
	"github.com/freifunk/gluon-census/internal/logger"
	"github.com/freifunk/gluon-census/internal/telemetry"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverRequestTimeout   = 10 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second // must exceed serverRequestTimeout
	serverIdleTimeout      = 60 * time.Second
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the census periodically and serve it over HTTP",
		Long: `Run a full census every interval and expose the latest result on /metrics.

Each run starts from scratch and replaces the previously exposed counters.
A change to the communities file starts a new run right away.
/status reports the last run and its per-source results, /health always
answers 200 and /readiness answers 200 once the first run completed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}

	cmd.Flags().String(config.KeyAddress, "", "Address to listen on (default "+config.DefaultServeAddress+")")
	cmd.Flags().String(config.KeyInterval, "", "Time between census runs (default "+config.DefaultServeInterval.String()+")")
	for _, name := range []string{config.KeyAddress, config.KeyInterval} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			logger.Errorf("Error binding %s flag: %v", name, err)
		}
	}

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx)

	processRegistry := prometheus.NewRegistry()
	processRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel, metrics, err := newTelemetry(ctx, cfg, telemetry.WithPrometheusRegisterer(processRegistry))
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := tel.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Warnf("Failed to shut down telemetry: %v", shutdownErr)
		}
	}()

	filter, err := newFilter(cfg)
	if err != nil {
		return err
	}

	collector, err := newCollector(cfg, tel, metrics)
	if err != nil {
		return err
	}

	coord := coordinator.New(func(ctx context.Context) (*census.Run, error) {
		return collect(ctx, cfg, filter, collector)
	}, cfg.GetServeInterval())

	router := api.NewServer(coord,
		api.WithProcessGatherer(processRegistry),
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			api.LoggingMiddleware,
		),
	)

	address := cfg.GetServeAddress()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", listener.Addr())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	go func() {
		if err := coord.Start(logr.NewContext(ctx, logr.FromContextOrDiscard(ctx).WithName("coordinator"))); err != nil {
			logger.Errorf("Census coordinator failed: %v", err)
		}
	}()

	go func() {
		if err := config.WatchCommunities(ctx, cfg.GetCommunitiesFile(), coord.Trigger); err != nil {
			logger.Warnf("Not watching communities file: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Infof("Shutting down server...")
	case err := <-serveErr:
		stop()
		_ = coord.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	if err := coord.Stop(); err != nil {
		logger.Errorf("Failed to stop census coordinator: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logger.Infof("Server shutdown complete")
	return nil
}
