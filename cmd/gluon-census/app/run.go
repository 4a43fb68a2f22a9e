package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freifunk/gluon-census/internal/config"
	"github.com/freifunk/gluon-census/internal/exporter"
	"github.com/freifunk/gluon-census/internal/logger"
	"github.com/freifunk/gluon-census/internal/report"
)

const flagSummary = "summary"

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [OUTFILE]",
		Short: "Collect census information once and write a Prometheus textfile",
		Long: `Collect census information from every community source, count each node once
and write the result to OUTFILE (default ` + config.DefaultOutputFile + `) in the
Prometheus text exposition format, e.g. for the node_exporter textfile collector.

An interrupt aborts the run without touching OUTFILE.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set(config.KeyOutput, args[0])
			}
			showSummary, err := cmd.Flags().GetBool(flagSummary)
			if err != nil {
				return err
			}
			return runCensus(cmd, v, showSummary)
		},
	}

	cmd.Flags().String(config.KeyOutput, "", "Output textfile (default "+config.DefaultOutputFile+")")
	cmd.Flags().Bool(flagSummary, false, "Print a per-community summary table")
	if err := v.BindPFlag(config.KeyOutput, cmd.Flags().Lookup(config.KeyOutput)); err != nil {
		logger.Errorf("Error binding output flag: %v", err)
	}

	return cmd
}

func runCensus(cmd *cobra.Command, v *viper.Viper, showSummary bool) (err error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx)

	tel, metrics, err := newTelemetry(ctx, cfg)
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

	run, err := collect(ctx, cfg, filter, collector)
	if err != nil {
		return fmt.Errorf("census aborted: %w", err)
	}

	reg := exporter.NewRegistry()
	if err := reg.Flush(run); err != nil {
		return err
	}
	if err := reg.WriteTextfile(ctx, cfg.GetOutputFile()); err != nil {
		return err
	}

	summary := run.Summary()
	summary.Log(logr.FromContextOrDiscard(ctx))

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%d unique nodes\n%d duplicates skipped\n", summary.Unique, summary.Duplicates)

	if showSummary {
		if err := report.WriteCommunities(out, run); err != nil {
			return err
		}
		if err := report.WriteFailures(out, run); err != nil {
			return err
		}
	}

	return nil
}
