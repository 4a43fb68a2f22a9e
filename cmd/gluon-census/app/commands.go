// Package app provides the commands of the gluon-census binary.
package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freifunk/gluon-census/internal/config"
	"github.com/freifunk/gluon-census/internal/logger"
	"github.com/freifunk/gluon-census/pkg/versions"
)

const flagConfig = "config"

// NewRootCmd creates the root command with its subcommands. Every call
// returns an independent command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:               "gluon-census",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Short:             "Census of Gluon mesh nodes for Prometheus",
		Long: `gluon-census reads the node feeds (meshviewer.json, nodes.json) of Freifunk
communities, counts every node once and exports firmware, model, domain and
source statistics as Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to configuration file (YAML format)")
	flags.String(config.KeyCommunities, "", "Path to the communities source list (default "+config.DefaultCommunitiesFile+")")
	flags.Int(config.KeyWorkers, 0, fmt.Sprintf("Number of sources fetched in parallel (default %d)", config.DefaultWorkers))
	flags.String(config.KeyTimeout, "", "Per-request fetch timeout (default "+config.DefaultTimeout.String()+")")
	flags.String(config.KeyLogLevel, "", "Log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "", "Log format (auto, json, console)")
	flags.StringSlice(config.KeyInclude, nil, "Only count communities matching these glob patterns")
	flags.StringSlice(config.KeyExclude, nil, "Skip communities matching these glob patterns")
	for _, name := range []string{
		flagConfig, config.KeyCommunities, config.KeyWorkers, config.KeyTimeout,
		config.KeyLogLevel, config.KeyLogFormat, config.KeyInclude, config.KeyExclude,
	} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			logger.Errorf("Error binding %s flag: %v", name, err)
		}
	}

	rootCmd.AddCommand(newRunCmd(v))
	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig loads the configuration selected by v and installs the
// configured logger
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.LoadConfig(
		config.WithConfigPath(v.GetString(flagConfig)),
		config.WithViper(v),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Initialize(l)

	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("error retrieving format flag: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("error formatting version info as JSON: %w", err)
				}
				_, _ = fmt.Fprintln(out, string(output))
				return nil
			}

			_, _ = fmt.Fprintf(out, "gluon-census %s\n", info.Version)
			_, _ = fmt.Fprintf(out, "  commit:   %s\n", info.Commit)
			_, _ = fmt.Fprintf(out, "  built:    %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(out, "  go:       %s\n", info.GoVersion)
			_, _ = fmt.Fprintf(out, "  platform: %s\n", info.Platform)
			return nil
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
