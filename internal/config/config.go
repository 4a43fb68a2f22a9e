// Package config provides configuration loading for the census commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/freifunk/gluon-census/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of environment variables overriding configuration
	EnvPrefix = "GLUON_CENSUS"

	// DefaultCommunitiesFile is the source list read when none is configured
	DefaultCommunitiesFile = "./communities.json"

	// DefaultOutputFile is the textfile written by the run command
	DefaultOutputFile = "./gluon-census.prom"

	// DefaultWorkers is the size of the fetch worker pool
	DefaultWorkers = 16

	// DefaultTimeout is the per-request fetch timeout
	DefaultTimeout = 5 * time.Second

	// DefaultServeAddress is the listen address of the serve command
	DefaultServeAddress = ":9100"

	// DefaultServeInterval is the time between two census runs in serve mode
	DefaultServeInterval = 15 * time.Minute

	// MinServeInterval keeps serve mode from hammering community servers
	MinServeInterval = time.Minute
)

// Viper keys understood by WithViper
const (
	KeyCommunities = "communities"
	KeyOutput      = "output"
	KeyWorkers     = "workers"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyAddress     = "address"
	KeyInterval    = "interval"
	KeyInclude     = "include"
	KeyExclude     = "exclude"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path  string
	viper *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return nil
		}

		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		cfg.path = realPath
		return nil
	}
}

// WithViper overlays every key explicitly set in v (flag or environment)
// on top of the file configuration
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		cfg.viper = v
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// CommunitiesFile is the path of the community → URLs source list
	CommunitiesFile string `yaml:"communitiesFile,omitempty"`

	// OutputFile is the Prometheus textfile written by the run command
	OutputFile string `yaml:"outputFile,omitempty"`

	// Workers is the number of sources fetched in parallel
	Workers int `yaml:"workers,omitempty"`

	// Timeout is the per-request fetch timeout (e.g. "5s")
	Timeout string `yaml:"timeout,omitempty"`

	LogLevel  string `yaml:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty"`

	Filter    *FilterConfig     `yaml:"filter,omitempty"`
	Serve     *ServeConfig      `yaml:"serve,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// FilterConfig restricts the census to communities matching glob patterns
type FilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ServeConfig holds settings of the long-running exporter
type ServeConfig struct {
	// Address is the listen address of the HTTP server
	Address string `yaml:"address,omitempty"`

	// Interval is the time between two census runs (e.g. "15m")
	Interval string `yaml:"interval,omitempty"`
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// and optional viper overrides, then validates it
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := &Config{}
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if loaderCfg.viper != nil {
		config.overlay(loaderCfg.viper)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func (c *Config) overlay(v *viper.Viper) {
	if v.IsSet(KeyCommunities) {
		c.CommunitiesFile = v.GetString(KeyCommunities)
	}
	if v.IsSet(KeyOutput) {
		c.OutputFile = v.GetString(KeyOutput)
	}
	if v.IsSet(KeyWorkers) {
		c.Workers = v.GetInt(KeyWorkers)
	}
	if v.IsSet(KeyTimeout) {
		c.Timeout = v.GetString(KeyTimeout)
	}
	if v.IsSet(KeyLogLevel) {
		c.LogLevel = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogFormat) {
		c.LogFormat = v.GetString(KeyLogFormat)
	}
	if v.IsSet(KeyInclude) || v.IsSet(KeyExclude) {
		if c.Filter == nil {
			c.Filter = &FilterConfig{}
		}
		if v.IsSet(KeyInclude) {
			c.Filter.Include = v.GetStringSlice(KeyInclude)
		}
		if v.IsSet(KeyExclude) {
			c.Filter.Exclude = v.GetStringSlice(KeyExclude)
		}
	}
	if v.IsSet(KeyAddress) || v.IsSet(KeyInterval) {
		if c.Serve == nil {
			c.Serve = &ServeConfig{}
		}
		if v.IsSet(KeyAddress) {
			c.Serve.Address = v.GetString(KeyAddress)
		}
		if v.IsSet(KeyInterval) {
			c.Serve.Interval = v.GetString(KeyInterval)
		}
	}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	if c.Timeout != "" {
		timeout, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout must be a valid duration (e.g., '5s'): %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
		}
	}

	if c.Serve != nil && c.Serve.Interval != "" {
		interval, err := time.ParseDuration(c.Serve.Interval)
		if err != nil {
			return fmt.Errorf("serve.interval must be a valid duration (e.g., '15m'): %w", err)
		}
		if interval < MinServeInterval {
			return fmt.Errorf("serve.interval must be at least %s, got %s", MinServeInterval, c.Serve.Interval)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

// GetCommunitiesFile returns the source list path, using the default if not specified
func (c *Config) GetCommunitiesFile() string {
	if c.CommunitiesFile == "" {
		return DefaultCommunitiesFile
	}
	return c.CommunitiesFile
}

// GetOutputFile returns the textfile path, using the default if not specified
func (c *Config) GetOutputFile() string {
	if c.OutputFile == "" {
		return DefaultOutputFile
	}
	return c.OutputFile
}

// GetWorkers returns the worker pool size, using the default if not specified
func (c *Config) GetWorkers() int {
	if c.Workers == 0 {
		return DefaultWorkers
	}
	return c.Workers
}

// GetTimeout returns the fetch timeout. Validate must have succeeded.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return timeout
}

// GetServeAddress returns the listen address of the serve command
func (c *Config) GetServeAddress() string {
	if c.Serve == nil || c.Serve.Address == "" {
		return DefaultServeAddress
	}
	return c.Serve.Address
}

// GetServeInterval returns the serve mode census interval
func (c *Config) GetServeInterval() time.Duration {
	if c.Serve == nil || c.Serve.Interval == "" {
		return DefaultServeInterval
	}
	interval, err := time.ParseDuration(c.Serve.Interval)
	if err != nil {
		return DefaultServeInterval
	}
	return interval
}

// GetFilter returns the community include and exclude patterns
func (c *Config) GetFilter() (include, exclude []string) {
	if c.Filter == nil {
		return nil, nil
	}
	return c.Filter.Include, c.Filter.Exclude
}
