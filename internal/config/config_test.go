package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freifunk/gluon-census/internal/telemetry"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yamlContent string
		wantConfig  *Config
		wantErr     string
	}{
		{
			name: "full_config",
			yamlContent: `communitiesFile: /etc/census/communities.json
outputFile: /var/lib/node_exporter/census.prom
workers: 8
timeout: 10s
logLevel: debug
serve:
  address: ":9200"
  interval: 30m
telemetry:
  enabled: true
  endpoint: otel:4318
  metrics:
    enabled: true`,
			wantConfig: &Config{
				CommunitiesFile: "/etc/census/communities.json",
				OutputFile:      "/var/lib/node_exporter/census.prom",
				Workers:         8,
				Timeout:         "10s",
				LogLevel:        "debug",
				Serve:           &ServeConfig{Address: ":9200", Interval: "30m"},
				Telemetry: &telemetry.Config{
					Enabled:  true,
					Endpoint: "otel:4318",
					Metrics:  &telemetry.MetricsConfig{Enabled: true},
				},
			},
		},
		{
			name:        "empty_config",
			yamlContent: ``,
			wantConfig:  &Config{},
		},
		{
			name:        "negative_workers",
			yamlContent: `workers: -1`,
			wantErr:     "workers must be positive",
		},
		{
			name:        "invalid_timeout",
			yamlContent: `timeout: soon`,
			wantErr:     "timeout must be a valid duration",
		},
		{
			name:        "zero_timeout",
			yamlContent: `timeout: 0s`,
			wantErr:     "timeout must be positive",
		},
		{
			name: "serve_interval_too_short",
			yamlContent: `serve:
  interval: 10s`,
			wantErr: "serve.interval must be at least",
		},
		{
			name: "invalid_telemetry_sampling",
			yamlContent: `telemetry:
  enabled: true
  tracing:
    enabled: true
    sampling: 2`,
			wantErr: "telemetry",
		},
		{
			name:        "malformed_yaml",
			yamlContent: "workers: [",
			wantErr:     "failed to parse YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, "config.yaml", tt.yamlContent)
			cfg, err := LoadConfig(WithConfigPath(path))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, cfg)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultCommunitiesFile, cfg.GetCommunitiesFile())
	assert.Equal(t, DefaultOutputFile, cfg.GetOutputFile())
	assert.Equal(t, DefaultWorkers, cfg.GetWorkers())
	assert.Equal(t, DefaultTimeout, cfg.GetTimeout())
	assert.Equal(t, DefaultServeAddress, cfg.GetServeAddress())
	assert.Equal(t, DefaultServeInterval, cfg.GetServeInterval())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to evaluate symlinks")
}

func TestLoadConfig_ViperOverrides(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `workers: 4
timeout: 3s
serve:
  address: ":9000"`)

	v := viper.New()
	v.Set(KeyWorkers, 32)
	v.Set(KeyOutput, "/tmp/out.prom")
	v.Set(KeyInterval, "2h")

	cfg, err := LoadConfig(WithConfigPath(path), WithViper(v))
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.GetWorkers())
	assert.Equal(t, "/tmp/out.prom", cfg.GetOutputFile())
	assert.Equal(t, 3*time.Second, cfg.GetTimeout())
	assert.Equal(t, ":9000", cfg.GetServeAddress())
	assert.Equal(t, 2*time.Hour, cfg.GetServeInterval())
}

func TestLoadConfig_ViperOverrideValidated(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set(KeyTimeout, "never")

	_, err := LoadConfig(WithViper(v))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoadConfig_Filter(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `filter:
  include: ["ff*"]
  exclude: ["ffhh"]`)

	cfg, err := LoadConfig(WithConfigPath(path))
	require.NoError(t, err)

	include, exclude := cfg.GetFilter()
	assert.Equal(t, []string{"ff*"}, include)
	assert.Equal(t, []string{"ffhh"}, exclude)

	v := viper.New()
	v.Set(KeyExclude, []string{"ffda", "ffm"})
	cfg, err = LoadConfig(WithConfigPath(path), WithViper(v))
	require.NoError(t, err)

	include, exclude = cfg.GetFilter()
	assert.Equal(t, []string{"ff*"}, include)
	assert.Equal(t, []string{"ffda", "ffm"}, exclude)

	include, exclude = (&Config{}).GetFilter()
	assert.Nil(t, include)
	assert.Nil(t, exclude)
}
