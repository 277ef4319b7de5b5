package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"token-pulse/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "name: pulse-test\nport: 9100\n")

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "pulse-test", cfg.Name)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 1500, cfg.Feed.UpdateFrequencyMs)
	assert.Equal(t, []int{3, 8}, cfg.Feed.UpdatesPerTickRange)
	assert.Equal(t, []int{0, 100, 200}, cfg.Feed.StaggerOffsetsMs)
	assert.Equal(t, 120, cfg.History.MaxPoints)
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("TOKEN_PULSE_FEED_BATCH_SIZE", "6")
	path := writeConfig(t, "name: pulse-test\nfeed:\n  batch_size: 2\n")

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Feed.BatchSize)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var cfgErr *helpers.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewConfigInvalidIsConfigurationError(t *testing.T) {
	path := writeConfig(t, "name: pulse-test\nport: 80\n")

	_, err := NewConfig(path)
	require.Error(t, err)

	var cfgErr *helpers.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config validation failed", cfgErr.Message)
	assert.Contains(t, err.Error(), "invalid server port number: 80")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"low port", func(c *Config) { c.Port = 80 }},
		{"zero batch", func(c *Config) { c.Feed.BatchSize = 0 }},
		{"zero frequency", func(c *Config) { c.Feed.UpdateFrequencyMs = 0 }},
		{"inverted range", func(c *Config) { c.Feed.UpdatesPerTickRange = []int{8, 3} }},
		{"short range", func(c *Config) { c.Feed.UpdatesPerTickRange = []int{3} }},
		{"stagger count", func(c *Config) { c.Feed.StaggerOffsetsMs = []int{0, 100} }},
		{"listing without schedule", func(c *Config) { c.Listing.Enabled = true; c.Listing.Schedule = "" }},
		{"no history", func(c *Config) { c.History.MaxPoints = 0 }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Feed.UpdateFrequencyMs = 900
	path := filepath.Join(t.TempDir(), "saved.yaml")

	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 900, loaded.Feed.UpdateFrequencyMs)
	assert.Equal(t, cfg.Listing.Schedule, loaded.Listing.Schedule)
}
