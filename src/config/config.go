package config

import (
	"fmt"
	"os"
	"strings"

	"token-pulse/src/helpers"
	"token-pulse/src/models"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file at configPath, applies defaults and
// TOKEN_PULSE_* environment overrides, then validates the result.
func NewConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	setDefaults(v)

	// 1. Environment overrides, e.g. TOKEN_PULSE_FEED_BATCH_SIZE
	v.SetEnvPrefix("TOKEN_PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 2. Read the file
	if err := v.ReadInConfig(); err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	// 3. Unmarshal into the models struct
	var modelConfig models.MConfig
	if err := v.Unmarshal(&modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a validated configuration built from defaults only
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var modelConfig models.MConfig
	_ = v.Unmarshal(&modelConfig)
	return &Config{MConfig: &modelConfig}
}

// -----------------------------------------------------------------------------

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "token-pulse")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8090)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("grpc_host", "127.0.0.1")
	v.SetDefault("grpc_port", 50061)

	// Feed defaults
	v.SetDefault("feed.tokens_per_category", 12)
	v.SetDefault("feed.batch_size", 4)
	v.SetDefault("feed.inter_batch_delay_ms", 150)
	v.SetDefault("feed.update_frequency_ms", 1500)
	v.SetDefault("feed.updates_per_tick_range", []int{3, 8})
	v.SetDefault("feed.stagger_offsets_ms", []int{0, 100, 200})
	v.SetDefault("feed.initial_load_delay_ms", 800)

	// Listing defaults
	v.SetDefault("listing.enabled", false)
	v.SetDefault("listing.schedule", "@every 10s")
	v.SetDefault("listing.max_new_pairs", 30)

	v.SetDefault("history.max_points", 120)

	// Server defaults
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origin_prefix", "http://127.0.0.1:")
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("server.rate_limit_rps must be greater than 0")
	}
	if c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("server.rate_limit_burst must be greater than 0")
	}

	// Feed
	f := c.Feed
	if f.TokensPerCategory < 0 {
		return fmt.Errorf("feed.tokens_per_category cannot be negative")
	}
	if f.BatchSize <= 0 {
		return fmt.Errorf("feed.batch_size must be greater than 0")
	}
	if f.InterBatchDelayMs < 0 {
		return fmt.Errorf("feed.inter_batch_delay_ms cannot be negative")
	}
	if f.UpdateFrequencyMs <= 0 {
		return fmt.Errorf("feed.update_frequency_ms must be greater than 0")
	}
	if len(f.UpdatesPerTickRange) != 2 {
		return fmt.Errorf("feed.updates_per_tick_range must have exactly two values")
	}
	if lo, hi := f.UpdatesPerTickRange[0], f.UpdatesPerTickRange[1]; lo <= 0 || hi < lo {
		return fmt.Errorf("feed.updates_per_tick_range [%d, %d] is invalid", lo, hi)
	}
	if len(f.StaggerOffsetsMs) != len(models.Categories) {
		return fmt.Errorf("feed.stagger_offsets_ms must have one offset per category")
	}
	for i, off := range f.StaggerOffsetsMs {
		if off < 0 {
			return fmt.Errorf("feed.stagger_offsets_ms[%d] cannot be negative", i)
		}
	}
	if f.InitialLoadDelayMs < 0 {
		return fmt.Errorf("feed.initial_load_delay_ms cannot be negative")
	}

	// Listing
	if c.Listing.Enabled && c.Listing.Schedule == "" {
		return fmt.Errorf("listing.schedule cannot be empty when listing is enabled")
	}
	if c.Listing.MaxNewPairs < 0 {
		return fmt.Errorf("listing.max_new_pairs cannot be negative")
	}

	if c.History.MaxPoints <= 0 {
		return fmt.Errorf("history.max_points must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
