package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name" mapstructure:"name"`
	Host     string         `yaml:"host" mapstructure:"host"`
	Port     int            `yaml:"port" mapstructure:"port"`
	LogLevel string         `yaml:"log_level" mapstructure:"log_level"`
	GrpcHost string         `yaml:"grpc_host" mapstructure:"grpc_host"`
	GrpcPort int            `yaml:"grpc_port" mapstructure:"grpc_port"`
	Feed     MFeedConfig    `yaml:"feed" mapstructure:"feed"`
	Listing  MListingConfig `yaml:"listing" mapstructure:"listing"`
	History  MHistoryConfig `yaml:"history" mapstructure:"history"`
	Server   MServerConfig  `yaml:"server" mapstructure:"server"`
}

type MFeedConfig struct {
	TokensPerCategory   int   `yaml:"tokens_per_category" mapstructure:"tokens_per_category"`
	BatchSize           int   `yaml:"batch_size" mapstructure:"batch_size"`
	InterBatchDelayMs   int   `yaml:"inter_batch_delay_ms" mapstructure:"inter_batch_delay_ms"`
	UpdateFrequencyMs   int   `yaml:"update_frequency_ms" mapstructure:"update_frequency_ms"`
	UpdatesPerTickRange []int `yaml:"updates_per_tick_range" mapstructure:"updates_per_tick_range"`
	StaggerOffsetsMs    []int `yaml:"stagger_offsets_ms" mapstructure:"stagger_offsets_ms"`
	InitialLoadDelayMs  int   `yaml:"initial_load_delay_ms" mapstructure:"initial_load_delay_ms"`
}

type MListingConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	Schedule    string `yaml:"schedule" mapstructure:"schedule"`
	MaxNewPairs int    `yaml:"max_new_pairs" mapstructure:"max_new_pairs"`
}

type MHistoryConfig struct {
	MaxPoints int `yaml:"max_points" mapstructure:"max_points"`
}

type MServerConfig struct {
	RateLimitRPS        float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst      int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	AllowedOriginPrefix string  `yaml:"allowed_origin_prefix" mapstructure:"allowed_origin_prefix"`
}

// UpdatesPerTickBounds returns the inclusive [min, max] tick size, falling back to [3, 8].
func (f MFeedConfig) UpdatesPerTickBounds() (int, int) {
	if len(f.UpdatesPerTickRange) != 2 {
		return 3, 8
	}
	return f.UpdatesPerTickRange[0], f.UpdatesPerTickRange[1]
}

// GetLogLevel lets the logger read the configured level.
func (c *MConfig) GetLogLevel() string {
	return c.LogLevel
}
