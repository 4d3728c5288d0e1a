package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Clock  ClockConfig  `mapstructure:"clock"`
	Fanout FanoutConfig `mapstructure:"fanout"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// ClockConfig holds the auction clock settings
type ClockConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// FanoutConfig holds the notification fan-out settings
type FanoutConfig struct {
	SubscriberBuffer int `mapstructure:"subscriber_buffer"`
}

// Load reads configuration from an optional file path, with environment
// variables (prefix AUCTION_, e.g. AUCTION_SERVER_PORT) overriding file
// values and defaults filling the rest. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("clock.sweep_interval", time.Second)
	v.SetDefault("fanout.subscriber_buffer", 16)

	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if cfg.Clock.SweepInterval <= 0 {
		return nil, fmt.Errorf("config: sweep_interval must be positive, got %s", cfg.Clock.SweepInterval)
	}
	if cfg.Fanout.SubscriberBuffer <= 0 {
		return nil, fmt.Errorf("config: subscriber_buffer must be positive, got %d", cfg.Fanout.SubscriberBuffer)
	}
	return &cfg, nil
}
