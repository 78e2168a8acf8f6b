// Package config loads the runtime configuration for the front desk
// assistant. Values come from an optional YAML config file and FRONTDESK_*
// environment variables, with defaults that match the tuned production
// settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Facility holds the static facts injected into every agent's entry context.
type Facility struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Hours   string `mapstructure:"hours"`
}

// Config is the full runtime configuration.
type Config struct {
	// DatabaseURL selects the postgres backend when set; empty runs on the
	// in-memory backend.
	DatabaseURL string `mapstructure:"database_url"`

	// BatchSize is the maximum rows written per queue per flush.
	BatchSize int `mapstructure:"batch_size"`

	// FlushInterval is the period of the background drain loop.
	FlushInterval time.Duration `mapstructure:"flush_interval"`

	// SampleRate is the probability that a non-critical metric is persisted.
	SampleRate float64 `mapstructure:"sample_rate"`

	// LatencyThreshold drops latency observations below it, keeping only the
	// slow tail.
	LatencyThreshold float64 `mapstructure:"latency_threshold"`

	// Recording enables transcript capture. Threaded explicitly through
	// construction, never a process global.
	Recording bool `mapstructure:"recording"`

	// Provider selects the model backend: "openai", "anthropic" or
	// "scripted".
	Provider string `mapstructure:"provider"`

	// Model overrides the provider's default model name.
	Model string `mapstructure:"model"`

	Facility Facility `mapstructure:"facility"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("batch_size", 50)
	v.SetDefault("flush_interval", 2*time.Second)
	v.SetDefault("sample_rate", 0.1)
	v.SetDefault("latency_threshold", 0.1)
	v.SetDefault("recording", true)
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "")
	v.SetDefault("facility.name", "SmileRight Dental Clinic")
	v.SetDefault("facility.address", "5561 St-Denis Street, Montreal")
	v.SetDefault("facility.hours", "Monday to Friday, 8:00 to 12:00 and 13:00 to 18:00")
}

// Load reads configuration from the given file path (optional) plus the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FRONTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("frontdesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without touching disk.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always unmarshal cleanly
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects values the persistence and sampling layers cannot run
// with.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval must be positive, got %s", c.FlushInterval)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be in [0,1], got %g", c.SampleRate)
	}
	if c.LatencyThreshold < 0 {
		return fmt.Errorf("latency_threshold must not be negative, got %g", c.LatencyThreshold)
	}
	return nil
}
