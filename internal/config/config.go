// Package config holds voicelink configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all voicelink configuration.
type Config struct {
	// Local shortcut store settings
	Store StoreConfig `yaml:"store"`

	// Donation settings
	Donation DonationConfig `yaml:"donation"`

	// Snapshot reload settings
	Reload ReloadConfig `yaml:"reload"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig configures the local SQLite shortcut store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// DonationConfig configures intent donation.
type DonationConfig struct {
	// Timeout bounds a single donation fan-out, e.g. "5s".
	Timeout string `yaml:"timeout"`

	// GroupPrefix, when set, is prepended to derived donation group ids
	// so multiple embedding apps sharing a store stay distinguishable.
	GroupPrefix string `yaml:"group_prefix"`
}

// ReloadConfig configures snapshot reloads.
type ReloadConfig struct {
	// Timeout bounds a single store fetch, e.g. "10s".
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

const (
	defaultDonationTimeout = 5 * time.Second
	defaultReloadTimeout   = 10 * time.Second
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "data/voicelink.db",
		},
		Donation: DonationConfig{
			Timeout: "5s",
		},
		Reload: ReloadConfig{
			Timeout: "10s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path, layering it over the defaults.
// A missing file is not an error: defaults (plus env overrides) apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets the environment override file values.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("VOICELINK_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
	if level := os.Getenv("VOICELINK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if timeout := os.Getenv("VOICELINK_DONATION_TIMEOUT"); timeout != "" {
		c.Donation.Timeout = timeout
	}
}

// DonationTimeout returns the parsed donation timeout, falling back to the
// default when unset or malformed.
func (c *Config) DonationTimeout() time.Duration {
	return parseDuration(c.Donation.Timeout, defaultDonationTimeout)
}

// ReloadTimeout returns the parsed reload timeout, falling back to the
// default when unset or malformed.
func (c *Config) ReloadTimeout() time.Duration {
	return parseDuration(c.Reload.Timeout, defaultReloadTimeout)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
