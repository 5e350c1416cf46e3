// Package config handles configuration loading for the flotilla CLI.
// It supports XDG config paths, project-level overrides, and environment
// variables. The orchestration core never reads configuration; it takes
// explicit structs and this package feeds them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all harness configuration for flotilla.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Run      RunConfig      `mapstructure:"run"`
	History  HistoryConfig  `mapstructure:"history"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ProviderConfig selects and parameterizes the execution provider.
type ProviderConfig struct {
	// Name is the provider to use: anthropic, openai, or static.
	Name string `mapstructure:"name"`
	// Model overrides the provider's default model when set.
	Model string `mapstructure:"model"`
	// APIKey is the provider API key. ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Bedrock routes the anthropic provider through AWS Bedrock.
	Bedrock bool `mapstructure:"bedrock"`
	// AWSRegion is the Bedrock region when Bedrock is set.
	AWSRegion string `mapstructure:"aws_region"`
	// RateLimit caps provider calls per minute. Zero disables the limiter.
	RateLimit float64 `mapstructure:"rate_limit"`
	// RateBurst is the limiter burst size when RateLimit is set.
	RateBurst int `mapstructure:"rate_burst"`
}

// RunConfig holds default run parameters. Command-line flags override these.
type RunConfig struct {
	Workers     int           `mapstructure:"workers"`
	Concurrency int           `mapstructure:"concurrency"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	Backoff     string        `mapstructure:"backoff"`
	DomainHint  string        `mapstructure:"domain_hint"`
	EventBuffer int           `mapstructure:"event_buffer"`
}

// HistoryConfig controls run persistence.
type HistoryConfig struct {
	// Enabled toggles saving completed runs.
	Enabled bool `mapstructure:"enabled"`
	// Path overrides the default database location when set.
	Path string `mapstructure:"path"`
}

// EventsConfig controls event publishing.
type EventsConfig struct {
	// NATSURL enables publishing stream events to NATS when set.
	NATSURL string `mapstructure:"nats_url"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (FLOTILLA_*)
// 2. Project config (.flotilla.yaml in current directory or parent)
// 3. User config (~/.config/flotilla/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Provider.APIKey = expandEnv(cfg.Provider.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Provider.APIKey = expandEnv(cfg.Provider.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Provider defaults. An empty model lets the provider pick its own.
	v.SetDefault("provider.name", "anthropic")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.bedrock", false)
	v.SetDefault("provider.aws_region", "")
	v.SetDefault("provider.rate_limit", 0.0)
	v.SetDefault("provider.rate_burst", 1)

	// Run defaults
	v.SetDefault("run.workers", 8)
	v.SetDefault("run.concurrency", 4)
	v.SetDefault("run.task_timeout", "2m")
	v.SetDefault("run.max_retries", 2)
	v.SetDefault("run.retry_delay", "1s")
	v.SetDefault("run.backoff", "exponential")
	v.SetDefault("run.domain_hint", "")
	v.SetDefault("run.event_buffer", 256)

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	// Events defaults
	v.SetDefault("events.nats_url", "")
}

// bindEnv wires the FLOTILLA_* environment variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.BindEnv("provider.name", "FLOTILLA_PROVIDER")
	v.BindEnv("provider.model", "FLOTILLA_MODEL")
	v.BindEnv("provider.api_key", "FLOTILLA_API_KEY")
	v.BindEnv("provider.aws_region", "FLOTILLA_AWS_REGION")
	v.BindEnv("run.workers", "FLOTILLA_WORKERS")
	v.BindEnv("run.concurrency", "FLOTILLA_CONCURRENCY")
	v.BindEnv("run.domain_hint", "FLOTILLA_DOMAIN_HINT")
	v.BindEnv("history.path", "FLOTILLA_HISTORY_PATH")
	v.BindEnv("events.nats_url", "FLOTILLA_NATS_URL")
}

// getUserConfigDir returns the XDG config directory for flotilla.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "flotilla")
	}

	// Fall back to ~/.config/flotilla
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "flotilla")
	}
	return filepath.Join(home, ".config", "flotilla")
}

// findProjectConfig searches for .flotilla.yaml in the current directory and
// parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".flotilla.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:      "anthropic",
			RateBurst: 1,
		},
		Run: RunConfig{
			Workers:     8,
			Concurrency: 4,
			TaskTimeout: 2 * time.Minute,
			MaxRetries:  2,
			RetryDelay:  time.Second,
			Backoff:     "exponential",
			EventBuffer: 256,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
