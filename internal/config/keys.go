package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no API key configured")

// providerEnvVars maps provider names to their conventional key variables.
var providerEnvVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

// GetAPIKey returns the API key for the named provider.
// It checks in order: the provider's conventional environment variable,
// then the configured key. The static provider needs no key and always
// resolves to an empty string.
func GetAPIKey(providerName string, cfg *Config) (string, error) {
	if providerName == "static" {
		return "", nil
	}

	// First check the provider's environment variable directly
	if envVar, ok := providerEnvVars[providerName]; ok {
		if key := os.Getenv(envVar); key != "" {
			return key, nil
		}
	}

	// Then check config
	if cfg != nil && cfg.Provider.APIKey != "" {
		// Expand any remaining env var references
		key := os.ExpandEnv(cfg.Provider.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w for provider %q", ErrNoAPIKey, providerName)
}

// ValidateAPIKey performs basic format validation on an API key. It does
// not verify the key with the provider.
func ValidateAPIKey(providerName, key string) error {
	if key == "" {
		return ErrNoAPIKey
	}

	// Anthropic API keys start with "sk-ant-"
	if providerName == "anthropic" && !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}

	// Keys should be reasonably long
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource returns where the named provider's key was sourced from.
func GetAPIKeySource(providerName string, cfg *Config) KeySource {
	if envVar, ok := providerEnvVars[providerName]; ok {
		if os.Getenv(envVar) != "" {
			return KeySourceEnv
		}
	}

	if cfg != nil && cfg.Provider.APIKey != "" {
		key := os.ExpandEnv(cfg.Provider.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return KeySourceConfig
		}
	}

	return KeySourceNone
}
