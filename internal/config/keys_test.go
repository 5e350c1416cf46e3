package config

import (
	"errors"
	"os"
	"testing"
)

// clearKeyEnv unsets a key variable for the test's duration and restores it
// afterwards.
func clearKeyEnv(t *testing.T, name string) {
	t.Helper()
	old, had := os.LookupEnv(name)
	os.Unsetenv(name)
	t.Cleanup(func() {
		if had {
			os.Setenv(name, old)
		}
	})
}

func TestGetAPIKey_FromEnv(t *testing.T) {
	os.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
	defer os.Unsetenv("ANTHROPIC_API_KEY")

	key, err := GetAPIKey("anthropic", &Config{})
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if key != "sk-ant-from-env" {
		t.Errorf("key = %q, want the environment value", key)
	}
}

func TestGetAPIKey_EnvWinsOverConfig(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "sk-from-env")
	defer os.Unsetenv("OPENAI_API_KEY")

	cfg := &Config{}
	cfg.Provider.APIKey = "sk-from-config"

	key, err := GetAPIKey("openai", cfg)
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if key != "sk-from-env" {
		t.Errorf("key = %q, want the environment value", key)
	}
}

func TestGetAPIKey_FromConfig(t *testing.T) {
	clearKeyEnv(t, "ANTHROPIC_API_KEY")

	cfg := &Config{}
	cfg.Provider.APIKey = "sk-ant-from-config"

	key, err := GetAPIKey("anthropic", cfg)
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if key != "sk-ant-from-config" {
		t.Errorf("key = %q, want the config value", key)
	}
}

func TestGetAPIKey_Missing(t *testing.T) {
	clearKeyEnv(t, "ANTHROPIC_API_KEY")

	_, err := GetAPIKey("anthropic", &Config{})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestGetAPIKey_UnresolvedReference(t *testing.T) {
	clearKeyEnv(t, "ANTHROPIC_API_KEY")

	cfg := &Config{}
	cfg.Provider.APIKey = "${UNSET_FLOTILLA_KEY_VAR}"

	if _, err := GetAPIKey("anthropic", cfg); err == nil {
		t.Error("expected error for unresolved key reference")
	}
}

func TestGetAPIKey_StaticNeedsNoKey(t *testing.T) {
	clearKeyEnv(t, "ANTHROPIC_API_KEY")
	clearKeyEnv(t, "OPENAI_API_KEY")

	key, err := GetAPIKey("static", nil)
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if key != "" {
		t.Errorf("key = %q, want empty for the static provider", key)
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		wantErr  bool
	}{
		{"valid anthropic key", "anthropic", "sk-ant-REDACTED", false},
		{"valid openai key", "openai", "sk-proj-abcdefghijklmnopqrst", false},
		{"empty key", "anthropic", "", true},
		{"anthropic key without prefix", "anthropic", "sk-wrong-prefix-abcdefghij", true},
		{"too short", "openai", "sk-short", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.provider, tt.key)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", "(not set)"},
		{"short", "sk-ant-short", "***"},
		{"long", "sk-ant-REDACTED", "sk-ant-...1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetAPIKeySource(t *testing.T) {
	clearKeyEnv(t, "ANTHROPIC_API_KEY")

	if got := GetAPIKeySource("anthropic", &Config{}); got != KeySourceNone {
		t.Errorf("source = %q, want none", got)
	}

	cfg := &Config{}
	cfg.Provider.APIKey = "sk-ant-configured"
	if got := GetAPIKeySource("anthropic", cfg); got != KeySourceConfig {
		t.Errorf("source = %q, want config_file", got)
	}

	os.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	defer os.Unsetenv("ANTHROPIC_API_KEY")
	if got := GetAPIKeySource("anthropic", cfg); got != KeySourceEnv {
		t.Errorf("source = %q, want environment", got)
	}
}
