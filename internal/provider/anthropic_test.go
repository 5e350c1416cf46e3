package provider

import (
	"os"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewAnthropic_WithAPIKey(t *testing.T) {
	cfg := AnthropicConfig{
		APIKey: "test-key-123",
		Model:  anthropic.ModelClaudeSonnet4_20250514,
	}

	p, err := NewAnthropic(cfg)
	if err != nil {
		t.Fatalf("NewAnthropic failed: %v", err)
	}

	if p.Name() != "anthropic" {
		t.Errorf("Name() = %q, want %q", p.Name(), "anthropic")
	}
	if p.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("Model = %q, want %q", p.Model(), anthropic.ModelClaudeSonnet4_20250514)
	}
	if p.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewAnthropic_NoAPIKey(t *testing.T) {
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)

	os.Unsetenv("ANTHROPIC_API_KEY")

	_, err := NewAnthropic(AnthropicConfig{})
	if err == nil {
		t.Fatal("NewAnthropic should fail without API key")
	}
}

func TestNewAnthropic_DefaultModel(t *testing.T) {
	p, err := NewAnthropic(AnthropicConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewAnthropic failed: %v", err)
	}
	if p.Model() == "" {
		t.Error("Model should default to a non-empty value")
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		name  string
		model anthropic.Model
		want  anthropic.Model
	}{
		{
			"known model is translated",
			anthropic.ModelClaudeSonnet4_20250514,
			anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0"),
		},
		{
			"unknown model passes through",
			anthropic.Model("custom-model"),
			anthropic.Model("custom-model"),
		},
		{
			"already-translated model passes through",
			anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0"),
			anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateModelForBedrock(tt.model); got != tt.want {
				t.Errorf("translateModelForBedrock(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestNewOpenAI_NoAPIKey(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	os.Unsetenv("OPENAI_API_KEY")

	_, err := NewOpenAI(OpenAIConfig{})
	if err == nil {
		t.Fatal("NewOpenAI should fail without API key")
	}
}

func TestNewOpenAI_WithAPIKey(t *testing.T) {
	p, err := NewOpenAI(OpenAIConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q, want %q", p.Name(), "openai")
	}
	if p.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}
