package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"

	"github.com/ShayCichocki/flotilla/internal/config"
	"github.com/ShayCichocki/flotilla/internal/provider"
)

// createProvider builds the agent provider named by the config and wraps
// it with the rate limiter when one is configured.
func createProvider(cfg *config.Config) (provider.Provider, error) {
	base, err := createBaseProvider(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Provider.RateLimit > 0 {
		return provider.NewRateLimited(base, cfg.Provider.RateLimit, cfg.Provider.RateBurst), nil
	}
	return base, nil
}

func createBaseProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider.Name {
	case "anthropic":
		key := ""
		if !cfg.Provider.Bedrock {
			var err error
			key, err = config.GetAPIKey("anthropic", cfg)
			if err != nil {
				return nil, err
			}
		}
		return provider.NewAnthropic(provider.AnthropicConfig{
			Model:         anthropic.Model(cfg.Provider.Model),
			APIKey:        key,
			UseAWSBedrock: cfg.Provider.Bedrock,
			AWSRegion:     cfg.Provider.AWSRegion,
		})
	case "openai":
		key, err := config.GetAPIKey("openai", cfg)
		if err != nil {
			return nil, err
		}
		return provider.NewOpenAI(provider.OpenAIConfig{
			Model:  openai.ChatModel(cfg.Provider.Model),
			APIKey: key,
		})
	case "static":
		return provider.NewStatic(provider.StaticConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected anthropic, openai, or static)", cfg.Provider.Name)
	}
}
