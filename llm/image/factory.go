package image

import (
	"fmt"

	"github.com/BaSui01/imageflow/config"
	"github.com/BaSui01/imageflow/types"
)

// NewProvider creates a Provider from the api section of the configuration.
//
// Supported names: openrouter, gemini, openai. For gemini and openai the
// OpenRouter default base URL and model are replaced by the provider's own.
func NewProvider(cfg config.APIConfig) (Provider, error) {
	def := config.DefaultAPIConfig()
	baseURL, model := cfg.BaseURL, cfg.Model
	if cfg.Provider != config.ProviderOpenRouter {
		if baseURL == def.BaseURL {
			baseURL = ""
		}
		if model == def.Model {
			model = ""
		}
	}

	switch cfg.Provider {
	case config.ProviderOpenRouter, "":
		return NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  cfg.Key,
			BaseURL: baseURL,
			Model:   model,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout,
		}), nil

	case config.ProviderGemini:
		return NewGeminiProvider(GeminiConfig{
			APIKey:  cfg.Key,
			BaseURL: baseURL,
			Model:   model,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout,
		}), nil

	case config.ProviderOpenAI:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.Key,
			BaseURL: baseURL,
			Model:   model,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout,
		}), nil

	default:
		return nil, types.NewConfigurationError(fmt.Sprintf("unknown image provider %q", cfg.Provider))
	}
}
