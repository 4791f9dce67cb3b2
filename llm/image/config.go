package image

import "time"

// OpenRouterConfig configures the OpenRouter chat-completions provider.
type OpenRouterConfig struct {
	APIKey  string            `json:"api_key" yaml:"api_key"`
	BaseURL string            `json:"base_url" yaml:"base_url"`
	Model   string            `json:"model,omitempty" yaml:"model,omitempty"` // google/gemini-2.5-flash-image-preview
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultOpenRouterConfig returns the default OpenRouter configuration.
func DefaultOpenRouterConfig() OpenRouterConfig {
	return OpenRouterConfig{
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "google/gemini-2.5-flash-image-preview",
		Timeout: 120 * time.Second,
	}
}

// OpenAIConfig configures the OpenAI images provider.
type OpenAIConfig struct {
	APIKey  string            `json:"api_key" yaml:"api_key"`
	BaseURL string            `json:"base_url" yaml:"base_url"`
	Model   string            `json:"model,omitempty" yaml:"model,omitempty"` // dall-e-3, gpt-image-1
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultOpenAIConfig returns the default OpenAI image configuration.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com",
		Model:   "dall-e-3",
		Timeout: 120 * time.Second,
	}
}

// GeminiConfig configures Gemini native image generation.
type GeminiConfig struct {
	APIKey  string            `json:"api_key" yaml:"api_key"`
	BaseURL string            `json:"base_url" yaml:"base_url"`
	Model   string            `json:"model,omitempty" yaml:"model,omitempty"` // gemini-3-pro-image-preview
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultGeminiConfig returns the default Gemini image configuration.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Model:   "gemini-3-pro-image-preview",
		Timeout: 120 * time.Second,
	}
}
