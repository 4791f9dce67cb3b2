// =============================================================================
// ImageFlow defaults
// =============================================================================
// OpenRouter transport, webp 1792x1024 at quality 90, 3 attempts 5s apart,
// 2s pacing and 30 requests per minute.
// =============================================================================
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/imageflow/types"
)

// Supported provider and format names.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"

	FormatWebP = "webp"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API:       DefaultAPIConfig(),
		Output:    DefaultOutputConfig(),
		RateLimit: DefaultRateLimitConfig(),
		Agent:     DefaultAgentConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultAPIConfig returns the OpenRouter defaults.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Provider: ProviderOpenRouter,
		BaseURL:  "https://openrouter.ai/api/v1",
		Model:    "google/gemini-2.5-flash-image-preview",
		Headers: map[string]string{
			"HTTP-Referer": "https://github.com/BaSui01/imageflow",
			"X-Title":      "ImageFlow",
		},
		Timeout: 120 * time.Second,
	}
}

// DefaultOutputConfig returns the default output settings.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		BaseDir: "./generated",
		Format:  FormatWebP,
		Width:   1792,
		Height:  1024,
		Quality: 90,
	}
}

// DefaultRateLimitConfig returns the default retry and pacing settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRetries:        3,
		RetryDelay:        5 * time.Second,
		Delay:             2 * time.Second,
		RequestsPerMinute: 30,
	}
}

// DefaultAgentConfig returns the default agent settings.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name:          "ImageAgent",
		MemoryEnabled: true,
		MemoryKey:     "agent_memory.json",
		Store: StoreConfig{
			Type:    "file",
			BaseDir: ".",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				PoolSize:  10,
				KeyPrefix: "imageflow:",
			},
			SQL: SQLConfig{
				Driver:       "sqlite",
				DSN:          "imageflow.db",
				MaxOpenConns: 10,
				MaxIdleConns: 2,
			},
		},
	}
}

// DefaultLogConfig returns the default log settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Enabled:     true,
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stderr"},
	}
}

// DefaultTelemetryConfig returns telemetry disabled.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "imageflow",
		SampleRate:   1.0,
	}
}

// DefaultMetricsConfig returns metrics disabled.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "imageflow",
	}
}

// Validate checks credentials and ranges. Failures are CONFIGURATION_ERRORs.
func (c *Config) Validate() error {
	var errs []string

	switch c.API.Provider {
	case ProviderOpenRouter, ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Sprintf("unknown provider %q", c.API.Provider))
	}
	if strings.TrimSpace(c.API.Key) == "" {
		errs = append(errs, "API key is required")
	}
	if c.API.Timeout < 0 {
		errs = append(errs, "api timeout must not be negative")
	}

	switch c.Output.Format {
	case FormatWebP, FormatPNG, FormatJPEG:
	default:
		errs = append(errs, fmt.Sprintf("unsupported output format %q", c.Output.Format))
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		errs = append(errs, "image quality must be between 1 and 100")
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = append(errs, "output width and height must be positive")
	}

	if c.RateLimit.MaxRetries < 1 {
		errs = append(errs, "max_retries must be at least 1")
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		errs = append(errs, "requests_per_minute must be at least 1")
	}
	if c.RateLimit.RetryDelay < 0 || c.RateLimit.Delay < 0 {
		errs = append(errs, "delays must not be negative")
	}

	if len(errs) > 0 {
		return types.NewConfigurationError("config validation errors: " + strings.Join(errs, "; "))
	}

	return nil
}
