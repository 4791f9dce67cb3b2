// =============================================================================
// ImageFlow configuration loader
// =============================================================================
// YAML file + environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("imageflow.yaml").
//	    WithEnvPrefix("IMAGEFLOW").
//	    Load()
//
// Precedence: defaults → YAML file → env → legacy env aliases
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Core configuration structs
// =============================================================================

// Config is the full ImageFlow configuration.
type Config struct {
	// API provider connection settings
	API APIConfig `yaml:"api" env:"API"`

	// Output image settings
	Output OutputConfig `yaml:"output" env:"OUTPUT"`

	// RateLimit retry and pacing settings
	RateLimit RateLimitConfig `yaml:"rate_limit" env:"RATE_LIMIT"`

	// Agent conversational layer settings
	Agent AgentConfig `yaml:"agent" env:"AGENT"`

	// Log logging settings
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry OpenTelemetry settings
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Metrics Prometheus settings
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// APIConfig describes the image provider.
type APIConfig struct {
	// Provider: openrouter, gemini, openai
	Provider string `yaml:"provider" env:"PROVIDER"`
	// Key is the provider API key
	Key string `yaml:"key" env:"KEY"`
	// BaseURL of the provider API
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Model identifier
	Model string `yaml:"model" env:"MODEL"`
	// Headers added to every request; env form is k=v,k2=v2
	Headers map[string]string `yaml:"headers" env:"HEADERS"`
	// Timeout bounds a single provider call
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// OutputConfig describes how generated images are stored.
type OutputConfig struct {
	// BaseDir is used when a request has no output directory
	BaseDir string `yaml:"base_dir" env:"BASE_DIR"`
	// Format: webp, png, jpeg
	Format string `yaml:"format" env:"FORMAT"`
	Width  int    `yaml:"width" env:"WIDTH"`
	Height int    `yaml:"height" env:"HEIGHT"`
	// Quality 1-100
	Quality int `yaml:"quality" env:"QUALITY"`
}

// RateLimitConfig holds retry and pacing settings.
type RateLimitConfig struct {
	// MaxRetries is the total number of attempts per provider call
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// RetryDelay is slept before every attempt after the first
	RetryDelay time.Duration `yaml:"retry_delay" env:"RETRY_DELAY"`
	// Delay paces sequential batches, variations and tool chains
	Delay time.Duration `yaml:"delay" env:"DELAY"`
	// RequestsPerMinute is the sliding-window admission budget
	RequestsPerMinute int `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
}

// AgentConfig configures the conversational agent.
type AgentConfig struct {
	Name string `yaml:"name" env:"NAME"`
	// MemoryEnabled toggles session memory recording
	MemoryEnabled bool `yaml:"memory_enabled" env:"MEMORY_ENABLED"`
	// MemoryKey identifies the saved session (a file path for the file store)
	MemoryKey string `yaml:"memory_key" env:"MEMORY_KEY"`
	// Store selects the session store backend
	Store StoreConfig `yaml:"store" env:"STORE"`
}

// StoreConfig configures the session store backend.
type StoreConfig struct {
	// Type: memory, file, redis, sql
	Type string `yaml:"type" env:"TYPE"`
	// BaseDir resolves relative keys for the file store
	BaseDir string      `yaml:"base_dir" env:"BASE_DIR"`
	Redis   RedisConfig `yaml:"redis" env:"REDIS"`
	SQL     SQLConfig   `yaml:"sql" env:"SQL"`
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	Password  string `yaml:"password" env:"PASSWORD"`
	DB        int    `yaml:"db" env:"DB"`
	PoolSize  int    `yaml:"pool_size" env:"POOL_SIZE"`
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// SQLConfig database settings
type SQLConfig struct {
	// Driver: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// DSN connection string
	DSN          string `yaml:"dsn" env:"DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// LogConfig logging settings
type LogConfig struct {
	// Enabled toggles logging entirely
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths zap sinks
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// TelemetryConfig OpenTelemetry settings
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// MetricsConfig Prometheus settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	// Addr serves /metrics when non-empty, e.g. ":9091"
	Addr string `yaml:"addr" env:"ADDR"`
}

// =============================================================================
// Loader
// =============================================================================

// Loader loads configuration (builder style).
type Loader struct {
	configPath string
	envPrefix  string
	legacyEnv  bool
	validators []func(*Config) error
}

// NewLoader creates a loader with the IMAGEFLOW env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "IMAGEFLOW",
		legacyEnv:  true,
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the env variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithLegacyEnv toggles GEMINI_API_KEY / OUTPUT_DIR / IMAGE_QUALITY /
// LOGGING_ENABLED aliases.
func (l *Loader) WithLegacyEnv(enabled bool) *Loader {
	l.legacyEnv = enabled
	return l
}

// WithValidator adds a validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load builds the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if l.legacyEnv {
		if err := applyLegacyEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to load legacy env: %w", err)
		}
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile reads YAML on top of cfg; a missing file keeps defaults.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks struct fields recursively.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(splitList(value)))
		}

	case reflect.Map:
		if field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
			return nil
		}
		m := make(map[string]string)
		for _, pair := range splitList(value) {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid map entry %q, want key=value", pair)
			}
			m[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		field.Set(reflect.ValueOf(m))
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// applyLegacyEnv honours the variable names used by the Python SDK.
func applyLegacyEnv(cfg *Config) error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.API.Key == "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.BaseDir = v
	}
	if v := os.Getenv("IMAGE_QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMAGE_QUALITY: %w", err)
		}
		cfg.Output.Quality = q
	}
	if v := os.Getenv("LOGGING_ENABLED"); v != "" {
		cfg.Log.Enabled = strings.EqualFold(v, "true")
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// MustLoad loads configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from env only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}
