// Package imageflow turns prompts into saved image files.
//
// Usage:
//
//	cfg, err := config.NewLoader().WithConfigPath("imageflow.yaml").Load()
//	client, err := imageflow.NewClient(cfg)
//	defer client.Close(ctx)
//
//	outcome := client.Generate(ctx, "a lighthouse at dusk", "lighthouse.webp")
//	outcomes, err := client.Batch(ctx, spec)
//	resp := client.Chat(ctx, "enhance a lighthouse at dusk")
package imageflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/agent"
	"github.com/BaSui01/imageflow/agent/persistence"
	"github.com/BaSui01/imageflow/config"
	"github.com/BaSui01/imageflow/internal/metrics"
	"github.com/BaSui01/imageflow/internal/telemetry"
	"github.com/BaSui01/imageflow/llm/batch"
	"github.com/BaSui01/imageflow/llm/generator"
	"github.com/BaSui01/imageflow/llm/image"
	"github.com/BaSui01/imageflow/llm/persist"
	"github.com/BaSui01/imageflow/llm/ratelimit"
	"github.com/BaSui01/imageflow/types"
)

// Client owns one provider, one rate limiter and everything built on them.
type Client struct {
	cfg        *config.Config
	logger     *zap.Logger
	provider   image.Provider
	limiter    *ratelimit.Limiter
	pipeline   *generator.Pipeline
	dispatcher *batch.Dispatcher
	agent      *agent.Agent
	store      persistence.SessionStore
	metrics    *metrics.Collector
	otel       *telemetry.Providers
}

type clientOptions struct {
	logger   *zap.Logger
	provider image.Provider
	store    persistence.SessionStore
}

// Option configures NewClient.
type Option func(*clientOptions)

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithProvider replaces the provider built from cfg.API.
func WithProvider(p image.Provider) Option {
	return func(o *clientOptions) { o.provider = p }
}

// WithSessionStore replaces the store built from cfg.Agent.Store.
func WithSessionStore(s persistence.SessionStore) Option {
	return func(o *clientOptions) { o.store = s }
}

// NewClient validates cfg and wires every component. A nil cfg uses the
// defaults, which fail validation without an API key.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = NewLogger(cfg.Log)
	}

	c := &Client{cfg: cfg, logger: logger}

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
		otelProviders = &telemetry.Providers{}
	}
	c.otel = otelProviders

	if cfg.Metrics.Enabled {
		c.metrics = metrics.NewCollector(cfg.Metrics.Namespace, logger)
	}

	c.provider = o.provider
	if c.provider == nil {
		if c.provider, err = image.NewProvider(cfg.API); err != nil {
			return nil, err
		}
	}

	limiterOpts := []ratelimit.Option{ratelimit.WithLogger(logger)}
	if c.metrics != nil {
		limiterOpts = append(limiterOpts, ratelimit.WithWaitObserver(c.metrics.RecordRateLimitWait))
	}
	c.limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute, limiterOpts...)

	var pipelineOpts []generator.Option
	var batchOpts []batch.Option
	var agentOpts []agent.Option
	if c.metrics != nil {
		pipelineOpts = append(pipelineOpts, generator.WithRecorder(c.metrics))
		batchOpts = append(batchOpts, batch.WithRecorder(c.metrics))
		agentOpts = append(agentOpts, agent.WithRecorder(c.metrics))
	}

	c.pipeline = generator.NewPipeline(
		c.provider,
		c.limiter,
		persist.New(persist.NewCodec(), logger),
		generator.Config{
			BaseDir: cfg.Output.BaseDir,
			Output: persist.Options{
				Format:  cfg.Output.Format,
				Width:   cfg.Output.Width,
				Height:  cfg.Output.Height,
				Quality: cfg.Output.Quality,
			},
			RequestTimeout: cfg.API.Timeout,
			MaxAttempts:    cfg.RateLimit.MaxRetries,
			RetryDelay:     cfg.RateLimit.RetryDelay,
		},
		logger,
		pipelineOpts...,
	)
	c.dispatcher = batch.NewDispatcher(c.pipeline, logger, batchOpts...)

	c.store = o.store
	if c.store == nil && cfg.Agent.MemoryEnabled {
		store, err := persistence.NewSessionStore(cfg.Agent.Store)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		backend := cfg.Agent.Store.Type
		if backend == "" {
			backend = string(persistence.StoreTypeFile)
		}
		var recorder persistence.Recorder
		if c.metrics != nil {
			recorder = c.metrics
		}
		c.store = persistence.Instrument(store, backend, recorder, logger)
	}
	if c.store != nil {
		agentOpts = append(agentOpts, agent.WithStore(c.store))
	}

	c.agent = agent.New(agent.Config{
		Name:          cfg.Agent.Name,
		Format:        persist.NormalizeFormat(cfg.Output.Format),
		Delay:         cfg.RateLimit.Delay,
		MemoryEnabled: cfg.Agent.MemoryEnabled,
	}, c.pipeline, c.dispatcher, logger, agentOpts...)

	logger.Info("imageflow client ready",
		zap.String("provider", c.provider.Name()),
		zap.Int("requests_per_minute", c.limiter.Limit()),
		zap.String("output_dir", cfg.Output.BaseDir),
	)
	return c, nil
}

// Generate creates one image named filename under the configured output
// directory. The request ID is the filename.
func (c *Client) Generate(ctx context.Context, prompt, filename string) types.GenerationOutcome {
	return c.pipeline.Run(ctx, types.NewGenerationRequest(prompt, filename))
}

// GenerateRequest runs a fully specified request.
func (c *Client) GenerateRequest(ctx context.Context, req types.GenerationRequest) types.GenerationOutcome {
	if req.ID == "" {
		req.ID = req.Filename
	}
	return c.pipeline.Run(ctx, req)
}

// Batch validates spec and runs it. Requests without an ID use their
// filename. The returned slice matches spec.Requests in length and order.
func (c *Client) Batch(ctx context.Context, spec types.BatchSpec) ([]types.GenerationOutcome, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	requests := make([]types.GenerationRequest, len(spec.Requests))
	for i, req := range spec.Requests {
		if req.ID == "" {
			req.ID = req.Filename
		}
		requests[i] = req
	}
	spec.Requests = requests

	return c.dispatcher.RunBatch(ctx, spec), nil
}

// Chat sends one line of free text to the agent.
func (c *Client) Chat(ctx context.Context, input string) *agent.Response {
	return c.agent.Chat(ctx, input)
}

// RunChain runs a tool chain on the agent.
func (c *Client) RunChain(ctx context.Context, steps []agent.ChainStep) []types.GenerationOutcome {
	return c.agent.RunChain(ctx, steps)
}

// SaveSession stores the agent memory under cfg.Agent.MemoryKey.
func (c *Client) SaveSession(ctx context.Context) error {
	return c.agent.SaveMemory(ctx, c.cfg.Agent.MemoryKey)
}

// LoadSession restores the agent memory from cfg.Agent.MemoryKey. A missing
// session is not an error.
func (c *Client) LoadSession(ctx context.Context) error {
	err := c.agent.LoadMemory(ctx, c.cfg.Agent.MemoryKey)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	return err
}

// Agent returns the client's agent.
func (c *Client) Agent() *agent.Agent { return c.agent }

// Stats returns cumulative batch counters.
func (c *Client) Stats() batch.Stats { return c.dispatcher.Stats() }

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config { return c.cfg }

// Logger returns the client logger.
func (c *Client) Logger() *zap.Logger { return c.logger }

// Close releases the session store and flushes telemetry.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	if err := c.otel.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
	}
	_ = c.logger.Sync()
	return errors.Join(errs...)
}
