package generator

import (
	"context"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/internal/ctxkeys"
	"github.com/BaSui01/imageflow/internal/telemetry"
	"github.com/BaSui01/imageflow/llm/image"
	"github.com/BaSui01/imageflow/llm/persist"
	"github.com/BaSui01/imageflow/llm/retry"
	"github.com/BaSui01/imageflow/types"
)

// Admitter gates provider calls. *ratelimit.Limiter implements it.
type Admitter interface {
	Admit(ctx context.Context) error
}

// Saver stores a payload. *persist.Persister implements it.
type Saver interface {
	Persist(payload, outputPath string, opts persist.Options) (string, error)
}

// Recorder receives pipeline metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordGeneration(provider, status string, duration time.Duration)
	RecordRetry(provider string)
}

// Config holds the per-run settings of a Pipeline.
type Config struct {
	// BaseDir is used when a request has no OutputDir
	BaseDir string
	// Output controls format, size and quality of stored images
	Output persist.Options
	// RequestTimeout bounds each provider attempt; zero means no deadline
	RequestTimeout time.Duration
	// Retry policy for provider calls
	MaxAttempts int
	RetryDelay  time.Duration
}

// Pipeline generates and stores one image per Run.
type Pipeline struct {
	provider  image.Provider
	limiter   Admitter
	persister Saver
	retryer   retry.Retryer
	cfg       Config
	recorder  Recorder
	tracer    trace.Tracer
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder reports runs and retries to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithRetryer replaces the retryer built from Config.
func WithRetryer(r retry.Retryer) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.retryer = r
		}
	}
}

// WithTracer replaces the global ImageFlow tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// NewPipeline wires a provider, limiter and persister into a pipeline.
func NewPipeline(provider image.Provider, limiter Admitter, persister Saver, cfg Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		provider:  provider,
		limiter:   limiter,
		persister: persister,
		cfg:       cfg,
		tracer:    telemetry.Tracer(),
		logger:    logger.With(zap.String("component", "pipeline")),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.retryer == nil {
		p.retryer = retry.NewRetryer(&retry.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.RetryDelay,
			OnRetry: func(int, error, time.Duration) {
				if p.recorder != nil {
					p.recorder.RecordRetry(p.provider.Name())
				}
			},
		}, logger)
	}
	return p
}

// Run validates req, calls the provider with retries, waiting for admission
// before each attempt, and stores the image under OutputDir (or BaseDir).
// It never fails: every error becomes a failed outcome. DurationMs is
// measured from entry.
func (p *Pipeline) Run(ctx context.Context, req types.GenerationRequest) types.GenerationOutcome {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "imageflow.generate", trace.WithAttributes(
		telemetry.AttrRequestID.String(req.ID),
		telemetry.AttrFilename.String(req.Filename),
		telemetry.AttrProvider.String(p.provider.Name()),
	))
	defer span.End()

	logger := p.logger
	if runID, ok := ctxkeys.RunID(ctx); ok {
		span.SetAttributes(telemetry.AttrRunID.String(runID))
		logger = logger.With(zap.String("run_id", runID))
	}

	logger.Info("generating", zap.String("id", req.ID), zap.String("filename", req.Filename))

	path, err := p.run(ctx, req)
	elapsed := time.Since(start)

	status := "success"
	var outcome types.GenerationOutcome
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("generation failed",
			zap.String("id", req.ID),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		outcome = types.FailedOutcome(req, err, elapsed)
	} else {
		span.SetAttributes(telemetry.AttrPath.String(path))
		logger.Info("generation succeeded",
			zap.String("id", req.ID),
			zap.String("path", path),
			zap.Duration("duration", elapsed),
		)
		outcome = types.SucceededOutcome(req, path, elapsed)
	}

	if p.recorder != nil {
		p.recorder.RecordGeneration(p.provider.Name(), status, elapsed)
	}
	return outcome
}

func (p *Pipeline) run(ctx context.Context, req types.GenerationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	// every attempt is an outgoing call and takes its own admission
	payload, err := retry.DoWithResultTyped(p.retryer, ctx, func() (string, error) {
		if err := p.limiter.Admit(ctx); err != nil {
			return "", err
		}
		return p.generateOnce(ctx, req.Prompt)
	})
	if err != nil {
		return "", err
	}

	return p.persister.Persist(payload, p.OutputPath(req), p.cfg.Output)
}

// generateOnce is one provider attempt under RequestTimeout.
func (p *Pipeline) generateOnce(ctx context.Context, prompt string) (string, error) {
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := p.provider.Generate(ctx, &image.GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	if resp != nil {
		for _, img := range resp.Images {
			if payload, ok := img.Payload(); ok {
				return payload, nil
			}
		}
	}
	return "", types.NewProviderError(200, "no image data in response").WithProvider(p.provider.Name())
}

// OutputPath is where req's image is stored.
func (p *Pipeline) OutputPath(req types.GenerationRequest) string {
	dir := req.OutputDir
	if dir == "" {
		dir = p.cfg.BaseDir
	}
	return filepath.Join(dir, req.Filename)
}

// Provider returns the provider name.
func (p *Pipeline) Provider() string { return p.provider.Name() }
