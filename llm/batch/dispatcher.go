package batch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/imageflow/internal/ctxkeys"
	"github.com/BaSui01/imageflow/types"
)

// Dispatch modes, also used as metric labels.
const (
	ModeParallel   = "parallel"
	ModeSequential = "sequential"
)

// Runner produces one outcome per request. *generator.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req types.GenerationRequest) types.GenerationOutcome
}

// Recorder receives per-item batch metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordBatchItem(mode, status string)
}

// Dispatcher runs batches either with bounded concurrency or sequentially
// with pacing. Outcomes always come back in request order.
type Dispatcher struct {
	runner   Runner
	recorder Recorder
	logger   *zap.Logger

	// counters
	batches   atomic.Int64
	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder reports every item outcome to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// NewDispatcher creates a dispatcher around runner.
func NewDispatcher(runner Runner, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		runner: runner,
		logger: logger.With(zap.String("component", "batch_dispatcher")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunBatch returns exactly one outcome per request, in input order. A failed
// item never stops the batch. Requests without an OutputDir inherit
// spec.OutputDir.
func (d *Dispatcher) RunBatch(ctx context.Context, spec types.BatchSpec) []types.GenerationOutcome {
	d.batches.Add(1)
	d.submitted.Add(int64(len(spec.Requests)))

	requests := make([]types.GenerationRequest, len(spec.Requests))
	for i, req := range spec.Requests {
		if req.OutputDir == "" {
			req.OutputDir = spec.OutputDir
		}
		requests[i] = req
	}

	mode := ModeSequential
	if spec.Parallel {
		mode = ModeParallel
	}
	ctx, runID := ctxkeys.EnsureRunID(ctx, uuid.NewString)
	logger := d.logger.With(zap.String("run_id", runID))
	logger.Info("batch started",
		zap.String("mode", mode),
		zap.Int("requests", len(requests)),
	)

	start := time.Now()
	var outcomes []types.GenerationOutcome
	if spec.Parallel {
		outcomes = d.runParallel(ctx, requests, spec.MaxConcurrency)
	} else {
		outcomes = d.runSequential(ctx, requests, spec.InterItemDelay)
	}

	succeeded := 0
	for _, o := range outcomes {
		status := "success"
		if o.Success {
			succeeded++
			d.succeeded.Add(1)
		} else {
			status = "error"
			d.failed.Add(1)
		}
		if d.recorder != nil {
			d.recorder.RecordBatchItem(mode, status)
		}
	}

	logger.Info("batch finished",
		zap.String("mode", mode),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(outcomes)-succeeded),
		zap.Duration("duration", time.Since(start)),
	)
	return outcomes
}

// runParallel admits at most limit items at once through an errgroup and
// writes each outcome into its request's slot.
func (d *Dispatcher) runParallel(ctx context.Context, requests []types.GenerationRequest, limit int) []types.GenerationOutcome {
	if limit < 1 {
		d.logger.Warn("invalid max concurrency, using default",
			zap.Int("max_concurrency", limit),
			zap.Int("default", types.DefaultMaxConcurrency),
		)
		limit = types.DefaultMaxConcurrency
	}

	outcomes := make([]types.GenerationOutcome, len(requests))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, req := range requests {
		g.Go(func() error {
			outcomes[i] = d.runner.Run(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// runSequential runs items one by one, sleeping delay after each item but
// the last. If ctx ends during a pause the remaining items fail without
// being run.
func (d *Dispatcher) runSequential(ctx context.Context, requests []types.GenerationRequest, delay time.Duration) []types.GenerationOutcome {
	outcomes := make([]types.GenerationOutcome, 0, len(requests))

	for i, req := range requests {
		outcomes = append(outcomes, d.runner.Run(ctx, req))

		if i == len(requests)-1 {
			break
		}
		if err := pause(ctx, delay); err != nil {
			d.logger.Warn("batch interrupted", zap.Int("remaining", len(requests)-i-1), zap.Error(err))
			for _, rest := range requests[i+1:] {
				outcomes = append(outcomes, types.FailedOutcome(rest, err, 0))
			}
			break
		}
	}

	return outcomes
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats returns cumulative dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Batches:   d.batches.Load(),
		Submitted: d.submitted.Load(),
		Succeeded: d.succeeded.Load(),
		Failed:    d.failed.Load(),
	}
}

// Stats holds dispatcher counters.
type Stats struct {
	Batches   int64 `json:"batches"`
	Submitted int64 `json:"submitted"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// SuccessRate returns succeeded / (succeeded + failed).
func (s Stats) SuccessRate() float64 {
	done := s.Succeeded + s.Failed
	if done == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(done)
}
