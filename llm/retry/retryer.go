package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/types"
)

// RetryPolicy configures a fixed-delay retryer.
type RetryPolicy struct {
	MaxAttempts int                                               // total attempts, numbered from 1
	Delay       time.Duration                                     // slept before every attempt after the first
	OnRetry     func(attempt int, err error, delay time.Duration) // called after each failed attempt that will be retried
}

// DefaultRetryPolicy matches the provider defaults: 3 attempts, 5s apart.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
	}
}

// Retryer runs an operation until it succeeds or attempts run out.
type Retryer interface {
	// Do runs fn with retries.
	Do(ctx context.Context, fn func() error) error

	// DoWithResult runs fn with retries and returns its result.
	DoWithResult(ctx context.Context, fn func() (any, error)) (any, error)
}

type fixedRetryer struct {
	policy RetryPolicy
	logger *zap.Logger
}

// NewRetryer creates a fixed-delay retryer. A nil policy uses
// DefaultRetryPolicy; fewer than one attempt is raised to one.
func NewRetryer(policy *RetryPolicy, logger *zap.Logger) Retryer {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := *policy
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}

	return &fixedRetryer{
		policy: p,
		logger: logger.With(zap.String("component", "retryer")),
	}
}

func (r *fixedRetryer) Do(ctx context.Context, fn func() error) error {
	_, err := r.DoWithResult(ctx, func() (any, error) {
		return nil, fn()
	})
	return err
}

// DoWithResult returns the first success. After the last attempt it returns
// that attempt's error unchanged. A non-retryable *types.Error ends the loop
// at once. When ctx ends during a delay the last error is joined with
// ctx.Err(), unless the last error already is that context error.
func (r *fixedRetryer) DoWithResult(ctx context.Context, fn func() (any, error)) (any, error) {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := wait(ctx, r.policy.Delay); err != nil {
				if errors.Is(lastErr, err) {
					return nil, lastErr
				}
				return nil, errors.Join(lastErr, err)
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 1 {
				r.logger.Info("attempt succeeded after retry", zap.Int("attempt", attempt))
			}
			return result, nil
		}
		lastErr = err

		r.logger.Warn("attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.policy.MaxAttempts),
			zap.Error(err),
		)

		if permanent(err) {
			return nil, err
		}

		if attempt < r.policy.MaxAttempts && r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt, err, r.policy.Delay)
		}
	}

	r.logger.Error("all attempts failed",
		zap.Int("attempts", r.policy.MaxAttempts),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

// permanent reports a structured error explicitly marked non-retryable.
func permanent(err error) bool {
	var e *types.Error
	return errors.As(err, &e) && !e.Retryable
}

func wait(ctx context.Context, d time.Duration) error {
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
