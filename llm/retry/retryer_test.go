package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/types"
)

func testPolicy(attempts int) *RetryPolicy {
	return &RetryPolicy{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestRetryer_Success(t *testing.T) {
	retryer := NewRetryer(testPolicy(3), zap.NewNop())

	callCount := 0
	err := retryer.Do(context.Background(), func() error {
		callCount++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
}

func TestRetryer_RetryAndSuccess(t *testing.T) {
	policy := testPolicy(3)
	var retries []int
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		retries = append(retries, attempt)
		assert.Equal(t, time.Millisecond, delay)
	}
	retryer := NewRetryer(policy, zap.NewNop())

	callCount := 0
	testErr := errors.New("temporary error")
	err := retryer.Do(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return testErr
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestRetryer_ExhaustedReturnsLastErrorUnwrapped(t *testing.T) {
	retryer := NewRetryer(testPolicy(3), zap.NewNop())

	var errs []error
	err := retryer.Do(context.Background(), func() error {
		e := types.NewProviderError(500, "boom")
		errs = append(errs, e)
		return e
	})

	require.Len(t, errs, 3)
	assert.Same(t, errs[2], err)
}

func TestRetryer_DelayBeforeEveryRetry(t *testing.T) {
	retryer := NewRetryer(&RetryPolicy{MaxAttempts: 3, Delay: 20 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	_ = retryer.Do(context.Background(), func() error { return errors.New("fail") })

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRetryer_NonRetryableStopsImmediately(t *testing.T) {
	retryer := NewRetryer(testPolicy(5), zap.NewNop())

	callCount := 0
	perr := types.NewPersistenceError("write failed", errors.New("disk full"))
	err := retryer.Do(context.Background(), func() error {
		callCount++
		return perr
	})

	assert.Equal(t, 1, callCount)
	assert.Same(t, perr, err)
}

func TestRetryer_TransportErrorIsRetried(t *testing.T) {
	retryer := NewRetryer(testPolicy(2), zap.NewNop())

	callCount := 0
	err := retryer.Do(context.Background(), func() error {
		callCount++
		return types.NewTransportError(errors.New("connection reset"))
	})

	assert.Equal(t, 2, callCount)
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
}

func TestRetryer_ContextCancelledDuringDelay(t *testing.T) {
	retryer := NewRetryer(&RetryPolicy{MaxAttempts: 3, Delay: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	testErr := errors.New("fail")
	callCount := 0
	err := retryer.Do(ctx, func() error {
		callCount++
		return testErr
	})

	assert.Equal(t, 1, callCount)
	assert.ErrorIs(t, err, testErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryer_ContextErrorFromAttemptIsNotJoinedTwice(t *testing.T) {
	retryer := NewRetryer(testPolicy(3), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	callCount := 0
	err := retryer.Do(ctx, func() error {
		callCount++
		return ctx.Err()
	})

	assert.Equal(t, 1, callCount)
	assert.Equal(t, context.Canceled, err)
}

func TestRetryer_NilPolicyAndAttemptFloor(t *testing.T) {
	r := NewRetryer(nil, nil).(*fixedRetryer)
	assert.Equal(t, 3, r.policy.MaxAttempts)

	r = NewRetryer(&RetryPolicy{MaxAttempts: 0}, nil).(*fixedRetryer)
	assert.Equal(t, 1, r.policy.MaxAttempts)
}

func TestDoWithResultTyped(t *testing.T) {
	retryer := NewRetryer(testPolicy(2), zap.NewNop())

	calls := 0
	val, err := DoWithResultTyped[string](retryer, context.Background(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("first")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)

	_, err = DoWithResultTyped[int](retryer, context.Background(), func() (int, error) {
		return 0, errors.New("never")
	})
	assert.EqualError(t, err, "never")
}
