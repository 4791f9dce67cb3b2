package retry

import "context"

// DoWithResultTyped wraps Retryer.DoWithResult with a typed result.
//
//	resp, err := retry.DoWithResultTyped(r, ctx, func() (*image.GenerateResponse, error) {
//	    return provider.Generate(ctx, req)
//	})
func DoWithResultTyped[T any](r Retryer, ctx context.Context, fn func() (T, error)) (T, error) {
	result, err := r.DoWithResult(ctx, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := result.(T)
	return typed, nil
}
