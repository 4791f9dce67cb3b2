// Package ctxkeys defines the context keys shared across ImageFlow packages.
package ctxkeys

import "context"

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID tags ctx with the ID of the batch, chat turn or chain that owns
// the work done under it.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the run ID set by WithRunID.
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// EnsureRunID returns ctx unchanged when it already has a run ID, otherwise
// a child tagged with newID().
func EnsureRunID(ctx context.Context, newID func() string) (context.Context, string) {
	if id, ok := RunID(ctx); ok {
		return ctx, id
	}
	id := newID()
	return WithRunID(ctx, id), id
}
