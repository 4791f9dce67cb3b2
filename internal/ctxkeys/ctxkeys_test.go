package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunID(t *testing.T) {
	_, ok := RunID(context.Background())
	assert.False(t, ok)

	_, ok = RunID(WithRunID(context.Background(), ""))
	assert.False(t, ok, "empty run id is unset")

	id, ok := RunID(WithRunID(context.Background(), "batch-1"))
	assert.True(t, ok)
	assert.Equal(t, "batch-1", id)
}

func TestEnsureRunID(t *testing.T) {
	calls := 0
	gen := func() string { calls++; return "new" }

	ctx, id := EnsureRunID(context.Background(), gen)
	assert.Equal(t, "new", id)
	got, _ := RunID(ctx)
	assert.Equal(t, "new", got)

	_, id = EnsureRunID(WithRunID(context.Background(), "outer"), gen)
	assert.Equal(t, "outer", id)
	assert.Equal(t, 1, calls)
}
