package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerationRequest_IDDefaultsToFilename(t *testing.T) {
	req := NewGenerationRequest("a cat", "cat.webp")
	assert.Equal(t, "cat.webp", req.ID)
	assert.NoError(t, req.Validate())
}

func TestGenerationRequest_Validate(t *testing.T) {
	err := GenerationRequest{ID: "x", Filename: "x.png"}.Validate()
	require.Error(t, err)
	assert.Equal(t, ErrInvalidRequest, GetErrorCode(err))

	err = GenerationRequest{ID: "x", Prompt: "p"}.Validate()
	require.Error(t, err)
	assert.Equal(t, ErrInvalidRequest, GetErrorCode(err))
}

func TestOutcomes(t *testing.T) {
	req := GenerationRequest{ID: "hero", Prompt: "p", Filename: "hero.webp", Metadata: map[string]any{"k": "v"}}

	ok := SucceededOutcome(req, "/tmp/hero.webp", 1500*time.Millisecond)
	assert.True(t, ok.Success)
	assert.Equal(t, "hero", ok.ID)
	assert.Equal(t, "/tmp/hero.webp", ok.Path)
	assert.Equal(t, int64(1500), ok.DurationMs)
	assert.Empty(t, ok.Error)

	// outcome metadata must not alias the request map
	req.Metadata["k"] = "changed"
	assert.Equal(t, "v", ok.Metadata["k"])

	failed := FailedOutcome(req, errors.New("boom"), 20*time.Millisecond)
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.Error)
	assert.Empty(t, failed.Path)
	assert.Equal(t, int64(20), failed.DurationMs)
}

func TestBatchSpec_Validate(t *testing.T) {
	assert.NoError(t, BatchSpec{Parallel: false}.Validate())
	assert.NoError(t, BatchSpec{Parallel: true, MaxConcurrency: 2}.Validate())

	err := BatchSpec{Parallel: true}.Validate()
	require.Error(t, err)
	assert.Equal(t, ErrConfiguration, GetErrorCode(err))

	err = BatchSpec{InterItemDelay: -time.Second}.Validate()
	require.Error(t, err)
}
