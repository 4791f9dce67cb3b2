package types

import (
	"fmt"
	"maps"
	"time"
)

// GenerationRequest describes one image to generate. Identity is ID.
type GenerationRequest struct {
	ID        string         `json:"id" yaml:"id"`
	Prompt    string         `json:"prompt" yaml:"prompt"`
	Filename  string         `json:"filename" yaml:"filename"`
	OutputDir string         `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewGenerationRequest builds a request whose ID defaults to the filename.
func NewGenerationRequest(prompt, filename string) GenerationRequest {
	return GenerationRequest{ID: filename, Prompt: prompt, Filename: filename}
}

// Validate reports an INVALID_REQUEST error for an unusable request.
func (r GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return NewError(ErrInvalidRequest, fmt.Sprintf("request %q: prompt is required", r.ID))
	}
	if r.Filename == "" {
		return NewError(ErrInvalidRequest, fmt.Sprintf("request %q: filename is required", r.ID))
	}
	return nil
}

// GenerationOutcome is the terminal record for one request. It is passed by
// value and never modified once built.
type GenerationOutcome struct {
	Success    bool           `json:"success"`
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	Path       string         `json:"path,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SucceededOutcome builds a success outcome for req.
func SucceededOutcome(req GenerationRequest, path string, elapsed time.Duration) GenerationOutcome {
	return GenerationOutcome{
		Success:    true,
		ID:         req.ID,
		Filename:   req.Filename,
		Path:       path,
		DurationMs: elapsed.Milliseconds(),
		Metadata:   maps.Clone(req.Metadata),
	}
}

// FailedOutcome builds a failure outcome for req.
func FailedOutcome(req GenerationRequest, err error, elapsed time.Duration) GenerationOutcome {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return GenerationOutcome{
		ID:         req.ID,
		Filename:   req.Filename,
		Error:      msg,
		DurationMs: elapsed.Milliseconds(),
		Metadata:   maps.Clone(req.Metadata),
	}
}

// DefaultMaxConcurrency is used when a parallel batch does not set one.
const DefaultMaxConcurrency = 3

// BatchSpec describes a batch run.
type BatchSpec struct {
	Requests       []GenerationRequest `json:"requests" yaml:"images"`
	OutputDir      string              `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	InterItemDelay time.Duration       `json:"inter_item_delay" yaml:"delay"`
	Parallel       bool                `json:"parallel" yaml:"parallel"`
	MaxConcurrency int                 `json:"max_concurrency" yaml:"max_concurrency"`
}

// Validate checks the MaxConcurrency invariant for parallel batches.
func (s BatchSpec) Validate() error {
	if s.Parallel && s.MaxConcurrency < 1 {
		return NewConfigurationError("max_concurrency must be >= 1 for a parallel batch")
	}
	if s.InterItemDelay < 0 {
		return NewConfigurationError("delay must not be negative")
	}
	return nil
}
