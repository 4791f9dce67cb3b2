// MockImageProvider is a scriptable image.Provider for tests.
//
// Supports fixed payloads, per-call error sequences, delays and
// concurrency tracking.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/imageflow/llm/image"
	"github.com/BaSui01/imageflow/testutil/fixtures"
)

// MockImageProvider implements image.Provider.
type MockImageProvider struct {
	mu sync.Mutex

	name    string
	payload string
	err     error
	errSeq  []error
	delay   time.Duration

	generateFunc func(ctx context.Context, req *image.GenerateRequest) (*image.GenerateResponse, error)

	calls       []image.GenerateRequest
	inFlight    int
	maxInFlight int
}

// NewMockImageProvider returns a provider answering every call with an
// 8x8 PNG data URI.
func NewMockImageProvider() *MockImageProvider {
	return &MockImageProvider{
		name:    "mock",
		payload: fixtures.PNGDataURI(8, 8),
	}
}

// WithName sets the provider name.
func (m *MockImageProvider) WithName(name string) *MockImageProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m
}

// WithPayload sets the data URI returned on success.
func (m *MockImageProvider) WithPayload(payload string) *MockImageProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = payload
	return m
}

// WithError makes every call fail with err.
func (m *MockImageProvider) WithError(err error) *MockImageProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithErrorSequence scripts the outcome of the first calls in order; a nil
// entry is a success. Calls past the sequence fall back to WithError.
func (m *MockImageProvider) WithErrorSequence(errs ...error) *MockImageProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errSeq = errs
	return m
}

// WithDelay delays every call, honouring ctx.
func (m *MockImageProvider) WithDelay(d time.Duration) *MockImageProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithGenerateFunc replaces the scripted behaviour entirely.
func (m *MockImageProvider) WithGenerateFunc(fn func(ctx context.Context, req *image.GenerateRequest) (*image.GenerateResponse, error)) *MockImageProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateFunc = fn
	return m
}

// Name returns the provider name.
func (m *MockImageProvider) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Generate records the call and returns the scripted result.
func (m *MockImageProvider) Generate(ctx context.Context, req *image.GenerateRequest) (*image.GenerateResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, *req)
	callIndex := len(m.calls) - 1
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	delay, fn, payload, name := m.delay, m.generateFunc, m.payload, m.name
	err := m.err
	if callIndex < len(m.errSeq) {
		err = m.errSeq[callIndex]
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	return &image.GenerateResponse{
		Provider:  name,
		Model:     "mock-image",
		Images:    []image.ImageData{{URL: payload}},
		Usage:     image.ImageUsage{ImagesGenerated: 1},
		CreatedAt: time.Now(),
	}, nil
}

// CallCount returns the number of Generate calls.
func (m *MockImageProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Prompts returns the prompts of all calls in call order.
func (m *MockImageProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompts := make([]string, len(m.calls))
	for i, c := range m.calls {
		prompts[i] = c.Prompt
	}
	return prompts
}

// MaxConcurrent returns the highest number of simultaneous calls seen.
func (m *MockImageProvider) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// Reset clears recorded calls.
func (m *MockImageProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.inFlight = 0
	m.maxInFlight = 0
}
