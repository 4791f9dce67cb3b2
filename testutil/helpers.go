// =============================================================================
// Test helpers
// =============================================================================
// Shared contexts, outcome assertions and polling helpers.
//
// Usage:
//
//	ctx := testutil.TestContext(t)
//	testutil.AssertOutcomeOrder(t, requests, outcomes)
// =============================================================================
package testutil

import (
	"context"
	"image"
	"os"
	"testing"
	"time"

	// register decoders used by AssertImageSize
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/chai2010/webp"

	"github.com/BaSui01/imageflow/types"
)

// =============================================================================
// Contexts
// =============================================================================

// TestContext returns a context with a 30s timeout cancelled on cleanup.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout returns a context with a custom timeout.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns an already cancelled context.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// Assertions
// =============================================================================

// AssertOutcomeOrder asserts one outcome per request, in request order.
func AssertOutcomeOrder(t *testing.T, requests []types.GenerationRequest, outcomes []types.GenerationOutcome) {
	t.Helper()

	if len(requests) != len(outcomes) {
		t.Errorf("outcome count mismatch: expected %d, got %d", len(requests), len(outcomes))
		return
	}
	for i := range requests {
		if requests[i].ID != outcomes[i].ID {
			t.Errorf("outcome[%d] id mismatch: expected %q, got %q", i, requests[i].ID, outcomes[i].ID)
		}
	}
}

// CountOutcomes returns the number of successful and failed outcomes.
func CountOutcomes(outcomes []types.GenerationOutcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// AssertImageSize decodes the file at path and checks its dimensions.
func AssertImageSize(t *testing.T, path string, width, height int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if cfg.Width != width || cfg.Height != height {
		t.Errorf("%s image %s: expected %dx%d, got %dx%d", format, path, width, height, cfg.Width, cfg.Height)
	}
}

// AssertEventuallyTrue asserts that condition becomes true within timeout.
func AssertEventuallyTrue(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("condition did not become true within %v", timeout)
}
