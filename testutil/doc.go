// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package testutil provides shared helpers for ImageFlow tests.

# Capabilities

  - Contexts: TestContext / TestContextWithTimeout / CancelledContext,
    cancelled through t.Cleanup
  - Outcome assertions: AssertOutcomeOrder, CountOutcomes
  - Image assertions: AssertImageSize decodes png, jpeg and webp files
  - Polling: AssertEventuallyTrue

# Subpackages

  - testutil/mocks: MockImageProvider with payload, error sequence, delay
    and concurrency tracking
  - testutil/fixtures: generated PNG bytes and data URIs

# Example

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockImageProvider().WithErrorSequence(errBoom, nil)
	resp, err := provider.Generate(ctx, &image.GenerateRequest{Prompt: "fox"})
*/
package testutil
