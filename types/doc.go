// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types holds the shared value types of ImageFlow.

# Overview

types is the lowest package in the module and imports nothing internal. The
generator, batch, agent and persistence packages exchange data through it so
that no two of them need to import each other.

# Core types

  - GenerationRequest: one prompt to render into one file
  - GenerationOutcome: terminal success/failure record for a request
  - BatchSpec: requests plus pacing/concurrency settings
  - MemorySnapshot: whole-document form of an agent session memory
  - Error / ErrorCode: structured errors: PROVIDER_ERROR and TRANSPORT_ERROR
    are retryable, PERSISTENCE_ERROR and CONFIGURATION_ERROR are not
*/
package types
