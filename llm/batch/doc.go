// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package batch dispatches groups of generation requests.

# Overview

Dispatcher.RunBatch runs a BatchSpec through a Runner (the single-item
pipeline) and returns exactly one outcome per request, in request order.

# Modes

  - Parallel: an errgroup with SetLimit(MaxConcurrency) bounds how many
    items run at once. Each goroutine writes only its own slot.
  - Sequential: items run in order with InterItemDelay after every item but
    the last. If the context ends during a pause the rest fail unrun.

A failing item never aborts the batch. Stats exposes cumulative counters.
*/
package batch
