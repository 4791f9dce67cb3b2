// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

// Package server runs the Prometheus scrape endpoint for the CLI.
//
// Manager serves /metrics from the default registry and a /healthz liveness check,
// with a non-blocking Start and a bounded Shutdown.
package server
