// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package metrics registers the ImageFlow Prometheus metrics.

# Overview

Collector registers every metric through promauto under one namespace and
exposes Record* methods that the pipeline, batch dispatcher, agent and
session stores call through their own narrow recorder interfaces.

# Metrics

  - generations_total / generation_duration_seconds by provider and status
  - provider_retries_total by provider
  - rate_limit_wait_seconds
  - batch_items_total by mode and status
  - agent_intents_total by intent, chain_steps_total by tool and status
  - session_store_operations_total / _duration_seconds by backend and
    operation

Handler serves the default registry for scraping.
*/
package metrics
