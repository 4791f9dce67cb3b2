// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package ratelimit provides the sliding-window admission limiter that paces
provider calls.

A Limiter admits at most RequestsPerMinute calls in any trailing window.
Admit blocks until the next admission fits, re-checking after every sleep so
concurrent callers never push the window over the limit. The clock and the
sleeper are injectable for deterministic tests.
*/
package ratelimit
