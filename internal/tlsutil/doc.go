// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

package tlsutil
