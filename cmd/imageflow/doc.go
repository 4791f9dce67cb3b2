// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Command imageflow generates images from the command line.

Subcommands are plain flag sets: generate, batch, chat, chain, version and
help. Each one loads configuration through config.Loader (defaults, YAML,
IMAGEFLOW_* environment, legacy variables), builds an imageflow.Client and
prints outcomes as indented JSON on stdout. When metrics.enabled is set and
metrics.addr is not empty, /metrics is served for the length of the run.

Exit codes: 0 on success, 1 when any item failed or setup failed, 2 on
usage errors.
*/
package main
