// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package persistence saves and restores agent session memory.

A session is one types.MemorySnapshot stored whole under a key. Backends
are chosen by config.StoreConfig.Type:

  - memory: process local map
  - file: indented JSON document, key is a path relative to BaseDir
  - redis: JSON string under KeyPrefix + "session:" + key
  - sql: gorm table imageflow_sessions, postgres, mysql or sqlite

Load of an unknown key returns ErrNotFound. Instrument wraps any store with
a metrics Recorder.
*/
package persistence
