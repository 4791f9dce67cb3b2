package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BaSui01/imageflow/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("session not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType names a backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQL    StoreType = "sql"
)

// SessionStore saves and loads whole memory snapshots by key.
type SessionStore interface {
	// Save replaces the snapshot stored under key.
	Save(ctx context.Context, key string, snap *types.MemorySnapshot) error

	// Load returns the snapshot under key or ErrNotFound.
	Load(ctx context.Context, key string) (*types.MemorySnapshot, error)

	// Ping checks if the store is healthy.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

func validate(key string, snap *types.MemorySnapshot) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	}
	return nil
}

func encode(snap *types.MemorySnapshot) ([]byte, error) {
	data, err := json.Marshal(normalize(snap))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*types.MemorySnapshot, error) {
	var snap types.MemorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return normalize(&snap), nil
}

// normalize replaces nil collections so documents always carry every key.
func normalize(snap *types.MemorySnapshot) *types.MemorySnapshot {
	out := *snap
	if out.History == nil {
		out.History = []types.Interaction{}
	}
	if out.GeneratedImages == nil {
		out.GeneratedImages = []types.GeneratedImageRecord{}
	}
	if out.Context == nil {
		out.Context = map[string]any{}
	}
	return &out
}
