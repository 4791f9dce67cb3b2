package persistence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/types"
)

// Recorder receives store operation metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordStoreOperation(backend, operation string, err error, duration time.Duration)
}

// InstrumentedStore records latency and status of every Save and Load.
type InstrumentedStore struct {
	SessionStore
	backend  string
	recorder Recorder
	logger   *zap.Logger
}

// Instrument wraps store. A nil recorder returns store unchanged.
func Instrument(store SessionStore, backend string, recorder Recorder, logger *zap.Logger) SessionStore {
	if recorder == nil {
		return store
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedStore{
		SessionStore: store,
		backend:      backend,
		recorder:     recorder,
		logger:       logger.With(zap.String("component", "session_store"), zap.String("backend", backend)),
	}
}

func (s *InstrumentedStore) Save(ctx context.Context, key string, snap *types.MemorySnapshot) error {
	start := time.Now()
	err := s.SessionStore.Save(ctx, key, snap)
	s.recorder.RecordStoreOperation(s.backend, "save", err, time.Since(start))
	if err != nil {
		s.logger.Warn("session save failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (s *InstrumentedStore) Load(ctx context.Context, key string) (*types.MemorySnapshot, error) {
	start := time.Now()
	snap, err := s.SessionStore.Load(ctx, key)
	// a missing session is a normal first run
	recorded := err
	if errors.Is(err, ErrNotFound) {
		recorded = nil
	}
	s.recorder.RecordStoreOperation(s.backend, "load", recorded, time.Since(start))
	return snap, err
}
