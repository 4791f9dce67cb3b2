package persistence

import (
	"fmt"

	"github.com/BaSui01/imageflow/config"
)

// NewSessionStore creates a session store from configuration.
func NewSessionStore(cfg config.StoreConfig) (SessionStore, error) {
	switch StoreType(cfg.Type) {
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeFile, "":
		return NewFileStore(cfg.BaseDir)
	case StoreTypeRedis:
		return NewRedisStore(cfg.Redis)
	case StoreTypeSQL:
		return NewSQLStore(cfg.SQL)
	default:
		return nil, fmt.Errorf("unknown session store type: %s", cfg.Type)
	}
}

// MustNewSessionStore creates a session store or panics.
func MustNewSessionStore(cfg config.StoreConfig) SessionStore {
	store, err := NewSessionStore(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create session store: %v", err))
	}
	return store
}
