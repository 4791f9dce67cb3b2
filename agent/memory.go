package agent

import (
	"maps"
	"slices"
	"sync"

	"github.com/BaSui01/imageflow/types"
)

// SessionMemory records what an agent has done in a session.
type SessionMemory struct {
	mu        sync.RWMutex
	history   []types.Interaction
	generated []types.GenerationOutcome
	context   map[string]any
}

// NewSessionMemory creates an empty memory.
func NewSessionMemory() *SessionMemory {
	return &SessionMemory{context: make(map[string]any)}
}

// Record appends one interaction. Successful outcomes are also kept as
// generated outcomes.
func (m *SessionMemory) Record(prompt string, outcome types.GenerationOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, types.Interaction{
		Prompt:   prompt,
		ResultID: outcome.ID,
		Success:  outcome.Success,
	})
	if outcome.Success {
		m.generated = append(m.generated, outcome)
	}
}

// History returns a copy of the interaction history.
func (m *SessionMemory) History() []types.Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history)
}

// Generated returns a copy of the successful outcomes.
func (m *SessionMemory) Generated() []types.GenerationOutcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.generated)
}

// GeneratedCount returns the number of successful outcomes.
func (m *SessionMemory) GeneratedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.generated)
}

// SetContext stores a context value, e.g. "preferred_style".
func (m *SessionMemory) SetContext(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context[key] = value
}

// ContextValue returns a context value.
func (m *SessionMemory) ContextValue(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.context[key]
	return v, ok
}

// Snapshot returns the document form of the memory.
func (m *SessionMemory) Snapshot() *types.MemorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	images := make([]types.GeneratedImageRecord, 0, len(m.generated))
	for _, o := range m.generated {
		images = append(images, types.GeneratedImageRecord{
			ID:       o.ID,
			Filename: o.Filename,
			Path:     o.Path,
			Success:  o.Success,
		})
	}

	history := slices.Clone(m.history)
	if history == nil {
		history = []types.Interaction{}
	}
	return &types.MemorySnapshot{
		History:         history,
		GeneratedImages: images,
		Context:         maps.Clone(m.context),
	}
}

// Restore replaces history and context from snap. Generated outcomes are
// not read from the snapshot; the ones already in memory are kept.
func (m *SessionMemory) Restore(snap *types.MemorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = slices.Clone(snap.History)
	m.context = maps.Clone(snap.Context)
	if m.context == nil {
		m.context = make(map[string]any)
	}
}
