package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/agent/persistence"
	"github.com/BaSui01/imageflow/types"
)

// Runner generates one image. *generator.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req types.GenerationRequest) types.GenerationOutcome
}

// BatchRunner runs a batch. *batch.Dispatcher implements it.
type BatchRunner interface {
	RunBatch(ctx context.Context, spec types.BatchSpec) []types.GenerationOutcome
}

// Recorder receives agent metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordAgentIntent(intent string)
	RecordChainStep(tool, status string)
}

// Config configures an Agent.
type Config struct {
	Name string
	// Format is the file extension of generated images
	Format string
	// Delay paces variations and chain steps
	Delay time.Duration
	// MemoryEnabled records interactions in SessionMemory
	MemoryEnabled bool
}

// DefaultConfig returns the agent defaults.
func DefaultConfig() Config {
	return Config{
		Name:          "ImageAgent",
		Format:        "webp",
		Delay:         2 * time.Second,
		MemoryEnabled: true,
	}
}

// Agent routes chat input to image tools and remembers the session.
type Agent struct {
	cfg      Config
	runner   Runner
	batch    BatchRunner
	store    persistence.SessionStore
	recorder Recorder
	memory   *SessionMemory
	logger   *zap.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithStore sets the store used by SaveMemory and LoadMemory.
func WithStore(s persistence.SessionStore) Option {
	return func(a *Agent) { a.store = s }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Agent) { a.recorder = r }
}

// WithMemory replaces the session memory.
func WithMemory(m *SessionMemory) Option {
	return func(a *Agent) { a.memory = m }
}

// New creates an agent on top of a single-item runner and a batch runner.
func New(cfg Config, runner Runner, batch BatchRunner, logger *zap.Logger, opts ...Option) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = DefaultConfig().Name
	}
	if cfg.Format == "" {
		cfg.Format = DefaultConfig().Format
	}

	a := &Agent{
		cfg:    cfg,
		runner: runner,
		batch:  batch,
		memory: NewSessionMemory(),
		logger: logger.With(zap.String("component", "agent"), zap.String("agent", cfg.Name)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.cfg.Name }

// Memory returns the session memory.
func (a *Agent) Memory() *SessionMemory { return a.memory }

func (a *Agent) remember(prompt string, outcomes ...types.GenerationOutcome) {
	if !a.cfg.MemoryEnabled {
		return
	}
	for _, o := range outcomes {
		a.memory.Record(prompt, o)
	}
}

// SaveMemory writes the session memory under key.
func (a *Agent) SaveMemory(ctx context.Context, key string) error {
	if a.store == nil {
		return fmt.Errorf("save memory: no session store configured")
	}
	if err := a.store.Save(ctx, key, a.memory.Snapshot()); err != nil {
		return fmt.Errorf("save memory %q: %w", key, err)
	}
	a.logger.Debug("memory saved", zap.String("key", key))
	return nil
}

// LoadMemory restores history and context saved under key.
func (a *Agent) LoadMemory(ctx context.Context, key string) error {
	if a.store == nil {
		return fmt.Errorf("load memory: no session store configured")
	}
	snap, err := a.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load memory %q: %w", key, err)
	}
	a.memory.Restore(snap)
	a.logger.Debug("memory loaded",
		zap.String("key", key),
		zap.Int("history", len(snap.History)),
	)
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
