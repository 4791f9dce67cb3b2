package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/imageflow/agent/persistence"
	"github.com/BaSui01/imageflow/llm/batch"
	"github.com/BaSui01/imageflow/types"
)

type fakeRunner struct {
	mu   sync.Mutex
	reqs []types.GenerationRequest
	fail func(req types.GenerationRequest) bool
}

func (f *fakeRunner) Run(_ context.Context, req types.GenerationRequest) types.GenerationOutcome {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.fail != nil && f.fail(req) {
		return types.FailedOutcome(req, errors.New("provider unavailable"), time.Millisecond)
	}
	return types.SucceededOutcome(req, filepath.Join("generated", req.Filename), time.Millisecond)
}

func (f *fakeRunner) requests() []types.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.GenerationRequest(nil), f.reqs...)
}

type spyBatch struct {
	inner *batch.Dispatcher
	specs []types.BatchSpec
}

func (s *spyBatch) RunBatch(ctx context.Context, spec types.BatchSpec) []types.GenerationOutcome {
	s.specs = append(s.specs, spec)
	return s.inner.RunBatch(ctx, spec)
}

func newTestAgent(t *testing.T, runner *fakeRunner, opts ...Option) (*Agent, *spyBatch) {
	t.Helper()
	spy := &spyBatch{inner: batch.NewDispatcher(runner, zap.NewNop())}
	cfg := Config{Name: "TestAgent", Format: "webp", MemoryEnabled: true}
	return New(cfg, runner, spy, zaptest.NewLogger(t), opts...), spy
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"enhance a cat", IntentEnhance},
		{"ENHANCE a cat", IntentEnhance},
		{"enhance a city in cyberpunk style", IntentEnhance},
		{"variations of a dog", IntentVariations},
		{"variations in watercolor style", IntentVariations},
		{"cyberpunk style a city", IntentStyle},
		{"batch social posts", IntentTheme},
		{"marketing theme", IntentTheme},
		{"a sunset over the sea", IntentDirect},
		{"", IntentDirect},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestChat_EnhanceTakesPriorityOverStyle(t *testing.T) {
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner)

	resp := a.Chat(context.Background(), "enhance a castle in anime style")

	assert.Equal(t, IntentEnhance, resp.Intent)
	assert.Equal(t, "TestAgent", resp.Agent)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)

	reqs := runner.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "enhanced_0.webp", reqs[0].Filename)
	assert.True(t, strings.HasPrefix(reqs[0].Prompt, "a castle in anime style, high quality, professional"))
	assert.Contains(t, resp.Actions[0], "Enhanced prompt: ")

	assert.Len(t, a.Memory().History(), 1)
	assert.Equal(t, 1, a.Memory().GeneratedCount())
	assert.Len(t, resp.Suggestions, 4)
}

func TestChat_FailureOnlyInHistory(t *testing.T) {
	runner := &fakeRunner{fail: func(types.GenerationRequest) bool { return true }}
	a, _ := newTestAgent(t, runner)

	resp := a.Chat(context.Background(), "a lighthouse at night")

	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Success)
	history := a.Memory().History()
	require.Len(t, history, 1)
	assert.Equal(t, types.Interaction{Prompt: "a lighthouse at night", ResultID: "image_0.webp", Success: false}, history[0])
	assert.Zero(t, a.Memory().GeneratedCount())
	assert.Empty(t, resp.Suggestions)
}

func TestChat_DirectNumbersBySuccesses(t *testing.T) {
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner)
	ctx := context.Background()

	a.Chat(ctx, "a red fox")
	a.Chat(ctx, "a blue whale")

	reqs := runner.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "image_0.webp", reqs[0].Filename)
	assert.Equal(t, "image_1.webp", reqs[1].Filename)
	assert.Equal(t, "a red fox", reqs[0].Prompt)
}

func TestChat_VariationsStripsKeywords(t *testing.T) {
	tests := []struct {
		input string
		base  string
	}{
		{"variations of a mountain lake", "a mountain lake"},
		{"Variations of coffee offers", "coffee offers"},
		{"a bridge variations", "a bridge"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			runner := &fakeRunner{}
			a, spy := newTestAgent(t, runner)

			resp := a.Chat(context.Background(), tt.input)

			assert.Equal(t, IntentVariations, resp.Intent)
			assert.Equal(t, []string{"Generating variations of: " + tt.base}, resp.Actions)
			require.Len(t, resp.Results, 3)

			reqs := runner.requests()
			require.Len(t, reqs, 3)
			assert.Equal(t, tt.base+", morning light", reqs[0].Prompt)
			assert.Equal(t, tt.base+", sunset atmosphere", reqs[1].Prompt)
			assert.Equal(t, tt.base+", dramatic lighting", reqs[2].Prompt)
			for i, r := range reqs {
				assert.Equal(t, "variation_"+string(rune('1'+i))+".webp", r.Filename)
			}

			require.Len(t, spy.specs, 1)
			assert.False(t, spy.specs[0].Parallel)
			assert.Len(t, a.Memory().History(), 3)
		})
	}
}

func TestChat_Style(t *testing.T) {
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner)

	resp := a.Chat(context.Background(), "Watercolor Style a quiet harbor")

	assert.Equal(t, IntentStyle, resp.Intent)
	assert.Equal(t, []string{"Applying Watercolor style to: a quiet harbor"}, resp.Actions)

	reqs := runner.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "a quiet harbor, watercolor painting style, soft edges, artistic", reqs[0].Prompt)
	assert.Equal(t, "watercolor_a_quiet_harbor.webp", reqs[0].Filename)
}

func TestChat_StyleWithoutPrompt(t *testing.T) {
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner)

	resp := a.Chat(context.Background(), "cyberpunk style")

	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Success)
	assert.Contains(t, resp.Results[0].Error, "INVALID_REQUEST")
	assert.Empty(t, runner.requests())
	assert.Len(t, a.Memory().History(), 1)
}

func TestChat_ThemeSelection(t *testing.T) {
	tests := []struct {
		input string
		theme string
		first string
	}{
		{"batch for social channels", ThemeSocialMedia, "Instagram post background, social_media"},
		{"marketing theme please", ThemeMarketing, "Email header image, marketing"},
		{"make a batch", ThemeWebsiteHero, "Modern website hero section, website_hero theme"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			runner := &fakeRunner{}
			a, spy := newTestAgent(t, runner)

			resp := a.Chat(context.Background(), tt.input)

			assert.Equal(t, IntentTheme, resp.Intent)
			assert.Equal(t, []string{"Generating " + tt.theme + " batch"}, resp.Actions)
			require.Len(t, resp.Results, 5)
			for i, o := range resp.Results {
				assert.Equal(t, tt.theme+"_"+string(rune('0'+i)), o.ID)
			}

			require.Len(t, spy.specs, 1)
			spec := spy.specs[0]
			assert.True(t, spec.Parallel)
			assert.Equal(t, 3, spec.MaxConcurrency)
			assert.Equal(t, tt.first, spec.Requests[0].Prompt)
		})
	}
}

func TestChat_MemoryDisabled(t *testing.T) {
	runner := &fakeRunner{}
	spy := &spyBatch{inner: batch.NewDispatcher(runner, zap.NewNop())}
	a := New(Config{Format: "png"}, runner, spy, nil)

	resp := a.Chat(context.Background(), "a tree")

	assert.Equal(t, "ImageAgent", resp.Agent)
	assert.Equal(t, "image_0.png", runner.requests()[0].Filename)
	assert.Empty(t, a.Memory().History())
	assert.Empty(t, resp.Suggestions)
}

func TestEnhancePrompt_PreferredStyle(t *testing.T) {
	a, _ := newTestAgent(t, &fakeRunner{})

	assert.Equal(t,
		"a cat, high quality, professional, detailed, photorealistic, artistic composition, perfect lighting",
		a.EnhancePrompt("a cat"))

	a.Memory().SetContext("preferred_style", "film grain")
	assert.True(t, strings.HasSuffix(a.EnhancePrompt("a cat"), ", perfect lighting, film grain"))
}

func TestBatchTheme_UnknownTheme(t *testing.T) {
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner)

	outcomes := a.BatchTheme(context.Background(), "retro", 2)

	require.Len(t, outcomes, 2)
	reqs := runner.requests()
	prompts := []string{reqs[0].Prompt, reqs[1].Prompt}
	assert.ElementsMatch(t, []string{"retro image 1", "retro image 2"}, prompts)
	assert.Equal(t, "retro_0", outcomes[0].ID)
	assert.Equal(t, "retro_1.webp", outcomes[1].Filename)
}

func TestGenerateVariations_Count(t *testing.T) {
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner)

	assert.Len(t, a.GenerateVariations(context.Background(), "x", 10), 5)
	assert.Len(t, a.GenerateVariations(context.Background(), "x", 0), 3)
	assert.Len(t, a.GenerateVariations(context.Background(), "x", 1), 1)
}

func TestGenerateVariations_PausesAfterLastVariation(t *testing.T) {
	runner := &fakeRunner{}
	cfg := Config{Name: "TestAgent", Format: "webp", Delay: 30 * time.Millisecond}
	a := New(cfg, runner, batch.NewDispatcher(runner, zap.NewNop()), zaptest.NewLogger(t))

	start := time.Now()
	outcomes := a.GenerateVariations(context.Background(), "x", 2)

	require.Len(t, outcomes, 2)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestSaveAndLoadMemory(t *testing.T) {
	store := persistence.NewMemoryStore()
	runner := &fakeRunner{fail: func(r types.GenerationRequest) bool { return r.Prompt == "bad" }}
	a, _ := newTestAgent(t, runner, WithStore(store))
	ctx := context.Background()

	a.Chat(ctx, "a red fox")
	a.Chat(ctx, "bad")
	a.Memory().SetContext("preferred_style", "noir")
	require.NoError(t, a.SaveMemory(ctx, "session.json"))

	snap, err := store.Load(ctx, "session.json")
	require.NoError(t, err)
	assert.Len(t, snap.History, 2)
	require.Len(t, snap.GeneratedImages, 1)
	assert.Equal(t, "image_0.webp", snap.GeneratedImages[0].ID)
	assert.Equal(t, filepath.Join("generated", "image_0.webp"), snap.GeneratedImages[0].Path)

	restored, _ := newTestAgent(t, &fakeRunner{}, WithStore(store))
	require.NoError(t, restored.LoadMemory(ctx, "session.json"))
	assert.Equal(t, a.Memory().History(), restored.Memory().History())
	assert.Zero(t, restored.Memory().GeneratedCount())
	style, ok := restored.Memory().ContextValue("preferred_style")
	require.True(t, ok)
	assert.Equal(t, "noir", style)
}

func TestLoadMemory_KeepsGeneratedOutcomes(t *testing.T) {
	store := persistence.NewMemoryStore()
	runner := &fakeRunner{}
	a, _ := newTestAgent(t, runner, WithStore(store))
	ctx := context.Background()

	require.NoError(t, a.SaveMemory(ctx, "empty.json"))
	first := a.Chat(ctx, "a red fox")
	require.Len(t, first.Results, 1)
	require.Equal(t, 1, a.Memory().GeneratedCount())

	require.NoError(t, a.LoadMemory(ctx, "empty.json"))
	assert.Empty(t, a.Memory().History())
	assert.Equal(t, 1, a.Memory().GeneratedCount())

	second := a.Chat(ctx, "a blue whale")
	require.Len(t, second.Results, 1)
	assert.NotEqual(t, first.Results[0].Filename, second.Results[0].Filename)
	assert.NotEmpty(t, second.Suggestions)
}

func TestLoadMemory_Errors(t *testing.T) {
	a, _ := newTestAgent(t, &fakeRunner{})
	assert.Error(t, a.LoadMemory(context.Background(), "k"))
	assert.Error(t, a.SaveMemory(context.Background(), "k"))

	a, _ = newTestAgent(t, &fakeRunner{}, WithStore(persistence.NewMemoryStore()))
	err := a.LoadMemory(context.Background(), "missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestFileStem(t *testing.T) {
	tests := map[string]string{
		"a quiet harbor":   "a_quiet_harbor",
		"  city  at night": "city_at_night",
		"photo.png":        "photo",
		"dir/sub/cat":      "cat",
		"":                 "image",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileStem(in), in)
	}
}
