package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/internal/ctxkeys"
	"github.com/BaSui01/imageflow/types"
)

// Intent is the branch a chat input was routed to.
type Intent string

const (
	IntentEnhance    Intent = "enhance"
	IntentVariations Intent = "variations"
	IntentStyle      Intent = "style"
	IntentTheme      Intent = "theme"
	IntentDirect     Intent = "direct"
)

// Response is the result of one chat turn.
type Response struct {
	Agent       string                    `json:"agent"`
	Input       string                    `json:"input"`
	Intent      Intent                    `json:"intent"`
	Actions     []string                  `json:"actions"`
	Results     []types.GenerationOutcome `json:"results"`
	Suggestions []string                  `json:"suggestions"`
}

var suggestions = []string{
	"Try 'variations' to generate different versions",
	"Use 'enhance' for better quality",
	"Apply styles like 'cyberpunk', 'watercolor', or 'anime'",
	"Generate themed batches with 'batch website_hero' or 'batch social_media'",
}

var (
	enhanceWord    = regexp.MustCompile(`(?i)enhance`)
	variationsWord = regexp.MustCompile(`(?i)variations`)
	ofWord         = regexp.MustCompile(`(?i)\bof\b`)
	styleWord      = regexp.MustCompile(`(?i)style`)
	spaces         = regexp.MustCompile(`\s+`)
)

type route struct {
	intent Intent
	match  func(lower string) bool
	handle func(a *Agent, ctx context.Context, input string, resp *Response)
}

// routes is checked in order; the first match wins.
var routes = []route{
	{IntentEnhance, contains("enhance"), (*Agent).handleEnhance},
	{IntentVariations, contains("variations"), (*Agent).handleVariations},
	{IntentStyle, contains("style"), (*Agent).handleStyle},
	{IntentTheme, contains("batch", "theme"), (*Agent).handleTheme},
	{IntentDirect, func(string) bool { return true }, (*Agent).handleDirect},
}

func contains(words ...string) func(string) bool {
	return func(lower string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
}

// Classify returns the intent input would be routed to.
func Classify(input string) Intent {
	lower := strings.ToLower(input)
	for _, r := range routes {
		if r.match(lower) {
			return r.intent
		}
	}
	return IntentDirect
}

// Chat routes input to exactly one branch, runs it and records every
// outcome. Suggestions are returned once the session has a generated image.
func (a *Agent) Chat(ctx context.Context, input string) *Response {
	resp := &Response{
		Agent:       a.cfg.Name,
		Input:       input,
		Actions:     []string{},
		Results:     []types.GenerationOutcome{},
		Suggestions: []string{},
	}

	ctx, runID := ctxkeys.EnsureRunID(ctx, uuid.NewString)

	lower := strings.ToLower(input)
	for _, r := range routes {
		if !r.match(lower) {
			continue
		}
		resp.Intent = r.intent
		a.logger.Debug("routing chat input",
			zap.String("run_id", runID),
			zap.String("intent", string(r.intent)),
		)
		if a.recorder != nil {
			a.recorder.RecordAgentIntent(string(r.intent))
		}
		r.handle(a, ctx, input, resp)
		break
	}

	a.remember(input, resp.Results...)

	if a.memory.GeneratedCount() > 0 {
		resp.Suggestions = append(resp.Suggestions, suggestions...)
	}
	return resp
}

func (a *Agent) handleEnhance(ctx context.Context, input string, resp *Response) {
	base := clean(enhanceWord.ReplaceAllString(input, ""))
	enhanced := a.EnhancePrompt(base)
	resp.Actions = append(resp.Actions, "Enhanced prompt: "+enhanced)

	filename := fmt.Sprintf("enhanced_%d.%s", a.memory.GeneratedCount(), a.cfg.Format)
	resp.Results = append(resp.Results, a.runner.Run(ctx, types.NewGenerationRequest(enhanced, filename)))
}

func (a *Agent) handleVariations(ctx context.Context, input string, resp *Response) {
	base := variationsWord.ReplaceAllString(input, "")
	base = clean(ofWord.ReplaceAllString(base, ""))
	resp.Actions = append(resp.Actions, "Generating variations of: "+base)
	resp.Results = append(resp.Results, a.GenerateVariations(ctx, base, defaultVariationCount)...)
}

func (a *Agent) handleStyle(ctx context.Context, input string, resp *Response) {
	parts := styleWord.Split(input, 2)
	if len(parts) < 2 {
		a.handleDirect(ctx, input, resp)
		return
	}
	style, prompt := clean(parts[0]), clean(parts[1])
	resp.Actions = append(resp.Actions, fmt.Sprintf("Applying %s style to: %s", style, prompt))
	resp.Results = append(resp.Results, a.StyleTransfer(ctx, prompt, style))
}

func (a *Agent) handleTheme(ctx context.Context, input string, resp *Response) {
	lower := strings.ToLower(input)
	theme := ThemeWebsiteHero
	switch {
	case strings.Contains(lower, "social"):
		theme = ThemeSocialMedia
	case strings.Contains(lower, "marketing"):
		theme = ThemeMarketing
	}
	resp.Actions = append(resp.Actions, fmt.Sprintf("Generating %s batch", theme))
	resp.Results = append(resp.Results, a.BatchTheme(ctx, theme, defaultThemeCount)...)
}

func (a *Agent) handleDirect(ctx context.Context, input string, resp *Response) {
	resp.Actions = append(resp.Actions, "Direct image generation")
	filename := fmt.Sprintf("image_%d.%s", a.memory.GeneratedCount(), a.cfg.Format)
	resp.Results = append(resp.Results, a.runner.Run(ctx, types.NewGenerationRequest(input, filename)))
}

func clean(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
