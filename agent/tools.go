package agent

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/types"
)

// ToolKind names one of the agent's built-in tools.
type ToolKind string

const (
	ToolEnhancePrompt      ToolKind = "enhance_prompt"
	ToolGenerateVariations ToolKind = "generate_variations"
	ToolStyleTransfer      ToolKind = "style_transfer"
	ToolBatchTheme         ToolKind = "batch_theme"
)

// ToolKinds lists every tool in registration order.
func ToolKinds() []ToolKind {
	return []ToolKind{ToolEnhancePrompt, ToolGenerateVariations, ToolStyleTransfer, ToolBatchTheme}
}

// ParseToolKind reports whether name is a known tool.
func ParseToolKind(name string) (ToolKind, bool) {
	for _, k := range ToolKinds() {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

const (
	defaultVariationCount = 3
	defaultThemeCount     = 5
	themeConcurrency      = 3

	ThemeWebsiteHero = "website_hero"
	ThemeSocialMedia = "social_media"
	ThemeMarketing   = "marketing"
)

var enhancements = []string{
	"high quality, professional",
	"detailed, photorealistic",
	"artistic composition",
	"perfect lighting",
}

var variationSuffixes = []string{
	"morning light",
	"sunset atmosphere",
	"dramatic lighting",
	"minimalist style",
	"vibrant colors",
}

var styleMappings = map[string]string{
	"cyberpunk":      "cyberpunk style, neon lights, futuristic",
	"watercolor":     "watercolor painting style, soft edges, artistic",
	"oil_painting":   "oil painting style, rich textures, classical art",
	"anime":          "anime style, manga aesthetic, Japanese art",
	"photorealistic": "photorealistic, 8K resolution, ultra detailed",
}

// %s is the theme name.
var themeTemplates = map[string][]string{
	ThemeWebsiteHero: {
		"Modern website hero section, %s theme",
		"Professional team photo, %s industry",
		"Product showcase, %s style",
		"Office environment, %s company",
		"Customer testimonial background, %s",
	},
	ThemeSocialMedia: {
		"Instagram post background, %s",
		"Twitter header image, %s",
		"LinkedIn banner, professional %s",
		"Facebook cover photo, %s",
		"YouTube thumbnail background, %s",
	},
	ThemeMarketing: {
		"Email header image, %s",
		"Landing page hero, %s",
		"Advertisement background, %s",
		"Presentation slide background, %s",
		"Brochure cover, %s",
	},
}

// EnhancePrompt appends quality qualifiers and the remembered
// "preferred_style", if any.
func (a *Agent) EnhancePrompt(base string) string {
	parts := append([]string(nil), enhancements...)
	if style, ok := a.memory.ContextValue("preferred_style"); ok {
		if s := fmt.Sprint(style); s != "" {
			parts = append(parts, s)
		}
	}
	return base + ", " + strings.Join(parts, ", ")
}

// GenerateVariations generates up to five lighting and mood variations of
// base one after another, pausing Delay after each one including the last.
// count <= 0 means 3.
func (a *Agent) GenerateVariations(ctx context.Context, base string, count int) []types.GenerationOutcome {
	if count <= 0 {
		count = defaultVariationCount
	}
	count = min(count, len(variationSuffixes))

	requests := make([]types.GenerationRequest, count)
	for i := range count {
		requests[i] = types.NewGenerationRequest(
			base+", "+variationSuffixes[i],
			fmt.Sprintf("variation_%d.%s", i+1, a.cfg.Format),
		)
	}

	outcomes := a.batch.RunBatch(ctx, types.BatchSpec{
		Requests:       requests,
		InterItemDelay: a.cfg.Delay,
	})
	// the batch skips the pause after its last item; variations keep it
	_ = pause(ctx, a.cfg.Delay)
	return outcomes
}

// StyleTransfer generates prompt in a named style. Unknown styles are used
// verbatim as the style description.
func (a *Agent) StyleTransfer(ctx context.Context, prompt, style string) types.GenerationOutcome {
	key := styleKey(style)
	desc, ok := styleMappings[key]
	if !ok {
		desc = strings.TrimSpace(style)
	}

	styled := prompt
	if desc != "" {
		styled = prompt + ", " + desc
	}
	if key == "" {
		key = "styled"
	}

	filename := fmt.Sprintf("%s_%s.%s", key, fileStem(prompt), a.cfg.Format)
	req := types.NewGenerationRequest(styled, filename)
	if strings.TrimSpace(prompt) == "" {
		return types.FailedOutcome(req, types.NewError(types.ErrInvalidRequest, "style transfer needs a prompt"), 0)
	}
	return a.runner.Run(ctx, req)
}

// BatchTheme generates a themed set in parallel, at most three at a time.
// Unknown themes get generic "<theme> image <n>" prompts. count <= 0 means 5.
func (a *Agent) BatchTheme(ctx context.Context, theme string, count int) []types.GenerationOutcome {
	if count <= 0 {
		count = defaultThemeCount
	}

	prompts := themePrompts(theme, count)
	requests := make([]types.GenerationRequest, len(prompts))
	for i, p := range prompts {
		requests[i] = types.GenerationRequest{
			ID:       fmt.Sprintf("%s_%d", theme, i),
			Prompt:   p,
			Filename: fmt.Sprintf("%s_%d.%s", theme, i, a.cfg.Format),
		}
	}

	a.logger.Debug("theme batch", zap.String("theme", theme), zap.Int("count", len(requests)))
	return a.batch.RunBatch(ctx, types.BatchSpec{
		Requests:       requests,
		Parallel:       true,
		MaxConcurrency: themeConcurrency,
	})
}

func themePrompts(theme string, count int) []string {
	templates, ok := themeTemplates[theme]
	if !ok {
		prompts := make([]string, count)
		for i := range prompts {
			prompts[i] = fmt.Sprintf("%s image %d", theme, i+1)
		}
		return prompts
	}

	templates = templates[:min(count, len(templates))]
	prompts := make([]string, len(templates))
	for i, t := range templates {
		prompts[i] = fmt.Sprintf(t, theme)
	}
	return prompts
}

// styleKey lowercases a style name and joins its words with underscores,
// so "Oil Painting" finds oil_painting.
func styleKey(style string) string {
	return strings.Join(strings.Fields(strings.ToLower(style)), "_")
}

// fileStem turns a prompt into a filename stem: last path element, no
// extension, whitespace collapsed to underscores.
func fileStem(prompt string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(prompt), "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	stem := strings.Join(strings.Fields(base), "_")
	if stem == "" || stem == "." || stem == "/" {
		return "image"
	}
	return stem
}
