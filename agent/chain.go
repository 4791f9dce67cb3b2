package agent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/internal/ctxkeys"
	"github.com/BaSui01/imageflow/types"
)

// ChainStep is one tool invocation in a chain.
type ChainStep struct {
	Tool   string         `json:"tool" yaml:"tool"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// RunChain runs steps in order and returns their outcomes flattened in
// step order. Unknown tools are skipped. Delay is slept after every step,
// including skipped steps and the last one. If ctx ends during that pause
// the chain stops with the outcomes gathered so far.
func (a *Agent) RunChain(ctx context.Context, steps []ChainStep) []types.GenerationOutcome {
	outcomes := []types.GenerationOutcome{}
	ctx, runID := ctxkeys.EnsureRunID(ctx, uuid.NewString)
	logger := a.logger.With(zap.String("run_id", runID))

	for i, step := range steps {
		kind, ok := ParseToolKind(step.Tool)
		if !ok {
			logger.Debug("skipping unknown tool", zap.Int("step", i), zap.String("tool", step.Tool))
			a.recordStep(step.Tool, "skipped")
		} else {
			results := a.runTool(ctx, kind, step.Params)
			outcomes = append(outcomes, results...)
			a.recordStep(string(kind), stepStatus(results))
		}

		if err := pause(ctx, a.cfg.Delay); err != nil {
			logger.Warn("chain interrupted",
				zap.Int("step", i),
				zap.Int("remaining", len(steps)-i-1),
				zap.Error(err),
			)
			break
		}
	}

	return outcomes
}

func (a *Agent) runTool(ctx context.Context, kind ToolKind, params map[string]any) []types.GenerationOutcome {
	switch kind {
	case ToolEnhancePrompt:
		base, ok := stringParam(params, "base_prompt")
		if !ok {
			return []types.GenerationOutcome{missingParam(kind, "base_prompt")}
		}
		enhanced := a.EnhancePrompt(base)
		return []types.GenerationOutcome{{
			Success:  true,
			ID:       string(kind),
			Metadata: map[string]any{"enhanced_prompt": enhanced},
		}}

	case ToolGenerateVariations:
		base, ok := stringParam(params, "base_prompt")
		if !ok {
			return []types.GenerationOutcome{missingParam(kind, "base_prompt")}
		}
		return a.GenerateVariations(ctx, base, intParam(params, "count"))

	case ToolStyleTransfer:
		prompt, ok := stringParam(params, "prompt")
		if !ok {
			return []types.GenerationOutcome{missingParam(kind, "prompt")}
		}
		style, ok := stringParam(params, "style")
		if !ok {
			return []types.GenerationOutcome{missingParam(kind, "style")}
		}
		return []types.GenerationOutcome{a.StyleTransfer(ctx, prompt, style)}

	case ToolBatchTheme:
		theme, ok := stringParam(params, "theme")
		if !ok {
			return []types.GenerationOutcome{missingParam(kind, "theme")}
		}
		return a.BatchTheme(ctx, theme, intParam(params, "count"))

	default:
		panic(fmt.Sprintf("agent: unhandled tool kind %q", kind))
	}
}

func (a *Agent) recordStep(tool, status string) {
	if a.recorder != nil {
		a.recorder.RecordChainStep(tool, status)
	}
}

func stepStatus(outcomes []types.GenerationOutcome) string {
	for _, o := range outcomes {
		if !o.Success {
			return "error"
		}
	}
	return "success"
}

func missingParam(kind ToolKind, name string) types.GenerationOutcome {
	req := types.GenerationRequest{ID: string(kind)}
	err := types.NewError(types.ErrInvalidRequest, fmt.Sprintf("%s: missing parameter %q", kind, name))
	return types.FailedOutcome(req, err, 0)
}

func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// intParam returns 0 when key is absent or not a number.
func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
