package hooks

import (
	"context"
	"fmt"

	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/notify"
	"github.com/klauern/hookguard/internal/prompt"
)

// PromptHook scores submitted prompts and blocks the ones below threshold.
type PromptHook struct {
	*core.BaseHook
	evaluator *prompt.Evaluator
}

// NewPromptHook creates a new prompt hook instance
func NewPromptHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("prompt", "Prompt Hook", "Scores prompt quality and blocks vague prompts", ctx)
	h := &PromptHook{BaseHook: base}
	e, err := prompt.NewEvaluatorWithout(h.Config().Prompt.DisabledRules)
	if err != nil {
		h.Printf("Ignoring prompt.disabledRules: %v\n", err)
		e = prompt.NewEvaluator()
	}
	h.evaluator = e
	return h
}

// Events implements core.EventsProvider.
func (h *PromptHook) Events() []core.EventType {
	return []core.EventType{core.UserPromptSubmitEvent}
}

// Run executes the prompt hook.
func (h *PromptHook) Run() error {
	return h.Dispatch(context.Background(), core.Handlers{UserPromptSubmit: h.userPromptHandler})
}

// promptVerdict is what the hook decided about one prompt.
type promptVerdict struct {
	Result   prompt.Result
	Passed   bool
	Message  string
	Response core.PromptResponse
}

func decidePrompt(res prompt.Result, threshold int) promptVerdict {
	msg := fmt.Sprintf("Prompt quality score: %d/100", res.Score)
	v := promptVerdict{Result: res, Passed: res.Slash || res.Passes(threshold), Message: msg}
	if v.Passed {
		v.Response = core.AllowPrompt(msg)
	} else {
		v.Response = core.BlockPrompt(
			fmt.Sprintf("Prompt quality score too low (%d)", res.Score),
			"Prompt quality does not meet the required standard",
			msg,
		)
	}
	return v
}

func (h *PromptHook) userPromptHandler(_ context.Context, env *core.Envelope) error {
	dir := env.Cwd
	if dir == "" {
		dir = h.Context().WorkDir
	}
	hasContext := prompt.HasProjectMarker(dir, h.Context().FileSystem.Stat)
	v := decidePrompt(h.evaluator.Analyze(env.Prompt, hasContext), h.Config().Prompt.Threshold)

	h.LogEvent(eventlog.EventPromptSubmit,
		fmt.Sprintf("score: %d, prompt: %s", v.Result.Score, notify.Truncate(env.Prompt, 50)))

	if h.Context().LoggingEnabled {
		h.LogHookEvent("prompt_evaluated", "", map[string]interface{}{
			"score":  v.Result.Score,
			"passed": v.Passed,
		}, map[string]interface{}{"hits": v.Result.Hits})
	}

	if v.Passed {
		h.Notify("Claude Code - Prompt received", "Quality check complete", v.Message)
	} else {
		h.Notify("Claude Code - Prompt quality warning", "Quality score too low", v.Message)
	}
	return core.WriteJSON(h.Context().Stdout, v.Response)
}
