package hooks

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/prompt"
)

func TestPromptHook(t *testing.T) {
	ctx := core.TestHookContext(nil)
	hook := NewPromptHook(ctx)

	if hook.Key() != "prompt" {
		t.Errorf("Expected key 'prompt', got '%s'", hook.Key())
	}
	if hook.Name() != "Prompt Hook" {
		t.Errorf("Expected name 'Prompt Hook', got '%s'", hook.Name())
	}
	events := hook.(core.EventsProvider).Events()
	if len(events) != 1 || events[0] != core.UserPromptSubmitEvent {
		t.Errorf("Events = %v", events)
	}
}

func TestDecidePrompt(t *testing.T) {
	tests := []struct {
		name       string
		res        prompt.Result
		threshold  int
		wantPassed bool
	}{
		{"above", prompt.Result{Score: 85}, 60, true},
		{"equal", prompt.Result{Score: 60}, 60, true},
		{"below", prompt.Result{Score: 59}, 60, false},
		{"slash", prompt.Result{Score: 100, Slash: true}, 101, true},
		{"blocked at zero threshold", prompt.Result{Score: 0, Blocked: true}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := decidePrompt(tc.res, tc.threshold)
			if v.Passed != tc.wantPassed {
				t.Errorf("Passed = %v, want %v", v.Passed, tc.wantPassed)
			}
			wantDecision := ""
			if !tc.wantPassed {
				wantDecision = "block"
			}
			if v.Response.Decision != wantDecision || v.Response.Continue != tc.wantPassed {
				t.Errorf("response = %+v", v.Response)
			}
			if v.Response.HookSpecificOutput.AdditionalContext != v.Message {
				t.Errorf("additional context = %q", v.Response.HookSpecificOutput.AdditionalContext)
			}
		})
	}
}

func TestPromptHookRun(t *testing.T) {
	tests := []struct {
		name        string
		prompt      string
		marker      bool
		wantScore   string
		wantBlock   bool
		wantSubject string
	}{
		{"good prompt with project", "implement a parser in 30 lines or less", true, "Prompt quality score: 100/100", false, "Quality check complete"},
		{"good prompt without project", "implement a parser in 30 lines or less", false, "Prompt quality score: 85/100", false, "Quality check complete"},
		{"vague prompt", "make it nice", false, "Prompt quality score: 10/100", true, "Quality score too low"},
		{"slash command", "/help", false, "Prompt quality score: 100/100", false, "Quality check complete"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := core.TestHookContext(nil)
			cwd := "/work/project"
			if tc.marker {
				_ = ctx.FileSystem.WriteFile(filepath.Join(cwd, "go.mod"), []byte("module x"), 0o600)
			}
			input, _ := json.Marshal(map[string]string{
				"hook_event_name": "UserPromptSubmit",
				"session_id":      "p1",
				"cwd":             cwd,
				"prompt":          tc.prompt,
			})
			ctx.WithInput(string(input))

			if err := NewPromptHook(ctx).Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}

			var resp core.PromptResponse
			if err := json.Unmarshal([]byte(ctx.Output()), &resp); err != nil {
				t.Fatalf("output %q: %v", ctx.Output(), err)
			}
			if resp.HookSpecificOutput == nil || resp.HookSpecificOutput.AdditionalContext != tc.wantScore {
				t.Errorf("additional context = %+v, want %q", resp.HookSpecificOutput, tc.wantScore)
			}
			if (resp.Decision == "block") != tc.wantBlock || resp.Continue == tc.wantBlock {
				t.Errorf("response = %+v", resp)
			}
			if tc.wantBlock && !strings.HasPrefix(resp.Reason, "Prompt quality score too low") {
				t.Errorf("reason = %q", resp.Reason)
			}

			sent := ctx.Notifier.(*core.MockNotifier).Notifications()
			if len(sent) != 1 || sent[0].Subtitle != tc.wantSubject || sent[0].Message != tc.wantScore {
				t.Errorf("notifications = %+v", sent)
			}
			e, ok := ctx.EventLog.(*core.MockEventLog).Find(eventlog.EventPromptSubmit)
			if !ok || !strings.HasSuffix(e.Details, "prompt: "+tc.prompt) {
				t.Errorf("PROMPT_SUBMIT = %+v", e)
			}
		})
	}
}

func TestPromptHookThresholdFromConfig(t *testing.T) {
	ctx := core.TestHookContext(nil)
	ctx.Config.Prompt.Threshold = 90
	ctx.WithInput(`{"hook_event_name":"UserPromptSubmit","cwd":"/nowhere","prompt":"implement a parser in 30 lines or less"}`)

	if err := NewPromptHook(ctx).Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ctx.Output(), `"decision":"block"`) {
		t.Errorf("85 should not pass a threshold of 90: %s", ctx.Output())
	}
}

func TestPromptHookIgnoresOtherEvents(t *testing.T) {
	ctx := core.TestHookContext(nil)
	ctx.WithInput(`{"hook_event_name":"Stop"}`)
	if err := NewPromptHook(ctx).Run(); err != nil {
		t.Fatal(err)
	}
	if ctx.Output() != "" {
		t.Errorf("unexpected output %q", ctx.Output())
	}
}

func TestPromptHookBlocksAtZeroThreshold(t *testing.T) {
	ctx := core.TestHookContext(nil)
	ctx.Config.Prompt.Threshold = 0
	ctx.WithInput(`{"hook_event_name":"UserPromptSubmit","cwd":"/nowhere","prompt":"implement a terrorism planner in 20 lines or less"}`)

	if err := NewPromptHook(ctx).Run(); err != nil {
		t.Fatal(err)
	}
	var resp core.PromptResponse
	if err := json.Unmarshal([]byte(ctx.Output()), &resp); err != nil {
		t.Fatalf("output %q: %v", ctx.Output(), err)
	}
	if resp.Decision != "block" || resp.Continue {
		t.Errorf("hard-blocked prompt passed a zero threshold: %+v", resp)
	}
}

func TestPromptHookDisabledRules(t *testing.T) {
	tests := []struct {
		name      string
		disabled  []string
		wantScore string
		wantWarn  bool
	}{
		{"context disabled", []string{prompt.RuleContext}, "Prompt quality score: 100/100", false},
		{"unknown rule falls back", []string{"nope"}, "Prompt quality score: 85/100", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := core.TestHookContext(nil)
			ctx.Config.Prompt.DisabledRules = tc.disabled
			ctx.WithInput(`{"hook_event_name":"UserPromptSubmit","cwd":"/nowhere","prompt":"implement a parser in 30 lines or less"}`)

			if err := NewPromptHook(ctx).Run(); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(ctx.Output(), tc.wantScore) {
				t.Errorf("output = %q, want %q", ctx.Output(), tc.wantScore)
			}
			if got := strings.Contains(ctx.Messages(), "Ignoring prompt.disabledRules"); got != tc.wantWarn {
				t.Errorf("warning = %v, want %v (%q)", got, tc.wantWarn, ctx.Messages())
			}
		})
	}
}
