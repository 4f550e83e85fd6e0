package hooks

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/command"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
)

func TestSecurityHook(t *testing.T) {
	ctx := core.TestHookContext(nil)
	hook := NewSecurityHook(ctx)

	// Test basic properties
	if hook.Key() != "security" {
		t.Errorf("Expected key 'security', got '%s'", hook.Key())
	}
	if hook.Name() != "Security Hook" {
		t.Errorf("Expected name 'Security Hook', got '%s'", hook.Name())
	}
	if !hook.IsEnabled() {
		t.Error("Expected hook to be enabled by default")
	}

	ctx.WithInput(`{"hook_event_name":"PreToolUse","tool_name":"Bash","tool_input":{"command":"ls"}}`)
	if err := hook.Run(); err != nil {
		t.Errorf("Hook run failed: %v", err)
	}
}

func TestSecurityHookDisabled(t *testing.T) {
	ctx := core.TestHookContext(func(string) bool { return false })
	hook := NewSecurityHook(ctx)

	if hook.IsEnabled() {
		t.Error("Expected hook to be disabled")
	}
	// Disabled hooks do not read stdin, so empty input is fine
	if err := hook.Run(); err != nil {
		t.Errorf("Disabled hook run failed: %v", err)
	}
}

func TestSecurityHookScreen(t *testing.T) {
	testCases := []struct {
		name        string
		command     string
		block       bool
		wantBlocked bool
		wantLevel   command.Level
		wantPrefix  string
		wantNotify  bool
	}{
		{"safe", "ls -la", true, false, command.Safe, "💻 [BASH] ls -la", false},
		{"system", "sudo apt update", true, false, command.SystemLevel, "🔧 [BASH] System-level: sudo apt update", false},
		{"destructive blocked", "rm -rf /tmp/build", true, true, command.Destructive, "🚨 [BASH] ⚠️  DESTRUCTIVE: rm -rf /tmp/build", true},
		{"destructive allowed", "rm -rf /tmp/build", false, false, command.Destructive, "🚨 [BASH] ⚠️  DESTRUCTIVE", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := core.TestHookContext(nil)
			ctx.Config.Security.BlockDestructive = tc.block
			hook := NewSecurityHook(ctx).(*SecurityHook)

			v := hook.screen(tc.command)
			if v.Blocked != tc.wantBlocked {
				t.Errorf("blocked = %v, want %v", v.Blocked, tc.wantBlocked)
			}
			if v.Validation.Level != tc.wantLevel {
				t.Errorf("level = %v, want %v", v.Validation.Level, tc.wantLevel)
			}
			if !strings.HasPrefix(ctx.Messages(), tc.wantPrefix) {
				t.Errorf("messages = %q, want prefix %q", ctx.Messages(), tc.wantPrefix)
			}

			sent := ctx.Notifier.(*core.MockNotifier).Notifications()
			if (len(sent) > 0) != tc.wantNotify {
				t.Errorf("notifications = %+v", sent)
			}
			if tc.wantNotify && sent[0].Message != "Command: "+tc.command {
				t.Errorf("notification message = %q", sent[0].Message)
			}

			log := ctx.EventLog.(*core.MockEventLog)
			entry, ok := log.Find(eventlog.EventBashCommand)
			if !ok || !strings.HasPrefix(entry.Details, tc.command) {
				t.Errorf("BASH_COMMAND not logged: %+v", log.Entries)
			}
			if _, ok := log.Find(eventlog.EventSecurityBlock); ok != tc.wantBlocked {
				t.Errorf("SECURITY_BLOCK logged = %v", ok)
			}
		})
	}
}

func TestSecurityHookBlockReason(t *testing.T) {
	ctx := core.TestHookContext(nil)
	hook := NewSecurityHook(ctx).(*SecurityHook)

	v := hook.screen("sudo rm -rf /")
	if !v.Blocked {
		t.Fatal("expected block")
	}
	if v.UserMsg != "Destructive command blocked" {
		t.Errorf("user message = %q", v.UserMsg)
	}
	for _, want := range []string{command.WarnDataLoss, command.WarnRootTarget, command.WarnElevated} {
		if !strings.Contains(v.AgentMsg, want) {
			t.Errorf("agent message %q missing %q", v.AgentMsg, want)
		}
		if !strings.Contains(ctx.Messages(), want) {
			t.Errorf("warning %q not printed", want)
		}
	}
}

func TestSecurityHookExtraPatterns(t *testing.T) {
	ctx := core.TestHookContext(nil)
	ctx.Config.Security.ExtraDestructive = []string{`terraform\s+destroy`}
	ctx.Config.Security.ExtraSystemLevel = []string{`kubectl\s+`}
	hook := NewSecurityHook(ctx).(*SecurityHook)

	if v := hook.screen("terraform destroy -auto-approve"); !v.Blocked {
		t.Error("custom destructive pattern not applied")
	}
	if v := hook.screen("kubectl get pods"); v.Validation.Level != command.SystemLevel {
		t.Errorf("custom system pattern level = %v", v.Validation.Level)
	}
}

func TestSecurityHookBadExtraPattern(t *testing.T) {
	ctx := core.TestHookContext(nil)
	ctx.Config.Security.ExtraDestructive = []string{"("}
	hook := NewSecurityHook(ctx).(*SecurityHook)

	if !strings.Contains(ctx.Messages(), "Ignoring custom security patterns") {
		t.Errorf("bad pattern not reported: %q", ctx.Messages())
	}
	if v := hook.screen("rm -rf /tmp/x"); !v.Blocked {
		t.Error("built-in patterns should still apply")
	}
}

func TestSecurityHookShellTools(t *testing.T) {
	tests := []struct {
		name        string
		tool        string
		input       string
		wantScreen  bool
		wantBlocked bool
	}{
		{"bash destructive", "Bash", `{"command":"rm -rf /tmp/x"}`, true, true},
		{"task with command", "Task", `{"command":"rm -rf /tmp/x"}`, true, true},
		{"task safe command", "Task", `{"command":"ls"}`, true, false},
		{"task without command", "Task", `{"description":"explore","prompt":"find the parser"}`, false, false},
		{"read is ignored", "Read", `{"file_path":"/etc/passwd"}`, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := core.TestHookContext(nil)
			hook := NewSecurityHook(ctx).(*SecurityHook)

			resp := hook.preToolUseHandler(context.Background(), &cchooks.PreToolUseEvent{
				SessionID: "s1",
				ToolName:  tc.tool,
				ToolInput: json.RawMessage(tc.input),
			})
			if resp == nil {
				t.Fatal("nil response")
			}
			if got := strings.Contains(ctx.Messages(), "[BASH]"); got != tc.wantScreen {
				t.Errorf("screened = %v, want %v (messages %q)", got, tc.wantScreen, ctx.Messages())
			}
			if _, ok := ctx.EventLog.(*core.MockEventLog).Find(eventlog.EventSecurityBlock); ok != tc.wantBlocked {
				t.Errorf("blocked = %v, want %v", ok, tc.wantBlocked)
			}
		})
	}
}
