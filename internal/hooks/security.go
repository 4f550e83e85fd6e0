package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/command"
	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/notify"
)

// SecurityHook screens Bash commands and blocks destructive ones
type SecurityHook struct {
	*core.BaseHook
	validator *command.Validator
}

// NewSecurityHook creates a new security hook instance
func NewSecurityHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("security", "Security Hook", "Blocks destructive shell commands and flags system-level ones", ctx)
	h := &SecurityHook{BaseHook: base}
	h.validator = h.buildValidator()
	return h
}

// buildValidator adds the configured extra patterns to the built-in tables.
// Bad user patterns are reported and ignored.
func (h *SecurityHook) buildValidator() *command.Validator {
	v, err := validatorFor(h.Config().Security)
	if err != nil {
		h.Printf("Ignoring custom security patterns: %v\n", err)
	}
	return v
}

// validatorFor returns the validator for sec. On a bad extra pattern it
// returns the built-in validator together with the error.
func validatorFor(sec config.SecurityConfig) (*command.Validator, error) {
	if len(sec.ExtraDestructive) == 0 && len(sec.ExtraSystemLevel) == 0 {
		return command.NewValidator(), nil
	}
	v, err := command.NewValidatorWithPatterns(sec.ExtraDestructive, sec.ExtraSystemLevel)
	if err != nil {
		return command.NewValidator(), err
	}
	return v, nil
}

// Events implements core.EventsProvider.
func (h *SecurityHook) Events() []core.EventType {
	return []core.EventType{core.PreToolUseEvent}
}

// Run executes the security hook.
func (h *SecurityHook) Run() error {
	return h.StandardRun(h.preToolUseHandler, nil)
}

// bashVerdict is the outcome of screening one command.
type bashVerdict struct {
	Validation command.Validation
	Blocked    bool
	UserMsg    string
	AgentMsg   string
}

// screen validates cmd, reports it to the user and decides whether it may run.
func (h *SecurityHook) screen(cmd string) bashVerdict {
	v := h.validator.Validate(cmd)
	verdict := bashVerdict{Validation: v}

	switch v.Level {
	case command.Destructive:
		h.Printf("🚨 [BASH] ⚠️  DESTRUCTIVE: %s\n", cmd)
		h.Notify("🚨 Claude Code Warning", "Destructive command detected",
			"Command: "+notify.Truncate(cmd, 50))
		h.printWarnings(v.Warnings)
		if h.Config().Security.BlockDestructive {
			verdict.Blocked = true
			verdict.UserMsg = "Destructive command blocked"
			verdict.AgentMsg = blockReason(v)
		}
	case command.SystemLevel:
		h.Printf("🔧 [BASH] System-level: %s\n", cmd)
		h.printWarnings(v.Warnings)
		verdict.UserMsg = "System-level command"
		verdict.AgentMsg = strings.Join(v.Warnings, "; ")
	default:
		h.Printf("💻 [BASH] %s\n", cmd)
		h.printWarnings(v.Warnings)
	}

	h.LogEvent(eventlog.EventBashCommand, fmt.Sprintf("%s [%s]", cmd, v.Level))
	if verdict.Blocked {
		h.LogEvent(eventlog.EventSecurityBlock, verdict.AgentMsg)
		h.logSecurityEvent("security_block", cmd, verdict.AgentMsg, v.Level)
	}
	return verdict
}

func (h *SecurityHook) printWarnings(warnings []string) {
	for _, w := range warnings {
		h.Printf("   ⚠️  %s\n", w)
	}
}

func blockReason(v command.Validation) string {
	if len(v.Warnings) == 0 {
		return fmt.Sprintf("Blocked destructive command: %s", v.Command)
	}
	return fmt.Sprintf("Blocked destructive command: %s (%s)", v.Command, strings.Join(v.Warnings, "; "))
}

// logSecurityEvent logs a security event with standard formatting
func (h *SecurityHook) logSecurityEvent(eventType, cmd, reason string, level command.Level) {
	if !h.Context().LoggingEnabled {
		return
	}
	h.LogHookEvent(eventType, constants.ToolBash, map[string]interface{}{
		"command": cmd,
		"reason":  reason,
		"level":   level.String(),
	}, nil)
}

func (h *SecurityHook) preToolUseHandler(_ context.Context, event *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface {
	if !constants.IsShellTool(event.ToolName) {
		return cchooks.Approve()
	}
	cmd, err := shellCommand(event)
	if err != nil {
		h.LogError("bash_parse_error", event.ToolName, err)
		return cchooks.Approve()
	}
	if cmd == "" {
		return cchooks.Approve()
	}

	verdict := h.screen(cmd)
	switch {
	case verdict.Blocked:
		return core.BlockWithMessages(verdict.UserMsg, verdict.AgentMsg)
	case verdict.UserMsg != "":
		return core.ApproveWithMessages(verdict.UserMsg, verdict.AgentMsg)
	}
	return cchooks.Approve()
}

// shellCommand extracts the command from a Bash or Task tool call.
func shellCommand(event *cchooks.PreToolUseEvent) (string, error) {
	if event.ToolName == constants.ToolBash {
		bash, err := event.AsBash()
		if err != nil {
			return "", err
		}
		return bash.Command, nil
	}
	var in struct {
		Command string `json:"command"`
	}
	if len(event.ToolInput) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(event.ToolInput, &in); err != nil {
		return "", fmt.Errorf("failed to parse %s input: %w", event.ToolName, err)
	}
	return in.Command, nil
}
