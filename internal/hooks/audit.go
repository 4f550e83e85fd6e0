// Package hooks provides the built-in hooks: prompt scoring, command
// screening, post-edit automation, session stats and auditing.
package hooks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
)

// AuditHook implements comprehensive audit logging
type AuditHook struct {
	*core.BaseHook
}

// AuditEntry represents an audit log entry
type AuditEntry struct {
	Event     string                 `json:"event"`
	SessionID string                 `json:"session_id,omitempty"`
	ToolName  string                 `json:"tool_name"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// NewAuditHook creates a new audit hook instance
func NewAuditHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("audit", "Audit Hook", "Writes an audit record for every tool call to the event log", ctx)
	return &AuditHook{BaseHook: base}
}

// Events implements core.EventsProvider.
func (h *AuditHook) Events() []core.EventType {
	return []core.EventType{core.PreToolUseEvent, core.PostToolUseEvent}
}

// Run executes the audit hook.
func (h *AuditHook) Run() error {
	return h.StandardRun(h.preToolUseHandler, h.postToolUseHandler)
}

// toolDetails extracts the audit-relevant fields of a tool input. Content
// is reduced to lengths.
func toolDetails(toolName string, input json.RawMessage) map[string]interface{} {
	details := make(map[string]interface{})
	var in map[string]interface{}
	if len(input) == 0 || json.Unmarshal(input, &in) != nil {
		return details
	}
	str := func(k string) string {
		s, _ := in[k].(string)
		return s
	}

	switch toolName {
	case constants.ToolBash:
		details["command"] = str("command")
		details["description"] = str("description")
	case constants.ToolEdit:
		details["file_path"] = str("file_path")
		details["old_string_length"] = len(str("old_string"))
		details["new_string_length"] = len(str("new_string"))
	case constants.ToolMultiEdit:
		details["file_path"] = str("file_path")
		edits, _ := in["edits"].([]interface{})
		details["edit_count"] = len(edits)
	case constants.ToolWrite:
		details["file_path"] = str("file_path")
		details["content_length"] = len(str("content"))
	case constants.ToolRead:
		details["file_path"] = str("file_path")
	case constants.ToolGlob, constants.ToolGrep:
		details["pattern"] = str("pattern")
	}
	return details
}

func (h *AuditHook) entry(event string) AuditEntry {
	env := h.Envelope()
	return AuditEntry{
		Event:     event,
		SessionID: env.SessionID,
		ToolName:  env.ToolName,
		Details:   toolDetails(env.ToolName, env.ToolInput),
	}
}

func (h *AuditHook) preToolUseHandler(_ context.Context, event *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface {
	entry := h.entry("pre_tool_use")
	entry.ToolName = event.ToolName
	h.logAuditEntry(entry)
	return cchooks.Approve()
}

func (h *AuditHook) postToolUseHandler(_ context.Context, event *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface {
	entry := h.entry("post_tool_use")
	entry.ToolName = event.ToolName
	h.logAuditEntry(entry)
	return cchooks.Allow()
}

func (h *AuditHook) logAuditEntry(entry AuditEntry) {
	if h.Context().LoggingEnabled {
		h.LogHookEvent(entry.Event, entry.ToolName, map[string]interface{}{"tool_name": entry.ToolName}, entry.Details)
	}
	if h.Context().EventLog == nil {
		return
	}

	fields := map[string]interface{}{
		"tool_name": entry.ToolName,
	}
	if entry.SessionID != "" {
		fields["session_id"] = entry.SessionID
	}
	for k, v := range entry.Details {
		fields[k] = v
	}
	details := fmt.Sprintf("%s %s", entry.Event, entry.ToolName)
	if err := h.Context().EventLog.LogFields(eventlog.EventAudit, details, fields); err != nil {
		h.Printf("Failed to log audit entry: %v\n", err)
	}
}
