package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EventType represents a Claude Code hook event
type EventType string

// All supported Claude Code hook events
const (
	PreToolUseEvent       EventType = "PreToolUse"
	PostToolUseEvent      EventType = "PostToolUse"
	UserPromptSubmitEvent EventType = "UserPromptSubmit"
	NotificationEvent     EventType = "Notification"
	StopEvent             EventType = "Stop"
	SubagentStopEvent     EventType = "SubagentStop"
	PreCompactEvent       EventType = "PreCompact"
	SessionStartEvent     EventType = "SessionStart"
	SessionEndEvent       EventType = "SessionEnd"
)

// ClaudeCodeEvent represents a Claude Code hook event type with metadata
type ClaudeCodeEvent struct {
	Type        EventType
	Name        string
	Description string
	// SupportedByCCHooks is true when the cchooks runner parses the event.
	// The rest are read as raw envelopes.
	SupportedByCCHooks bool
	// ToolMatcher is true when settings.json matchers apply to tool names.
	ToolMatcher bool
}

// AllClaudeCodeEvents returns all available Claude Code hook events
func AllClaudeCodeEvents() []ClaudeCodeEvent {
	return []ClaudeCodeEvent{
		{
			Type:               PreToolUseEvent,
			Name:               string(PreToolUseEvent),
			Description:        "Runs after Claude creates tool parameters and before processing the tool call",
			SupportedByCCHooks: true,
			ToolMatcher:        true,
		},
		{
			Type:               PostToolUseEvent,
			Name:               string(PostToolUseEvent),
			Description:        "Runs immediately after a tool completes successfully",
			SupportedByCCHooks: true,
			ToolMatcher:        true,
		},
		{
			Type:               NotificationEvent,
			Name:               string(NotificationEvent),
			Description:        "Runs when Claude needs permission to use a tool or when input has been idle for 60 seconds",
			SupportedByCCHooks: true,
		},
		{
			Type:               StopEvent,
			Name:               string(StopEvent),
			Description:        "Runs when the main Claude Code agent has finished responding",
			SupportedByCCHooks: true,
		},
		{
			Type:        UserPromptSubmitEvent,
			Name:        string(UserPromptSubmitEvent),
			Description: "Runs when the user submits a prompt, before Claude processes it",
		},
		{
			Type:        SubagentStopEvent,
			Name:        string(SubagentStopEvent),
			Description: "Runs when a Claude Code subagent (Task tool call) has finished responding",
		},
		{
			Type:        PreCompactEvent,
			Name:        string(PreCompactEvent),
			Description: "Runs before Claude Code is about to run a compact operation",
		},
		{
			Type:        SessionStartEvent,
			Name:        string(SessionStartEvent),
			Description: "Runs when Claude Code starts a new session or resumes an existing session",
		},
		{
			Type:        SessionEndEvent,
			Name:        string(SessionEndEvent),
			Description: "Runs when a Claude Code session ends",
		},
	}
}

// ValidEventTypes returns a slice of all valid event type names
func ValidEventTypes() []string {
	events := AllClaudeCodeEvents()
	names := make([]string, len(events))
	for i, event := range events {
		names[i] = event.Name
	}
	return names
}

// IsValidEventType checks if an event type string is valid
func IsValidEventType(eventType string) bool {
	for _, event := range AllClaudeCodeEvents() {
		if event.Name == eventType {
			return true
		}
	}
	return false
}

// UsesToolMatcher reports whether settings matchers for eventType select tools.
func UsesToolMatcher(eventType string) bool {
	for _, event := range AllClaudeCodeEvents() {
		if event.Name == eventType {
			return event.ToolMatcher
		}
	}
	return false
}

// ErrEmptyInput is returned when a hook receives no event on stdin.
var ErrEmptyInput = errors.New("no hook input on stdin")

// Envelope is the common JSON shape Claude Code sends to every hook.
// Tool fields are empty for non-tool events.
type Envelope struct {
	HookEventName  string          `json:"hook_event_name"`
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path,omitempty"`
	Cwd            string          `json:"cwd,omitempty"`
	Prompt         string          `json:"prompt,omitempty"`
	ToolName       string          `json:"tool_name,omitempty"`
	ToolInput      json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse   json.RawMessage `json:"tool_response,omitempty"`
	StopHookActive bool            `json:"stop_hook_active,omitempty"`
}

// EventType returns the event name as an EventType.
func (e *Envelope) EventType() EventType {
	return EventType(e.HookEventName)
}

// ParseEnvelope decodes a hook event.
func ParseEnvelope(data []byte) (*Envelope, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyInput
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse hook input: %w", err)
	}
	return &env, nil
}

// ReadEnvelope reads all of r and decodes it as a hook event.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read hook input: %w", err)
	}
	return ParseEnvelope(data)
}

// ToolInputString returns a string field of tool_input, or "" when the
// field is missing or not a string.
func (e *Envelope) ToolInputString(field string) string {
	return rawField(e.ToolInput, field)
}

// ToolResponseString returns a string field of tool_response and whether
// it was present as a string.
func (e *Envelope) ToolResponseString(field string) (string, bool) {
	if len(e.ToolResponse) == 0 {
		return "", false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(e.ToolResponse, &m); err != nil {
		return "", false
	}
	raw, ok := m[field]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func rawField(raw json.RawMessage, field string) string {
	if len(raw) == 0 {
		return ""
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	var s string
	if v, ok := m[field]; ok {
		_ = json.Unmarshal(v, &s)
	}
	return s
}
