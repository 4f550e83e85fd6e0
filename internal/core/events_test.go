package core

import (
	"errors"
	"strings"
	"testing"
)

func TestIsValidEventType(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		want      bool
	}{
		{"canonical PreToolUse", "PreToolUse", true},
		{"canonical UserPromptSubmit", "UserPromptSubmit", true},
		{"canonical SessionEnd", "SessionEnd", true},
		{"invalid event name", "InvalidEvent", false},
		{"empty string", "", false},
		{"typo in canonical name", "PreTollUse", false},
		{"lowercase", "stop", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEventType(tt.eventType); got != tt.want {
				t.Errorf("IsValidEventType(%q) = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestValidEventTypesMatchesAll(t *testing.T) {
	names := ValidEventTypes()
	if len(names) != len(AllClaudeCodeEvents()) || len(names) != 9 {
		t.Fatalf("got %d event names", len(names))
	}
	for _, n := range names {
		if !IsValidEventType(n) {
			t.Errorf("%s not valid", n)
		}
	}
}

func TestUsesToolMatcher(t *testing.T) {
	if !UsesToolMatcher("PreToolUse") || !UsesToolMatcher("PostToolUse") {
		t.Error("tool events should use tool matchers")
	}
	if UsesToolMatcher("Stop") || UsesToolMatcher("UserPromptSubmit") || UsesToolMatcher("bogus") {
		t.Error("non-tool events should not use tool matchers")
	}
}

func TestParseEnvelope(t *testing.T) {
	input := `{
		"hook_event_name": "PostToolUse",
		"session_id": "abc123",
		"cwd": "/work",
		"tool_name": "mcp__context7__get-library-docs",
		"tool_input": {"context7CompatibleLibraryID": "/vercel/next.js", "tokens": 5000},
		"tool_response": {"content": "Next.js docs"}
	}`
	env, err := ParseEnvelope([]byte(input))
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.EventType() != PostToolUseEvent || env.SessionID != "abc123" || env.Cwd != "/work" {
		t.Errorf("envelope = %+v", env)
	}
	if got := env.ToolInputString("context7CompatibleLibraryID"); got != "/vercel/next.js" {
		t.Errorf("ToolInputString = %q", got)
	}
	if got := env.ToolInputString("tokens"); got != "" {
		t.Errorf("non-string field should be empty, got %q", got)
	}
	if got, ok := env.ToolResponseString("content"); !ok || got != "Next.js docs" {
		t.Errorf("ToolResponseString = %q, %v", got, ok)
	}
	if _, ok := env.ToolResponseString("missing"); ok {
		t.Error("missing field reported present")
	}
}

func TestParseEnvelopeErrors(t *testing.T) {
	if _, err := ParseEnvelope([]byte("  \n")); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := ParseEnvelope([]byte("{nope")); err == nil {
		t.Error("expected parse error")
	}

	env, err := ReadEnvelope(strings.NewReader(`{"hook_event_name":"UserPromptSubmit","prompt":"fix the bug"}`))
	if err != nil {
		t.Fatal(err)
	}
	if env.Prompt != "fix the bug" || env.EventType() != UserPromptSubmitEvent {
		t.Errorf("envelope = %+v", env)
	}
	if env.ToolInputString("command") != "" {
		t.Error("absent tool_input should yield empty strings")
	}
	if _, ok := env.ToolResponseString("content"); ok {
		t.Error("absent tool_response should not report content")
	}
}
