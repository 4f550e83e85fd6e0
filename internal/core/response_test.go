package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/brads3290/cchooks"
)

type dualMessage interface {
	GetUserMessage() string
	GetAgentMessage() string
}

func TestDualMessageResponses(t *testing.T) {
	tests := []struct {
		name      string
		resp      dualMessage
		wantUser  string
		wantAgent string
	}{
		{"block single", BlockWithMessages("blocked").(*DualMessagePreToolResponse), "blocked", "blocked"},
		{"block dual", BlockWithMessages("blocked", "rm -rf matched").(*DualMessagePreToolResponse), "blocked", "rm -rf matched"},
		{"block extra agent msgs ignored", BlockWithMessages("u", "a1", "a2").(*DualMessagePreToolResponse), "u", "a1"},
		{"approve", ApproveWithMessages("system-level", "sudo detected").(*DualMessagePreToolResponse), "system-level", "sudo detected"},
		{"post block", PostBlockWithMessages("lint failed").(*DualMessagePostToolResponse), "lint failed", "lint failed"},
		{"allow", AllowWithMessages("formatted", "gofmt ok").(*DualMessagePostToolResponse), "formatted", "gofmt ok"},
		{"empty agent", AllowWithMessages("user", "").(*DualMessagePostToolResponse), "user", ""},
		{"unicode", BlockWithMessages("🚨 危険", "日本語").(*DualMessagePreToolResponse), "🚨 危険", "日本語"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.GetUserMessage(); got != tt.wantUser {
				t.Errorf("user = %q, want %q", got, tt.wantUser)
			}
			if got := tt.resp.GetAgentMessage(); got != tt.wantAgent {
				t.Errorf("agent = %q, want %q", got, tt.wantAgent)
			}
		})
	}
}

func TestEmbeddedResponseNotNil(t *testing.T) {
	var pre cchooks.PreToolUseResponseInterface = BlockWithMessages("x")
	if pre.(*DualMessagePreToolResponse).PreToolUseResponse == nil {
		t.Error("embedded PreToolUseResponse is nil")
	}
	var post cchooks.PostToolUseResponseInterface = AllowWithMessages("x")
	if post.(*DualMessagePostToolResponse).PostToolUseResponse == nil {
		t.Error("embedded PostToolUseResponse is nil")
	}
}

func TestPromptResponseJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, BlockPrompt("Prompt too vague", "Below threshold", "Prompt quality score: 20/100")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "\n") || strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected a single JSON line, got %q", buf.String())
	}

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m["decision"] != "block" || m["continue"] != false || m["suppressOutput"] != true {
		t.Errorf("block response = %v", m)
	}
	if m["stopReason"] != "Below threshold" || m["reason"] != "Prompt too vague" {
		t.Errorf("reasons = %v", m)
	}
	hso := m["hookSpecificOutput"].(map[string]interface{})
	if hso["hookEventName"] != "UserPromptSubmit" || hso["additionalContext"] != "Prompt quality score: 20/100" {
		t.Errorf("hookSpecificOutput = %v", hso)
	}

	buf.Reset()
	_ = WriteJSON(&buf, AllowPrompt("Prompt quality score: 85/100"))
	m = nil
	_ = json.Unmarshal(buf.Bytes(), &m)
	if _, ok := m["decision"]; ok {
		t.Errorf("allow response should omit decision: %v", m)
	}
	if m["continue"] != true || m["suppressOutput"] != false {
		t.Errorf("allow response = %v", m)
	}
}
