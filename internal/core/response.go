package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/brads3290/cchooks"
)

// DualMessagePreToolResponse wraps a PreToolUse response with separate
// messages for the user and the agent.
type DualMessagePreToolResponse struct {
	*cchooks.PreToolUseResponse
	userMessage  string
	agentMessage string
}

// DualMessagePostToolResponse is the PostToolUse counterpart.
type DualMessagePostToolResponse struct {
	*cchooks.PostToolUseResponse
	userMessage  string
	agentMessage string
}

func agentOr(userMsg string, agentMsg []string) string {
	if len(agentMsg) > 0 {
		return agentMsg[0]
	}
	return userMsg
}

// BlockWithMessages blocks a tool call. When agentMsg is omitted userMsg
// goes to both audiences; extra agent messages are ignored.
//
//	return core.BlockWithMessages(
//	    "Destructive command blocked",
//	    "Blocked rm -rf: This command may cause irreversible data loss",
//	)
func BlockWithMessages(userMsg string, agentMsg ...string) cchooks.PreToolUseResponseInterface {
	return &DualMessagePreToolResponse{
		PreToolUseResponse: cchooks.Block(agentOr(userMsg, agentMsg)),
		userMessage:        userMsg,
		agentMessage:       agentOr(userMsg, agentMsg),
	}
}

// ApproveWithMessages approves a tool call with context messages.
func ApproveWithMessages(userMsg string, agentMsg ...string) cchooks.PreToolUseResponseInterface {
	return &DualMessagePreToolResponse{
		PreToolUseResponse: cchooks.Approve(),
		userMessage:        userMsg,
		agentMessage:       agentOr(userMsg, agentMsg),
	}
}

// PostBlockWithMessages reports a post-tool failure back to the agent.
func PostBlockWithMessages(userMsg string, agentMsg ...string) cchooks.PostToolUseResponseInterface {
	return &DualMessagePostToolResponse{
		PostToolUseResponse: cchooks.PostBlock(agentOr(userMsg, agentMsg)),
		userMessage:         userMsg,
		agentMessage:        agentOr(userMsg, agentMsg),
	}
}

// AllowWithMessages lets a post-tool event through with status messages.
func AllowWithMessages(userMsg string, agentMsg ...string) cchooks.PostToolUseResponseInterface {
	return &DualMessagePostToolResponse{
		PostToolUseResponse: cchooks.Allow(),
		userMessage:         userMsg,
		agentMessage:        agentOr(userMsg, agentMsg),
	}
}

// GetUserMessage returns the message intended for the end-user.
func (r *DualMessagePreToolResponse) GetUserMessage() string {
	return r.userMessage
}

// GetAgentMessage returns the message intended for the AI agent.
func (r *DualMessagePreToolResponse) GetAgentMessage() string {
	return r.agentMessage
}

// GetUserMessage returns the message intended for the end-user.
func (r *DualMessagePostToolResponse) GetUserMessage() string {
	return r.userMessage
}

// GetAgentMessage returns the message intended for the AI agent.
func (r *DualMessagePostToolResponse) GetAgentMessage() string {
	return r.agentMessage
}

// HookSpecificOutput carries event-specific fields back to Claude Code.
type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// PromptResponse is the UserPromptSubmit reply written to stdout.
type PromptResponse struct {
	Decision           string              `json:"decision,omitempty"`
	Reason             string              `json:"reason,omitempty"`
	Continue           bool                `json:"continue"`
	StopReason         string              `json:"stopReason,omitempty"`
	SuppressOutput     bool                `json:"suppressOutput"`
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// BlockPrompt stops a prompt before the agent sees it. reason is shown
// with the decision and stopReason when processing halts.
func BlockPrompt(reason, stopReason, additionalContext string) PromptResponse {
	return PromptResponse{
		Decision:       "block",
		Reason:         reason,
		Continue:       false,
		StopReason:     stopReason,
		SuppressOutput: true,
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:     string(UserPromptSubmitEvent),
			AdditionalContext: additionalContext,
		},
	}
}

// AllowPrompt lets a prompt through, attaching additionalContext.
func AllowPrompt(additionalContext string) PromptResponse {
	return PromptResponse{
		Continue: true,
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:     string(UserPromptSubmitEvent),
			AdditionalContext: additionalContext,
		},
	}
}

// WriteJSON encodes v as a single JSON line.
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal hook response: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write hook response: %w", err)
	}
	return nil
}
