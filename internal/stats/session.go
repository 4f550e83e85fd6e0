// Package stats tracks per-session hook activity and archives finished
// sessions.
package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauern/hookguard/internal/command"
)

// BashCommand is one shell command seen by a PreToolUse hook.
type BashCommand struct {
	Timestamp     time.Time     `json:"timestamp"`
	Command       string        `json:"command"`
	SessionID     string        `json:"session_id"`
	Cwd           string        `json:"cwd"`
	Level         command.Level `json:"level"`
	IsDestructive bool          `json:"is_destructive"`
	IsSystemLevel bool          `json:"is_system_level"`
}

// FileOperation is one Edit/Write/MultiEdit and what automation did with it.
type FileOperation struct {
	Timestamp     time.Time `json:"timestamp"`
	Operation     string    `json:"operation"`
	FilePath      string    `json:"file_path"`
	SessionID     string    `json:"session_id"`
	FormatApplied bool      `json:"format_applied"`
	LintApplied   bool      `json:"lint_applied"`
}

// InfoSession is a documentation lookup made through an MCP server.
type InfoSession struct {
	Timestamp     time.Time       `json:"timestamp"`
	SessionID     string          `json:"session_id"`
	ToolName      string          `json:"tool_name"`
	Query         json.RawMessage `json:"query_info,omitempty"`
	ResultSummary string          `json:"result_summary,omitempty"`
}

// Session accumulates everything recorded for one assistant session.
type Session struct {
	SessionID      string          `json:"session_id"`
	StartTime      time.Time       `json:"start_time"`
	BashCommands   []BashCommand   `json:"bash_commands"`
	FileOperations []FileOperation `json:"file_operations"`
	MCPUsage       map[string]int  `json:"mcp_usage"`
	InfoSessions   []InfoSession   `json:"info_gathering_sessions"`

	now func() time.Time
}

// NewSession starts an empty session.
func NewSession(id string) *Session {
	s := &Session{SessionID: id, MCPUsage: map[string]int{}}
	s.StartTime = s.clock()
	return s
}

// SetClock replaces the time source used for new records.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Session) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// RecordBash classifies and appends a shell command. The classification
// is taken from v so callers that already validated do not repeat it.
func (s *Session) RecordBash(cwd string, v command.Validation) {
	s.BashCommands = append(s.BashCommands, BashCommand{
		Timestamp:     s.clock(),
		Command:       v.Command,
		SessionID:     s.SessionID,
		Cwd:           cwd,
		Level:         v.Level,
		IsDestructive: v.Destructive,
		IsSystemLevel: v.SystemLevel,
	})
}

// RecordFileOperation appends a file edit with automation not yet applied.
func (s *Session) RecordFileOperation(operation, path string) {
	s.FileOperations = append(s.FileOperations, FileOperation{
		Timestamp: s.clock(),
		Operation: operation,
		FilePath:  path,
		SessionID: s.SessionID,
	})
}

// MarkAutomation sets the automation flags on the latest operation for
// path, recording a new one if the pre-tool event was never seen.
// It reports whether an existing record was updated.
func (s *Session) MarkAutomation(operation, path string, formatted, linted bool) bool {
	for i := len(s.FileOperations) - 1; i >= 0; i-- {
		op := &s.FileOperations[i]
		if op.FilePath == path {
			op.FormatApplied = op.FormatApplied || formatted
			op.LintApplied = op.LintApplied || linted
			return true
		}
	}
	s.RecordFileOperation(operation, path)
	last := &s.FileOperations[len(s.FileOperations)-1]
	last.FormatApplied = formatted
	last.LintApplied = linted
	return false
}

// RecordMCP counts a tool call against its server and opens an
// InfoSession for documentation tools.
func (s *Session) RecordMCP(tool MCPTool, input json.RawMessage) {
	if s.MCPUsage == nil {
		s.MCPUsage = map[string]int{}
	}
	s.MCPUsage[tool.Server]++
	if tool.Category() != Documentation {
		return
	}
	s.InfoSessions = append(s.InfoSessions, InfoSession{
		Timestamp: s.clock(),
		SessionID: s.SessionID,
		ToolName:  tool.Tool,
		Query:     input,
	})
}

// CompleteInfoSession fills the result summary of the most recent
// InfoSession for tool. content is the tool response "content" field,
// empty when absent. It reports whether a session was found.
func (s *Session) CompleteInfoSession(tool MCPTool, content string, hasContent bool) bool {
	for i := len(s.InfoSessions) - 1; i >= 0; i-- {
		is := &s.InfoSessions[i]
		if is.ToolName != tool.Tool || is.SessionID != s.SessionID {
			continue
		}
		if hasContent {
			is.ResultSummary = fmt.Sprintf("Retrieved: %s", firstRunes(content, 100))
		} else {
			is.ResultSummary = "Information retrieved successfully"
		}
		return true
	}
	return false
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
