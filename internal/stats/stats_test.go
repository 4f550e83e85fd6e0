package stats

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauern/hookguard/internal/command"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestSession(id string) *Session {
	s := NewSession(id)
	s.SetClock(func() time.Time { return t0 })
	s.StartTime = t0
	return s
}

func TestParseMCPTool(t *testing.T) {
	tests := []struct {
		name   string
		ok     bool
		server string
		tool   string
	}{
		{"mcp__context7__get-library-docs", true, "context7", "get-library-docs"},
		{"mcp__playwright__browser_take_screenshot", true, "playwright", "browser_take_screenshot"},
		{"mcp__srv__a__b", true, "srv", "a__b"},
		{"mcp__onlyserver", false, "", ""},
		{"mcp____tool", false, "", ""},
		{"Bash", false, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseMCPTool(tc.name)
			if ok != tc.ok || got.Server != tc.server || got.Tool != tc.tool {
				t.Errorf("ParseMCPTool = %+v, %v", got, ok)
			}
			if ok && got.FullName() != tc.name {
				t.Errorf("FullName = %q", got.FullName())
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		tool  MCPTool
		want  Category
		heavy bool
	}{
		{MCPTool{"context7", "get-library-docs"}, Documentation, false},
		{MCPTool{"deepwiki", "ask_question"}, Documentation, false},
		{MCPTool{"magic", "21st_magic_component_builder"}, UIGeneration, false},
		{MCPTool{"playwright", "browser_take_screenshot"}, BrowserAutomation, true},
		{MCPTool{"puppeteer", "puppeteer_click"}, BrowserAutomation, false},
		{MCPTool{"sequential-thinking", "sequentialthinking"}, Analysis, false},
		{MCPTool{"vercel", "list_projects"}, Deployment, false},
		{MCPTool{"github", "create_issue"}, Other, false},
		{MCPTool{"acme", "deploy_app"}, Deployment, false},
	}
	for _, tc := range tests {
		t.Run(tc.tool.FullName(), func(t *testing.T) {
			if got := tc.tool.Category(); got != tc.want {
				t.Errorf("Category = %s, want %s", got, tc.want)
			}
			if got := tc.tool.IsResourceIntensive(); got != tc.heavy {
				t.Errorf("IsResourceIntensive = %v", got)
			}
		})
	}
	if Other.Progress() != "" || Deployment.Progress() == "" {
		t.Error("unexpected progress lines")
	}
	if d := (MCPTool{"vercel", "deploy"}).Describe(); d != "vercel → deploy (Deployment)" {
		t.Errorf("Describe = %q", d)
	}
}

func TestRecordBashAndFiles(t *testing.T) {
	s := newTestSession("abc")
	s.RecordBash("/repo", command.Validate("rm -rf build"))
	s.RecordBash("/repo", command.Validate("sudo apt install jq"))
	s.RecordBash("/repo", command.Validate("ls"))

	if len(s.BashCommands) != 3 {
		t.Fatalf("got %d commands", len(s.BashCommands))
	}
	first := s.BashCommands[0]
	if !first.IsDestructive || first.Level != command.Destructive || first.Cwd != "/repo" || first.SessionID != "abc" {
		t.Errorf("first = %+v", first)
	}

	s.RecordFileOperation("Edit", "/repo/main.go")
	if updated := s.MarkAutomation("Edit", "/repo/main.go", true, false); !updated {
		t.Error("expected existing operation to be updated")
	}
	if updated := s.MarkAutomation("Write", "/repo/new.py", false, true); updated {
		t.Error("unknown path should create a new record")
	}
	if len(s.FileOperations) != 2 || !s.FileOperations[0].FormatApplied || !s.FileOperations[1].LintApplied {
		t.Errorf("file ops = %+v", s.FileOperations)
	}
}

func TestMCPInfoSessions(t *testing.T) {
	s := newTestSession("abc")
	docs := MCPTool{"context7", "get-library-docs"}
	s.RecordMCP(docs, json.RawMessage(`{"library":"react"}`))
	s.RecordMCP(docs, json.RawMessage(`{"library":"vue"}`))
	s.RecordMCP(MCPTool{"github", "create_issue"}, nil)

	if s.MCPUsage["context7"] != 2 || s.MCPUsage["github"] != 1 {
		t.Errorf("usage = %v", s.MCPUsage)
	}
	if len(s.InfoSessions) != 2 {
		t.Fatalf("info sessions = %d", len(s.InfoSessions))
	}

	if !s.CompleteInfoSession(docs, strings.Repeat("x", 150), true) {
		t.Fatal("expected a session to complete")
	}
	last := s.InfoSessions[1].ResultSummary
	if last != "Retrieved: "+strings.Repeat("x", 100) {
		t.Errorf("summary = %q", last)
	}
	if s.InfoSessions[0].ResultSummary != "" {
		t.Error("only the most recent session should be completed")
	}

	s.CompleteInfoSession(docs, "", false)
	if s.InfoSessions[1].ResultSummary != "Information retrieved successfully" {
		t.Errorf("summary = %q", s.InfoSessions[1].ResultSummary)
	}
	if s.CompleteInfoSession(MCPTool{"deepwiki", "read"}, "x", true) {
		t.Error("unknown tool should not complete anything")
	}
}

func TestSummarizeAndRender(t *testing.T) {
	s := newTestSession("sess-1")
	s.RecordBash("/", command.Validate("rm -rf /tmp/x"))
	s.RecordBash("/", command.Validate("systemctl restart nginx"))
	s.RecordBash("/", command.Validate("echo hi"))
	s.RecordFileOperation("Edit", "a.go")
	s.MarkAutomation("Edit", "a.go", true, true)
	s.RecordMCP(MCPTool{"context7", "get-library-docs"}, nil)
	s.RecordMCP(MCPTool{"playwright", "browser_click"}, nil)
	s.RecordMCP(MCPTool{"playwright", "browser_click"}, nil)

	sum := s.Summarize(t0.Add(12*time.Minute + 30*time.Second))
	if sum.BashCommands != 3 || sum.Destructive != 1 || sum.SystemLevel != 1 {
		t.Errorf("bash counts = %+v", sum)
	}
	if sum.Formatted != 1 || sum.Linted != 1 || sum.InfoSessions != 1 {
		t.Errorf("counts = %+v", sum)
	}
	if len(sum.MCPUsage) != 2 || sum.MCPUsage[0].Server != "playwright" {
		t.Errorf("mcp usage not sorted by count: %+v", sum.MCPUsage)
	}

	var buf bytes.Buffer
	if err := sum.Render(&buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"📊 Session Summary (sess-1)",
		"Duration: 12 minutes",
		"💻 Bash Commands: 3",
		"Destructive commands: 1",
		"System-level commands: 1",
		"📝 File Operations: 1",
		"✨ Auto-formatted: 1",
		"🔍 Auto-linted: 1",
		"playwright x2",
		"context7 x1",
		"📚 Information Sessions: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	_ = NewSession("empty").Summarize(time.Now()).Render(&buf, false)
	if strings.Contains(buf.String(), "Bash Commands") {
		t.Errorf("empty summary should omit sections: %q", buf.String())
	}
}

func TestSessionID(t *testing.T) {
	if got := SessionID("abc-123"); got != "abc-123" {
		t.Errorf("SessionID = %q", got)
	}
	if got := SessionID("../../etc/passwd"); strings.ContainsAny(got, "/") {
		t.Errorf("path separators not sanitized: %q", got)
	}
	a, b := SessionID(""), SessionID("")
	if len(a) != 36 || a == b {
		t.Errorf("expected distinct uuids, got %q %q", a, b)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)

	sess, err := st.Load("abc")
	if err != nil {
		t.Fatal(err)
	}
	if sess.SessionID != "abc" || len(sess.BashCommands) != 0 {
		t.Fatalf("new session = %+v", sess)
	}

	_, err = st.Update("abc", func(s *Session) error {
		s.RecordBash("/w", command.Validate("sudo ls"))
		s.RecordMCP(MCPTool{"vercel", "deploy"}, nil)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session-abc.json")); err != nil {
		t.Fatalf("session file not written: %v", err)
	}

	again, err := st.Load("abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(again.BashCommands) != 1 || again.BashCommands[0].Level != command.SystemLevel {
		t.Errorf("reloaded commands = %+v", again.BashCommands)
	}
	if again.MCPUsage["vercel"] != 1 {
		t.Errorf("reloaded usage = %v", again.MCPUsage)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}

	if err := st.Remove("abc"); err != nil {
		t.Fatal(err)
	}
	if err := st.Remove("abc"); err != nil {
		t.Errorf("removing a missing session: %v", err)
	}
}

func TestStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	if err := os.WriteFile(st.Path("bad"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load("bad"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestArchive(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	first := Summary{SessionID: "one", StartTime: t0, Duration: 5 * time.Minute, BashCommands: 2,
		MCPUsage: []ServerUsage{{"context7", 3}, {"github", 1}}}
	second := Summary{SessionID: "two", StartTime: t0.Add(time.Hour), Destructive: 1, BashCommands: 1}

	if err := a.Record(first, t0.Add(5*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := a.Record(second, t0.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	// re-recording replaces the row and its usage
	first.MCPUsage = []ServerUsage{{"context7", 4}}
	if err := a.Record(first, t0.Add(6*time.Minute)); err != nil {
		t.Fatal(err)
	}

	got, err := a.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].SessionID != "two" || got[1].SessionID != "one" {
		t.Fatalf("Recent = %+v", got)
	}
	if got[1].Duration != 5*time.Minute || got[1].BashCommands != 2 || !got[1].StartTime.Equal(t0) {
		t.Errorf("first row = %+v", got[1])
	}
	if len(got[1].MCPUsage) != 1 || got[1].MCPUsage[0].Count != 4 {
		t.Errorf("usage = %+v", got[1].MCPUsage)
	}

	limited, err := a.Recent(1)
	if err != nil || len(limited) != 1 {
		t.Errorf("Recent(1) = %+v, %v", limited, err)
	}
}
