package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/command"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/stats"
	"golang.org/x/term"
)

// StatsHook records session activity and prints a summary when the session stops
type StatsHook struct {
	*core.BaseHook
	validator *command.Validator
}

// NewStatsHook creates a new stats hook instance
func NewStatsHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("stats", "Stats Hook", "Tracks commands, file edits and MCP usage per session", ctx)
	h := &StatsHook{BaseHook: base}
	v, err := validatorFor(h.Config().Security)
	if err != nil {
		h.Printf("Ignoring custom security patterns: %v\n", err)
	}
	h.validator = v
	return h
}

// Events implements core.EventsProvider.
func (h *StatsHook) Events() []core.EventType {
	return []core.EventType{core.PreToolUseEvent, core.PostToolUseEvent, core.StopEvent}
}

// Run executes the stats hook.
func (h *StatsHook) Run() error {
	return h.Dispatch(context.Background(), core.Handlers{
		PreToolUse:  h.preToolUseHandler,
		PostToolUse: h.postToolUseHandler,
		Stop:        h.stopHandler,
	})
}

func (h *StatsHook) preToolUseHandler(_ context.Context, _ *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface {
	h.recordPre(h.Envelope())
	return cchooks.Approve()
}

func (h *StatsHook) postToolUseHandler(_ context.Context, _ *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface {
	h.recordPost(h.Envelope())
	return cchooks.Allow()
}

func (h *StatsHook) store() *stats.Store {
	store := stats.NewStore(h.Config().StatsDir())
	store.SetClock(h.Now)
	return store
}

// update applies fn to the envelope's session. Events without a session id
// are not recorded. Failures are reported and never stop the tool call.
func (h *StatsHook) update(env *core.Envelope, fn func(*stats.Session)) {
	if env.SessionID == "" {
		return
	}
	_, err := h.store().Update(env.SessionID, func(s *stats.Session) error {
		fn(s)
		return nil
	})
	if err != nil {
		h.Printf("Failed to update session stats: %v\n", err)
	}
}

// recordPre records a tool call before it runs.
func (h *StatsHook) recordPre(env *core.Envelope) {
	switch {
	case constants.IsShellTool(env.ToolName):
		cmd := env.ToolInputString("command")
		if cmd == "" {
			return
		}
		v := h.validator.Validate(cmd)
		h.update(env, func(s *stats.Session) { s.RecordBash(env.Cwd, v) })

	case constants.IsFileEditTool(env.ToolName):
		path := env.ToolInputString("file_path")
		if path == "" {
			return
		}
		h.update(env, func(s *stats.Session) { s.RecordFileOperation(env.ToolName, path) })

	default:
		tool, ok := stats.ParseMCPTool(env.ToolName)
		if !ok {
			return
		}
		h.announceMCP(tool)
		h.update(env, func(s *stats.Session) { s.RecordMCP(tool, env.ToolInput) })
		h.LogEvent(eventlog.EventMCPTool, tool.Describe())
	}
}

func (h *StatsHook) announceMCP(tool stats.MCPTool) {
	h.Printf("🔌 [MCP] %s\n", tool.Describe())
	category := tool.Category()
	if p := category.Progress(); p != "" {
		h.Printf("  %s\n", p)
	}
	if tool.IsResourceIntensive() {
		h.Printf("    ⏱️  This may take some time\n")
	}
	if category == stats.Deployment {
		h.Notify("Claude Code Deployment", "Deployment operation", "Deployment operation started")
	}
}

// recordPost completes documentation lookups once the MCP tool returns.
func (h *StatsHook) recordPost(env *core.Envelope) {
	tool, ok := stats.ParseMCPTool(env.ToolName)
	if !ok {
		return
	}
	content, hasContent := env.ToolResponseString("content")
	h.update(env, func(s *stats.Session) { s.CompleteInfoSession(tool, content, hasContent) })
	if tool.Category() == stats.Documentation {
		h.Printf("  📚 Information gathering completed\n")
	}
}

func (h *StatsHook) stopHandler(_ context.Context, env *core.Envelope) error {
	h.Printf("🛑 Session ended\n")

	store := h.store()
	sess, err := store.Load(env.SessionID)
	if err != nil {
		h.Printf("Failed to load session stats: %v\n", err)
		sess = stats.NewSession(stats.SessionID(env.SessionID))
	}
	now := h.Now()
	sum := sess.Summarize(now)

	if err := sum.Render(h.Context().Stdout, isTerminal(h.Context().Stdout)); err != nil {
		return fmt.Errorf("failed to write session summary: %w", err)
	}
	h.finish(store, sess, sum, now, env.SessionID != "")

	h.LogEvent(eventlog.EventSessionEnd, fmt.Sprintf("session: %s, bash: %d, files: %d, mcp servers: %d",
		sum.SessionID, sum.BashCommands, sum.FileOperations, len(sum.MCPUsage)))
	return nil
}

// finish archives the summary and drops the session file once it is safely
// in the history database. Without an archive the file is kept so
// `stats show` can still read it.
func (h *StatsHook) finish(store *stats.Store, sess *stats.Session, sum stats.Summary, now time.Time, persisted bool) {
	archived := false
	if h.Config().Stats.Archive {
		if err := h.archive(store.Dir(), sum, now); err != nil {
			h.Printf("Failed to archive session: %v\n", err)
		} else {
			archived = true
		}
	}
	if !persisted {
		return
	}
	if archived {
		if err := store.Remove(sess.SessionID); err != nil {
			h.Printf("Failed to remove session stats: %v\n", err)
		}
		return
	}
	if err := store.Save(sess); err != nil {
		h.Printf("Failed to save session stats: %v\n", err)
	}
}

func (h *StatsHook) archive(dir string, sum stats.Summary, end time.Time) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create stats directory: %w", err)
	}
	a, err := stats.OpenArchive(filepath.Join(dir, constants.HistoryDBFile))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return a.Record(sum, end)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
