package hooks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/automation"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/stats"
)

// FormatHook formats and lints files after the agent edits them
type FormatHook struct {
	*core.BaseHook
	available func(name string) bool
}

// NewFormatHook creates a new format hook instance
func NewFormatHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("format", "Format Hook", "Formats and lints edited files", ctx)
	return &FormatHook{BaseHook: base, available: automation.IsAvailable}
}

// Events implements core.EventsProvider.
func (h *FormatHook) Events() []core.EventType {
	return []core.EventType{core.PostToolUseEvent}
}

// Run executes the format hook.
func (h *FormatHook) Run() error {
	return h.StandardRun(nil, h.postToolUseHandler)
}

// fileAutomation is what the formatter and linter did to one file.
type fileAutomation struct {
	Path   string
	Format []automation.Result
	Lint   []automation.Result
}

// Formatted reports whether any formatter succeeded.
func (a fileAutomation) Formatted() bool {
	return automation.AnyApplied(a.Format, automation.Success)
}

// Linted reports whether any linter ran to completion.
func (a fileAutomation) Linted() bool {
	return automation.AnyApplied(a.Lint, automation.Success, automation.Warning)
}

// Failed reports whether any tool errored.
func (a fileAutomation) Failed() bool {
	return automation.HasErrors(a.Format) || automation.HasErrors(a.Lint)
}

func (a fileAutomation) errorMessages() string {
	var msgs []string
	for _, r := range append(append([]automation.Result(nil), a.Format...), a.Lint...) {
		if r.Status == automation.Error {
			msgs = append(msgs, r.String())
		}
	}
	return strings.Join(msgs, "\n")
}

func (h *FormatHook) editedFile(event *cchooks.PostToolUseEvent) string {
	switch event.ToolName {
	case constants.ToolEdit:
		if edit, err := event.InputAsEdit(); err == nil && edit.FilePath != "" {
			return edit.FilePath
		}
	case constants.ToolWrite:
		if write, err := event.InputAsWrite(); err == nil && write.FilePath != "" {
			return write.FilePath
		}
	}
	return h.Envelope().ToolInputString("file_path")
}

func (h *FormatHook) postToolUseHandler(_ context.Context, event *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface {
	if !constants.IsFileEditTool(event.ToolName) {
		return cchooks.Allow()
	}
	filePath := h.editedFile(event)
	if filePath == "" {
		return cchooks.Allow()
	}

	if h.Context().LoggingEnabled {
		h.LogHookEvent("format_file", event.ToolName,
			map[string]interface{}{"tool_name": event.ToolName},
			map[string]interface{}{"file_path": filePath, "action": "formatting"})
	}

	res, err := h.automate(filePath)
	if err != nil {
		h.LogError("format_error", event.ToolName, err)
		return h.failure(filePath, err.Error())
	}
	h.recordAutomation(event.ToolName, res)

	if res.Failed() {
		return h.failure(filePath, res.errorMessages())
	}
	return cchooks.Allow()
}

func (h *FormatHook) failure(filePath, detail string) cchooks.PostToolUseResponseInterface {
	userMsg := fmt.Sprintf("Formatting failed for %s", filePath)
	if h.Config().Automation.BlockOnError {
		return core.PostBlockWithMessages(userMsg, detail)
	}
	return core.AllowWithMessages(userMsg, detail)
}

// automate runs the enabled formatter and linter on filePath and reports
// each result on Stderr.
func (h *FormatHook) automate(filePath string) (fileAutomation, error) {
	if filePath == "" {
		return fileAutomation{}, fmt.Errorf("empty file path")
	}
	if _, err := h.Context().FileSystem.Stat(filePath); err != nil {
		return fileAutomation{}, fmt.Errorf("file not accessible: %w", err)
	}

	// Only reject paths that escape the workspace (start with ".." or "../")
	cleanPath := filepath.Clean(filePath)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fileAutomation{}, fmt.Errorf("invalid file path: path traversal attempt detected")
	}

	cfg := h.Config().Automation
	opts := []automation.Option{
		automation.WithRules(cfg.Rules),
		automation.WithAvailability(h.available),
	}
	res := fileAutomation{Path: cleanPath}

	if cfg.Format {
		res.Format = automation.NewFormatter(h.Context().CommandExecutor, opts...).FormatFile(cleanPath)
		h.printResults("✨", "Format", res.Format)
	}
	if cfg.Lint {
		res.Lint = automation.NewLinter(h.Context().CommandExecutor, opts...).LintFile(cleanPath)
		h.printResults("🔍", "Lint", res.Lint)
	}

	h.LogEvent(eventlog.EventFileAutomation,
		fmt.Sprintf("%s: formatted=%v linted=%v", cleanPath, res.Formatted(), res.Linted()))
	return res, nil
}

func (h *FormatHook) printResults(icon, label string, results []automation.Result) {
	for _, r := range results {
		if r.Status == automation.Skipped {
			continue
		}
		h.Printf("  %s %s %s\n", icon, label, r)
	}
}

// recordAutomation marks the session's file operation as formatted or linted.
func (h *FormatHook) recordAutomation(toolName string, res fileAutomation) {
	id := h.Envelope().SessionID
	if id == "" {
		return
	}
	store := stats.NewStore(h.Config().StatsDir())
	store.SetClock(h.Now)
	_, err := store.Update(id, func(s *stats.Session) error {
		s.MarkAutomation(toolName, res.Path, res.Formatted(), res.Linted())
		return nil
	})
	if err != nil {
		h.Printf("Failed to update session stats: %v\n", err)
	}
}
