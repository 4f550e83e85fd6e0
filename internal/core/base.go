// Package core provides the fundamental hook system interfaces, base implementations, and execution context
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/notify"
)

// Hook defines the interface that all hook implementations must satisfy
type Hook interface {
	// Key returns the unique identifier for this hook
	Key() string
	// Name returns the human-readable name for this hook
	Name() string
	// Description returns a description of what this hook does
	Description() string
	// Run executes the hook and returns any error
	Run() error
	// IsEnabled checks if this hook is enabled in the current context
	IsEnabled() bool
}

// EventsProvider is implemented by hooks that know which Claude Code
// events they should be installed for.
type EventsProvider interface {
	Events() []EventType
}

// BaseHook provides common functionality for all hooks
type BaseHook struct {
	key         string
	name        string
	description string
	context     *HookContext
	envelope    *Envelope
}

// Key returns the hook key
func (h *BaseHook) Key() string {
	return h.key
}

// Name returns the hook name
func (h *BaseHook) Name() string {
	return h.name
}

// Description returns the hook description
func (h *BaseHook) Description() string {
	return h.description
}

// IsEnabled checks if the hook is enabled by consulting settings
func (h *BaseHook) IsEnabled() bool {
	return h.context.SettingsChecker(h.key)
}

// Context returns the hook context
func (h *BaseHook) Context() *HookContext {
	return h.context
}

// Envelope returns the raw event currently being dispatched, or an empty
// envelope outside Dispatch.
func (h *BaseHook) Envelope() *Envelope {
	if h.envelope == nil {
		return &Envelope{}
	}
	return h.envelope
}

// SetEnvelope sets the current event. Dispatch calls it; tests may too.
func (h *BaseHook) SetEnvelope(env *Envelope) {
	h.envelope = env
}

// NewBaseHook creates a new BaseHook with the given metadata
func NewBaseHook(key, name, description string, ctx *HookContext) *BaseHook {
	if ctx == nil {
		ctx = DefaultHookContext()
	}
	return &BaseHook{
		key:         key,
		name:        name,
		description: description,
		context:     ctx,
	}
}

// FileSystem interface for dependency injection in testing
type FileSystem interface {
	WriteFile(filename string, data []byte, perm os.FileMode) error
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Stat(name string) (os.FileInfo, error)
}

// RealFileSystem implements FileSystem using the real filesystem
type RealFileSystem struct{}

// WriteFile writes data to a file with the specified permissions
func (fs *RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

// OpenFile opens a file with the specified flags and permissions
func (fs *RealFileSystem) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm) // #nosec G304 - filesystem interface, paths controlled by caller
}

// Stat returns file information for the specified path
func (fs *RealFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// CommandExecutor interface for dependency injection in testing
type CommandExecutor interface {
	ExecuteCommand(name string, args ...string) ([]byte, error)
	ExecuteCommandInDir(dir, name string, args ...string) ([]byte, error)
}

// RealCommandExecutor implements CommandExecutor using real system commands
type RealCommandExecutor struct{}

// ExecuteCommand executes a system command with the specified arguments and returns the combined output
// #nosec G204 - Command name is controlled by hooks, not user input; args are hook-defined
func (ce *RealCommandExecutor) ExecuteCommand(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.CombinedOutput()
}

// ExecuteCommandInDir is ExecuteCommand with a working directory.
// #nosec G204 - formatter and linter binaries come from built-in tables or user config
func (ce *RealCommandExecutor) ExecuteCommandInDir(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Runner interface allows for mocking in tests
type Runner interface {
	Run()
}

// RunnerFactory creates a Runner with the provided handlers
type RunnerFactory func(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse) Runner

// DefaultRunnerFactory creates a standard cchooks.Runner
func DefaultRunnerFactory(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse,
) Runner {
	runner := &cchooks.Runner{}
	if preHook != nil {
		runner.PreToolUse = preHook
	}
	if postHook != nil {
		runner.PostToolUse = postHook
	}
	if rawHook != nil {
		runner.Raw = rawHook
	}
	return runner
}

// HookContext provides dependencies that hooks may need
type HookContext struct {
	FileSystem      FileSystem
	CommandExecutor CommandExecutor
	RunnerFactory   RunnerFactory
	SettingsChecker func(string) bool
	Notifier        notify.Notifier
	EventLog        eventlog.EventLogger
	Config          *config.Config

	// Stdin carries the hook event JSON. Stdout receives hook responses
	// and Stderr progress lines for the user.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// ReplayStdin makes data readable again by the cchooks runner, which
	// reads the process stdin itself. It returns a restore func.
	ReplayStdin func(data []byte) (func(), error)

	WorkDir string
	Now     func() time.Time

	LoggingEnabled bool
	LoggingDir     string
	LoggingFormat  string
}

// DefaultHookContext returns a context with real implementations
func DefaultHookContext() *HookContext {
	wd, _ := os.Getwd()
	return &HookContext{
		FileSystem:      &RealFileSystem{},
		CommandExecutor: &RealCommandExecutor{},
		RunnerFactory:   DefaultRunnerFactory,
		SettingsChecker: defaultIsPluginEnabled,
		Notifier:        notify.NewDesktop(),
		EventLog:        eventlog.Discard{},
		Config:          config.Default(),
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		ReplayStdin:     ReplayStdin,
		WorkDir:         wd,
		Now:             time.Now,
		LoggingEnabled:  false,
		LoggingDir:      ".claude/hooks",
		LoggingFormat:   config.LoggingFormatJSONL,
	}
}

// defaultIsPluginEnabled is the default implementation - always returns true
// This will be replaced by the cmd package when registering hooks
func defaultIsPluginEnabled(_ string) bool {
	return true
}

// Printf writes a progress line for the user to Stderr.
func (h *BaseHook) Printf(format string, args ...interface{}) {
	w := h.context.Stderr
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}

// Notify sends a desktop notification when notifications are enabled.
func (h *BaseHook) Notify(title, subtitle, message string) {
	if cfg := h.context.Config; cfg != nil && !cfg.Notifications.Enabled {
		return
	}
	notify.Safe(h.context.Notifier, h.context.Stderr, title, subtitle, message)
}

// LogEvent appends an entry to the shared event log, reporting failures
// on Stderr.
func (h *BaseHook) LogEvent(eventType, details string) {
	if h.context.EventLog == nil {
		return
	}
	if err := h.context.EventLog.Log(eventType, details); err != nil {
		h.Printf("Failed to log: %v\n", err)
	}
}

// Config returns the loaded configuration, or defaults.
func (h *BaseHook) Config() *config.Config {
	if h.context.Config == nil {
		return config.Default()
	}
	return h.context.Config
}

// Now returns the context clock.
func (h *BaseHook) Now() time.Time {
	if h.context.Now == nil {
		return time.Now()
	}
	return h.context.Now()
}

// LogHookEvent delegates to shared logging utility (see logging.go)
func (h *BaseHook) LogHookEvent(event string, toolName string, rawData map[string]interface{}, details map[string]interface{}) {
	if !h.context.LoggingEnabled {
		return
	}
	logHookEvent(h.context, h.key, h.Envelope().SessionID, event, toolName, rawData, details)
}

// CreateRawHandler creates a raw handler that logs all incoming JSON data when logging is enabled
func (h *BaseHook) CreateRawHandler() func(context.Context, string) *cchooks.RawResponse {
	if !h.context.LoggingEnabled {
		return nil
	}

	return func(_ context.Context, rawJSON string) *cchooks.RawResponse {
		var rawEvent map[string]interface{}
		if err := json.Unmarshal([]byte(rawJSON), &rawEvent); err != nil {
			h.LogHookEvent("raw_event_parse_error", "unknown", map[string]interface{}{
				"raw_json_string": rawJSON,
				"error":           err.Error(),
			}, nil)
			return nil
		}

		eventName, _ := rawEvent["hook_event_name"].(string)
		toolName, _ := rawEvent["tool_name"].(string)

		h.LogHookEvent("raw_event", toolName, map[string]interface{}{
			"hook_event_name": eventName,
		}, rawEvent)

		// nil continues with normal processing
		return nil
	}
}

// StandardRun executes the hook with the provided tool handlers.
func (h *BaseHook) StandardRun(
	preHandler func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHandler func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
) error {
	return h.Dispatch(context.Background(), Handlers{PreToolUse: preHandler, PostToolUse: postHandler})
}

// LogError logs a standard error event
func (h *BaseHook) LogError(eventType, toolName string, err error) {
	if h.Context().LoggingEnabled {
		h.LogHookEvent(eventType, toolName, map[string]interface{}{"error": err.Error()}, nil)
	}
}
