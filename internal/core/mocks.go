package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brads3290/cchooks"
	"github.com/klauern/hookguard/internal/config"
)

// MockFileSystem implements FileSystem interface for testing
type MockFileSystem struct {
	Files    map[string][]byte
	Dirs     map[string]bool
	WriteErr error
	OpenErr  error
	StatErr  error
	mu       sync.RWMutex
}

// NewMockFileSystem creates a new mock filesystem for testing
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string][]byte),
		Dirs:  make(map[string]bool),
	}
}

// WriteFile writes data to a mock file in memory
func (m *MockFileSystem) WriteFile(filename string, data []byte, _ os.FileMode) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirs[filepath.Dir(filename)] = true
	m.Files[filename] = append([]byte(nil), data...)
	return nil
}

// OpenFile returns a throwaway temp file so callers can write to it.
func (m *MockFileSystem) OpenFile(_ string, _ int, _ os.FileMode) (*os.File, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	return os.CreateTemp("", "mock_*")
}

// Stat returns file information for files written through WriteFile
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if m.StatErr != nil {
		return nil, m.StatErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, exists := m.Files[name]; exists {
		return &mockFileInfo{name: name, size: int64(len(data))}, nil
	}
	return nil, os.ErrNotExist
}

type mockFileInfo struct {
	name string
	size int64
}

func (m *mockFileInfo) Name() string       { return filepath.Base(m.name) }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return 0o600 }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// MockCommandExecutor implements CommandExecutor interface for testing
type MockCommandExecutor struct {
	Commands  []MockCommand
	Responses map[string]MockCommandResponse
	mu        sync.RWMutex
}

// MockCommand represents a mock command execution
type MockCommand struct {
	Dir  string
	Name string
	Args []string
}

// MockCommandResponse represents the response from a mock command
type MockCommandResponse struct {
	Output []byte
	Error  error
}

// NewMockCommandExecutor creates a new mock command executor for testing
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses: make(map[string]MockCommandResponse),
	}
}

// ExecuteCommand records the call and returns the configured response.
func (m *MockCommandExecutor) ExecuteCommand(name string, args ...string) ([]byte, error) {
	return m.ExecuteCommandInDir("", name, args...)
}

// ExecuteCommandInDir records the call and returns the response keyed by
// "name arg0", or empty output when none is configured.
func (m *MockCommandExecutor) ExecuteCommandInDir(dir, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{
		Dir:  dir,
		Name: name,
		Args: append([]string{}, args...),
	})

	key := name
	if len(args) > 0 {
		key = fmt.Sprintf("%s %s", name, args[0])
	}
	if response, exists := m.Responses[key]; exists {
		return response.Output, response.Error
	}
	return nil, nil
}

// SetResponse configures a response for a specific command
func (m *MockCommandExecutor) SetResponse(command string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[command] = MockCommandResponse{Output: output, Error: err}
}

// GetExecutedCommands returns all executed commands
func (m *MockCommandExecutor) GetExecutedCommands() []MockCommand {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MockCommand(nil), m.Commands...)
}

// WasCommandExecuted checks if a command was executed with args as a prefix
func (m *MockCommandExecutor) WasCommandExecuted(name string, args ...string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, cmd := range m.Commands {
		if cmd.Name == name && argsMatch(cmd.Args, args) {
			return true
		}
	}
	return false
}

func argsMatch(cmdArgs, expectedArgs []string) bool {
	if len(cmdArgs) < len(expectedArgs) {
		return false
	}
	for i, arg := range expectedArgs {
		if cmdArgs[i] != arg {
			return false
		}
	}
	return true
}

// MockNotifier records notifications.
type MockNotifier struct {
	mu       sync.Mutex
	Sent     []MockNotification
	NotifyFn func(title, subtitle, message string) error
}

// MockNotification is one recorded notification.
type MockNotification struct {
	Title, Subtitle, Message string
}

// Notify implements notify.Notifier
func (m *MockNotifier) Notify(title, subtitle, message string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, MockNotification{title, subtitle, message})
	m.mu.Unlock()
	if m.NotifyFn != nil {
		return m.NotifyFn(title, subtitle, message)
	}
	return nil
}

// Notifications returns a copy of what was sent.
func (m *MockNotifier) Notifications() []MockNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockNotification(nil), m.Sent...)
}

// MockEventLog records event log entries.
type MockEventLog struct {
	mu      sync.Mutex
	Entries []MockLogEntry
	Err     error
}

// MockLogEntry is one recorded event.
type MockLogEntry struct {
	Event   string
	Details string
	Fields  map[string]interface{}
}

// Log implements eventlog.EventLogger
func (m *MockEventLog) Log(eventType, details string) error {
	return m.LogFields(eventType, details, nil)
}

// LogFields implements eventlog.EventLogger
func (m *MockEventLog) LogFields(eventType, details string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, MockLogEntry{eventType, details, fields})
	return nil
}

// Events returns the logged event types in order.
func (m *MockEventLog) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Event
	}
	return out
}

// Find returns the first entry of eventType.
func (m *MockEventLog) Find(eventType string) (MockLogEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Event == eventType {
			return e, true
		}
	}
	return MockLogEntry{}, false
}

// MockRunner implements a test runner for cchooks that mimics cchooks.Runner structure
type MockRunner struct {
	PreToolUse  func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface
	PostToolUse func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface
	RawHook     func(context.Context, string) *cchooks.RawResponse
	RunCalled   bool
}

// Run marks the runner as called without reading stdin
func (m *MockRunner) Run() {
	m.RunCalled = true
}

// MockRunnerFactory creates MockRunner instances
func MockRunnerFactory(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse,
) Runner {
	return &MockRunner{
		PreToolUse:  preHook,
		PostToolUse: postHook,
		RawHook:     rawHook,
	}
}

// RunnerRecorder is a RunnerFactory source that keeps every runner it builds.
type RunnerRecorder struct {
	Runners []*MockRunner
}

// Factory builds and records a MockRunner.
func (r *RunnerRecorder) Factory(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse,
) Runner {
	m := MockRunnerFactory(preHook, postHook, rawHook).(*MockRunner)
	r.Runners = append(r.Runners, m)
	return m
}

// TestHookContext creates a context suitable for testing. Output goes to
// in-memory buffers reachable through Stdout and Stderr.
func TestHookContext(settingsChecker func(string) bool) *HookContext {
	if settingsChecker == nil {
		settingsChecker = func(string) bool { return true }
	}

	cfg := config.Default()
	dir, err := os.MkdirTemp("", "hookguard-test-*")
	if err == nil {
		cfg.Stats.Dir = filepath.Join(dir, "stats")
		cfg.Logging.Dir = filepath.Join(dir, "logs")
	}
	cfg.Stats.Archive = false

	return &HookContext{
		FileSystem:      NewMockFileSystem(),
		CommandExecutor: NewMockCommandExecutor(),
		RunnerFactory:   MockRunnerFactory,
		SettingsChecker: settingsChecker,
		Notifier:        &MockNotifier{},
		EventLog:        &MockEventLog{},
		Config:          cfg,
		Stdin:           strings.NewReader(""),
		Stdout:          &bytes.Buffer{},
		Stderr:          &bytes.Buffer{},
		ReplayStdin:     func([]byte) (func(), error) { return func() {}, nil },
		WorkDir:         dir,
		Now:             time.Now,
		LoggingFormat:   config.LoggingFormatJSONL,
	}
}

// WithInput sets Stdin to the given event JSON and returns ctx.
func (ctx *HookContext) WithInput(eventJSON string) *HookContext {
	ctx.Stdin = strings.NewReader(eventJSON)
	return ctx
}

// Output returns what was written to Stdout when it is a buffer.
func (ctx *HookContext) Output() string {
	if b, ok := ctx.Stdout.(*bytes.Buffer); ok {
		return b.String()
	}
	return ""
}

// Messages returns what was written to Stderr when it is a buffer.
func (ctx *HookContext) Messages() string {
	if b, ok := ctx.Stderr.(*bytes.Buffer); ok {
		return b.String()
	}
	return ""
}
