package constants

import "path/filepath"

// Application constants - single source of truth for naming throughout the codebase
const (
	// Core application identity
	AppName        = "hookguard"
	BinaryName     = "hookguard"
	ProjectTagline = "Prompt and command guard rails for Claude Code"

	// Module and repository
	ModulePath    = "github.com/klauern/hookguard"
	RepositoryURL = "https://github.com/klauern/hookguard"

	// Configuration files
	ConfigBaseName   = "hookguard"
	SettingsFileName = "settings.json"

	// Log and state files
	DefaultLogFile  = "hook.log"
	HistoryDBFile   = "history.db"
	SessionFileStem = "session-"

	// Directory paths
	ClaudeDir   = ".claude"
	HooksSubDir = "hooks"
	HookLogsDir = "hook-logs"

	// Command patterns for settings
	CommandPattern = BinaryName + " hooks run"
)

// Tool names as reported by Claude Code in hook events
const (
	ToolBash      = "Bash"
	ToolTask      = "Task"
	ToolEdit      = "Edit"
	ToolMultiEdit = "MultiEdit"
	ToolWrite     = "Write"
	ToolRead      = "Read"
	ToolGlob      = "Glob"
	ToolGrep      = "Grep"

	// MCPToolPrefix prefixes every MCP tool name: mcp__<server>__<tool>
	MCPToolPrefix = "mcp__"
)

// IsShellTool reports whether the tool's input may carry a shell command.
// Task input only does when it has a "command" field.
func IsShellTool(tool string) bool {
	return tool == ToolBash || tool == ToolTask
}

// IsFileEditTool reports whether the tool modifies a file on disk.
func IsFileEditTool(tool string) bool {
	return tool == ToolEdit || tool == ToolWrite || tool == ToolMultiEdit
}

// GetConfigDir returns the project-scoped hooks directory under baseDir
func GetConfigDir(baseDir string) string {
	return filepath.Join(baseDir, ClaudeDir, HooksSubDir)
}
