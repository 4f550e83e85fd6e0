package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/eventlog"
	"github.com/klauern/hookguard/internal/notify"
	"github.com/urfave/cli/v3"
)

// Scope constants
const (
	ScopeProject = "project"
	ScopeGlobal  = "global"
)

func scopeName(global bool) string {
	if global {
		return ScopeGlobal
	}
	return ScopeProject
}

// stdout returns the writer command output goes to.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// stderr returns the writer progress and warnings go to.
func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// NewHooksCommand creates the main hooks command with all subcommands
func NewHooksCommand() *cli.Command {
	return &cli.Command{
		Name:        "hooks",
		Usage:       "Manage and run hook plugins",
		Description: `Manage hook plugins including listing, running, installing, and uninstalling hooks.`,
		Commands: []*cli.Command{
			newHooksListCommand(),
			newHooksRunCommand(),
			newHooksInstallCommand(),
			newHooksUninstallCommand(),
		},
	}
}

// newHooksListCommand creates the consolidated list command
func newHooksListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List available hooks, installed hooks, or events",
		Description: `List available hook plugins, installed hooks from settings, or available Claude Code events.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "installed",
				Aliases: []string{"i"},
				Usage:   "Show installed hooks from settings",
			},
			&cli.BoolFlag{
				Name:    "events",
				Aliases: []string{"e"},
				Usage:   "Show available Claude Code hook events",
			},
			&cli.BoolFlag{
				Name:    "global",
				Aliases: []string{"g"},
				Usage:   "Show global settings (~/.claude/settings.json) when using --installed",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := stdout(cmd)
			switch {
			case cmd.Bool("installed"):
				return listInstalledHooks(w, cmd.Bool("global"))
			case cmd.Bool("events"):
				listEvents(w)
				return nil
			}
			listAvailableHooks(w)
			return nil
		},
	}
}

// newHooksRunCommand creates the run command
func newHooksRunCommand() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Run a specific hook plugin",
		ArgsUsage:   "[plugin-key]",
		Description: `Run a specific hook plugin against the event JSON on stdin. Claude Code invokes this.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "Enable detailed logging to .claude/hooks/<plugin-key>.log",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: config.LoggingFormatJSONL,
				Usage: "Log output format: jsonl, pretty or text",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return fmt.Errorf("exactly one argument required: [plugin-key]")
			}
			opts := runOptions{
				key:        args[0],
				logEnabled: cmd.Bool("log"),
				logFormat:  cmd.String("log-format"),
			}
			return runHook(ctx, opts, stderr(cmd))
		},
	}
}

type runOptions struct {
	key        string
	logEnabled bool
	logFormat  string
	workDir    string
}

// runHook builds the hook context from the hookguard config and runs one
// hook. Stdout belongs to the hook's response, so all messages go to errw.
func runHook(_ context.Context, opts runOptions, errw io.Writer) error {
	if !isRegistered(opts.key) {
		return fmt.Errorf("plugin '%s' not found.\nAvailable plugins: %s", opts.key, strings.Join(core.GetHookKeys(), ", "))
	}
	if opts.logFormat == "" {
		opts.logFormat = config.LoggingFormatJSONL
	}
	if opts.logEnabled && !config.IsValidLoggingFormat(opts.logFormat) {
		return fmt.Errorf("invalid --log-format '%s'. Valid: jsonl, pretty, text", opts.logFormat)
	}
	if opts.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.workDir = wd
	}

	cfg := config.LoadOrDefault(opts.workDir)
	hookCtx, closeLog := newHookContext(cfg, opts.workDir, errw)
	defer closeLog()
	if opts.logEnabled {
		setupHookLogging(hookCtx, opts.key, opts.logFormat, errw)
	}
	core.SetGlobalContext(hookCtx)

	hook, err := core.CreateHook(opts.key)
	if err != nil {
		return err
	}
	if !hook.IsEnabled() {
		fmt.Fprintf(errw, "Plugin '%s' is disabled via settings. Nothing to do.\n", opts.key)
		return nil
	}
	if err := hook.Run(); err != nil {
		return fmt.Errorf("hook '%s' failed: %w", opts.key, err)
	}
	return nil
}

// newHookContext wires the real notifier, event log and settings lookup.
// The returned func closes the event log.
func newHookContext(cfg *config.Config, workDir string, errw io.Writer) (*core.HookContext, func()) {
	hookCtx := core.DefaultHookContext()
	hookCtx.Config = cfg
	hookCtx.WorkDir = workDir
	hookCtx.Stderr = errw
	hookCtx.SettingsChecker = config.IsPluginEnabled
	if cfg.Notifications.Enabled {
		hookCtx.Notifier = notify.NewDesktop()
	} else {
		hookCtx.Notifier = notify.Nop{}
	}

	logger, closer, err := eventlog.Open(cfg)
	if err != nil {
		fmt.Fprintf(errw, "Warning: event log disabled: %v\n", err)
		return hookCtx, func() {}
	}
	hookCtx.EventLog = logger
	return hookCtx, func() { _ = closer.Close() }
}

// setupHookLogging enables the per-hook debug log under .claude/hooks and
// prunes files older than the rotation max age.
func setupHookLogging(hookCtx *core.HookContext, hookKey, logFormat string, errw io.Writer) {
	logDir := constants.GetConfigDir(hookCtx.WorkDir)
	hookCtx.LoggingEnabled = true
	hookCtx.LoggingDir = logDir
	hookCtx.LoggingFormat = logFormat

	fmt.Fprintf(errw, "Logging enabled - output will be written to %s\n", config.GetHookLogPath(logDir, hookKey))

	rotation := hookCtx.Config.Logging.Rotation
	if removed, err := config.CleanupOldLogs(logDir, rotation.MaxAge); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(errw, "Warning: Failed to cleanup old logs: %v\n", err)
	} else if removed > 0 {
		fmt.Fprintf(errw, "Removed %d log files older than %d days\n", removed, rotation.MaxAge)
	}
}

func isRegistered(key string) bool {
	for _, k := range core.GetHookKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// hookEvents returns the events a hook installs for by default.
func hookEvents(key string) []string {
	hook, err := core.CreateHook(key)
	if err != nil {
		return nil
	}
	return eventNames(core.EventsOf(hook))
}

func eventNames(events []core.EventType) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, string(e))
	}
	return names
}

// listAvailableHooks lists all registered hook plugins
func listAvailableHooks(w io.Writer) {
	fmt.Fprintln(w, "Available hook plugins:")
	fmt.Fprintln(w)
	for _, info := range core.Catalog() {
		fmt.Fprintf(w, "  %-10s %s\n", info.Key, info.Description)
		fmt.Fprintf(w, "  %-10s events: %s\n", "", strings.Join(eventNames(info.Events), ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Use '%s hooks install <key>' to install a hook.\n", constants.BinaryName)
	fmt.Fprintf(w, "Use '%s hooks list --installed' to see what is configured.\n", constants.BinaryName)
}

// listInstalledHooks lists hookguard hooks installed in settings
func listInstalledHooks(w io.Writer, global bool) error {
	settingsPath, settings, err := loadScopedSettings(global)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Installed hooks (%s settings):\n", scopeName(global))
	fmt.Fprintf(w, "Settings file: %s\n\n", settingsPath)

	installed := config.ListHookguardHooks(settings)
	if len(installed) == 0 {
		fmt.Fprintln(w, "No hooks are currently installed.")
		return nil
	}
	event := ""
	for _, h := range installed {
		if h.Event != event {
			event = h.Event
			fmt.Fprintf(w, "%s:\n", event)
		}
		matcher := h.Matcher
		if matcher == "" {
			matcher = "(all)"
		}
		fmt.Fprintf(w, "  %-10s matcher: %-8s %s\n", h.Key, matcher, h.Command)
	}

	fmt.Fprintln(w)
	flag := ""
	if global {
		flag = " --global"
	}
	fmt.Fprintf(w, "Remove one with '%s hooks uninstall <key>%s' or all with '%s hooks uninstall all%s'.\n",
		constants.BinaryName, flag, constants.BinaryName, flag)
	return nil
}

// listEvents prints the Claude Code events hooks can attach to
func listEvents(w io.Writer) {
	fmt.Fprintln(w, "Available Claude Code hook events:")
	fmt.Fprintln(w)
	for _, e := range core.AllClaudeCodeEvents() {
		matcher := ""
		if e.ToolMatcher {
			matcher = " (tool matcher)"
		}
		fmt.Fprintf(w, "  %-17s %s%s\n", e.Name, e.Description, matcher)
	}
}

// loadScopedSettings resolves and loads project or global settings.
func loadScopedSettings(global bool) (string, *config.Settings, error) {
	settingsPath, err := config.GetSettingsPath(global, "")
	if err != nil {
		return "", nil, fmt.Errorf("failed to locate %s settings path: %w\n  Suggestion: Ensure you're in a project directory or use --global flag for global settings", scopeName(global), err)
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load settings from %s: %w\n  Suggestion: Check if the settings file exists and is valid JSON", settingsPath, err)
	}
	return settingsPath, settings, nil
}
