package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/core"
	"github.com/urfave/cli/v3"
)

// executablePath resolves the binary written into settings commands.
var executablePath = os.Executable

// installFlags holds the parsed flags of `hooks install`.
type installFlags struct {
	global     bool
	events     []string
	matcher    string
	timeout    int
	logEnabled bool
	logFormat  string
}

// newHooksInstallCommand creates the install command
func newHooksInstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install a hook type into Claude Code settings",
		ArgsUsage: "[hook-type]",
		Description: `Install a hook type into your Claude Code settings.json file.
Without --event the hook is registered for every event it handles.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "global",
				Aliases: []string{"g"},
				Usage:   "Install to global settings (~/.claude/settings.json)",
			},
			&cli.StringFlag{
				Name:    "event",
				Aliases: []string{"e"},
				Usage:   "Hook event (PreToolUse, PostToolUse, UserPromptSubmit, etc.); defaults to the hook's own events",
			},
			&cli.StringFlag{
				Name:    "matcher",
				Aliases: []string{"m"},
				Value:   "*",
				Usage:   "Tool matcher pattern (* for all tools); ignored for events without tools",
			},
			&cli.IntFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Command timeout in seconds (0 for no timeout)",
			},
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
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return fmt.Errorf("exactly one argument required: [hook-type]")
			}
			hookType := args[0]
			if !isRegistered(hookType) {
				return fmt.Errorf("plugin '%s' not found.\nAvailable plugins: %s", hookType, strings.Join(core.GetHookKeys(), ", "))
			}

			flags, err := parseInstallFlags(cmd, hookType)
			if err != nil {
				return err
			}
			return installHook(stdout(cmd), hookType, flags)
		},
	}
}

func parseInstallFlags(cmd *cli.Command, hookType string) (installFlags, error) {
	flags := installFlags{
		global:     cmd.Bool("global"),
		matcher:    cmd.String("matcher"),
		timeout:    int(cmd.Int("timeout")),
		logEnabled: cmd.Bool("log"),
		logFormat:  cmd.String("log-format"),
	}
	if flags.logFormat == "" {
		flags.logFormat = config.LoggingFormatJSONL
	}
	if flags.logEnabled && !config.IsValidLoggingFormat(flags.logFormat) {
		return flags, fmt.Errorf("invalid --log-format '%s'. Valid: jsonl, pretty, text", flags.logFormat)
	}

	if event := cmd.String("event"); event != "" {
		if !core.IsValidEventType(event) {
			return flags, fmt.Errorf("invalid event '%s'.\nValid events: %s\nUse 'hooks list --events' to see all available events with descriptions", event, strings.Join(core.ValidEventTypes(), ", "))
		}
		flags.events = []string{event}
	} else {
		flags.events = hookEvents(hookType)
	}
	return flags, nil
}

// buildInstallHookCommand returns the settings command line for hookType.
func buildInstallHookCommand(hookType string, flags installFlags) (string, error) {
	execPath, err := executablePath()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	hookCommand := fmt.Sprintf("%s hooks run %s", execPath, hookType)
	if flags.logEnabled {
		hookCommand += " --log"
		if flags.logFormat != "" && flags.logFormat != config.LoggingFormatJSONL {
			hookCommand += fmt.Sprintf(" --log-format %s", flags.logFormat)
		}
	}
	return hookCommand, nil
}

// matcherFor returns the matcher to store for event. Events without tools
// are registered with an empty matcher.
func matcherFor(event, matcher string) string {
	if !core.UsesToolMatcher(event) {
		return ""
	}
	if matcher == "" {
		return "*"
	}
	return matcher
}

// handleDuplicateHookResult prints duplicate information and reports whether
// the settings were left unchanged.
func handleDuplicateHookResult(w io.Writer, result config.MergeResult) bool {
	if !result.WasDuplicate {
		return false
	}
	if strings.Contains(result.DuplicateInfo, "Replaced existing") {
		fmt.Fprintf(w, "🔄 %s\n", result.DuplicateInfo)
		return false
	}
	fmt.Fprintf(w, "⚠️  Hook already installed: %s\n", result.DuplicateInfo)
	return true
}

func installHook(w io.Writer, hookType string, flags installFlags) error {
	hookCommand, err := buildInstallHookCommand(hookType, flags)
	if err != nil {
		return err
	}
	settingsPath, settings, err := loadScopedSettings(flags.global)
	if err != nil {
		return err
	}

	var timeout *int
	if flags.timeout > 0 {
		timeout = &flags.timeout
	}

	var installed []string
	for _, event := range flags.events {
		result, err := config.AddHookToSettings(settings, event, matcherFor(event, flags.matcher), hookCommand, timeout)
		if err != nil {
			return err
		}
		if !handleDuplicateHookResult(w, result) {
			installed = append(installed, event)
		}
	}

	if len(installed) == 0 {
		fmt.Fprintln(w, "No changes made. The hook is already configured for these events.")
		return nil
	}
	if err := config.SaveSettings(settingsPath, settings); err != nil {
		return fmt.Errorf("failed to save settings to %s: %w\n  Suggestion: Check file permissions and disk space", settingsPath, err)
	}

	fmt.Fprintf(w, "✅ Successfully installed %s hook in %s settings\n", hookType, scopeName(flags.global))
	fmt.Fprintf(w, "   Events: %s\n", strings.Join(installed, ", "))
	fmt.Fprintf(w, "   Matcher: %s\n", flags.matcher)
	fmt.Fprintf(w, "   Command: %s\n", hookCommand)
	fmt.Fprintf(w, "   Settings: %s\n", settingsPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The hook will be active in new Claude Code sessions.")
	fmt.Fprintln(w, "Use 'claude /hooks' to verify the configuration.")
	return nil
}

// newHooksUninstallCommand creates the uninstall command
func newHooksUninstallCommand() *cli.Command {
	return &cli.Command{
		Name:        "uninstall",
		Usage:       "Remove a hook type from Claude Code settings",
		ArgsUsage:   "[hook-type|all]",
		Description: `Remove a hook type from your Claude Code settings.json file. Use 'all' to remove all ` + constants.AppName + ` hooks.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "global",
				Aliases: []string{"g"},
				Usage:   "Remove from global settings (~/.claude/settings.json)",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip interactive confirmation for 'uninstall all'",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return fmt.Errorf("exactly one argument required: [hook-type|all]")
			}
			hookType := args[0]
			global := cmd.Bool("global")

			if hookType == "all" {
				in := cmd.Root().Reader
				if in == nil {
					in = os.Stdin
				}
				return uninstallAllHooks(stdout(cmd), in, global, cmd.Bool("yes"))
			}
			return uninstallHook(stdout(cmd), hookType, global)
		},
	}
}

func uninstallHook(w io.Writer, hookType string, global bool) error {
	settingsPath, settings, err := loadScopedSettings(global)
	if err != nil {
		return err
	}

	removed := config.RemoveHookKeyFromSettings(settings, hookType)
	if removed == 0 {
		return fmt.Errorf("hook type '%s' was not found in %s settings", hookType, scopeName(global))
	}
	if err := config.SaveSettings(settingsPath, settings); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}

	fmt.Fprintf(w, "✅ Successfully removed %s hook from %s settings\n", hookType, scopeName(global))
	fmt.Fprintf(w, "   Entries removed: %d\n", removed)
	fmt.Fprintf(w, "   Settings: %s\n", settingsPath)
	return nil
}

// uninstallAllHooks removes every hookguard command, leaving other hooks alone.
func uninstallAllHooks(w io.Writer, in io.Reader, global, skipConfirmation bool) error {
	settingsPath, settings, err := loadScopedSettings(global)
	if err != nil {
		return err
	}
	scope := scopeName(global)

	installed := config.ListHookguardHooks(settings)
	if len(installed) == 0 {
		fmt.Fprintf(w, "No %s hooks found in %s settings.\n", constants.AppName, scope)
		return nil
	}

	fmt.Fprintf(w, "Found %d %s hooks in %s settings:\n\n", len(installed), constants.AppName, scope)
	for _, h := range installed {
		fmt.Fprintf(w, "  %s: %s\n", h.Event, h.Command)
	}
	fmt.Fprintf(w, "\nThis will remove ALL %s hooks from %s settings.\n", constants.AppName, scope)
	fmt.Fprintln(w, "Other hooks will be preserved.")

	if !skipConfirmation {
		fmt.Fprint(w, "Continue? (y/N): ")
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Fprintln(w, "Operation cancelled.")
			return nil
		}
	}

	removed := config.RemoveHooksFromSettings(settings, config.IsHookguardCommand)
	if err := config.SaveSettings(settingsPath, settings); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	fmt.Fprintf(w, "✅ Removed %d %s hooks from %s settings\n", removed, constants.AppName, scope)
	fmt.Fprintf(w, "   Settings: %s\n", settingsPath)
	return nil
}
