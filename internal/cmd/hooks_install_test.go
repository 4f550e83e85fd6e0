package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/klauern/hookguard/internal/config"
	_ "github.com/klauern/hookguard/internal/hooks"
)

const testExecutable = "/usr/local/bin/hookguard"

func useTestExecutable(t *testing.T) {
	t.Helper()
	orig := executablePath
	executablePath = func() (string, error) { return testExecutable, nil }
	t.Cleanup(func() { executablePath = orig })
}

// inProject switches to an empty project directory and returns it.
func inProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvThreshold, "")
	return dir
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runAppWithInput(t, "", args...)
}

func runAppWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(VersionInfo{Version: "test"})
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"hookguard"}, args...))
	return out.String(), err
}

func loadProjectSettings(t *testing.T) *config.Settings {
	t.Helper()
	path, err := config.GetSettingsPath(false, "")
	if err != nil {
		t.Fatal(err)
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuildInstallHookCommand(t *testing.T) {
	useTestExecutable(t)

	tests := []struct {
		name     string
		hookType string
		flags    installFlags
		want     string
	}{
		{
			name:     "basic command without logging",
			hookType: "security",
			want:     testExecutable + " hooks run security",
		},
		{
			name:     "command with jsonl logging",
			hookType: "security",
			flags:    installFlags{logEnabled: true, logFormat: config.LoggingFormatJSONL},
			want:     testExecutable + " hooks run security --log",
		},
		{
			name:     "command with pretty logging",
			hookType: "format",
			flags:    installFlags{logEnabled: true, logFormat: config.LoggingFormatPretty},
			want:     testExecutable + " hooks run format --log --log-format pretty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildInstallHookCommand(tt.hookType, tt.flags)
			if err != nil {
				t.Fatalf("buildInstallHookCommand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildInstallHookCommand() = %q, want %q", got, tt.want)
			}
			if config.ExtractHookKey(got) != tt.hookType {
				t.Errorf("ExtractHookKey(%q) = %q", got, config.ExtractHookKey(got))
			}
		})
	}
}

func TestHandleDuplicateHookResult(t *testing.T) {
	tests := []struct {
		name    string
		result  config.MergeResult
		want    bool
		wantOut string
	}{
		{
			name:   "not a duplicate",
			result: config.MergeResult{WasDuplicate: false},
			want:   false,
		},
		{
			name:    "duplicate with replacement",
			result:  config.MergeResult{WasDuplicate: true, DuplicateInfo: "Replaced existing security hook"},
			want:    false,
			wantOut: "🔄 Replaced existing security hook",
		},
		{
			name:    "exact duplicate",
			result:  config.MergeResult{WasDuplicate: true, DuplicateInfo: "Hook command 'x' already exists"},
			want:    true,
			wantOut: "⚠️  Hook already installed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := handleDuplicateHookResult(&buf, tt.result); got != tt.want {
				t.Errorf("handleDuplicateHookResult() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(buf.String(), tt.wantOut) {
				t.Errorf("output %q missing %q", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestMatcherFor(t *testing.T) {
	tests := []struct {
		event, matcher, want string
	}{
		{"PreToolUse", "Bash", "Bash"},
		{"PostToolUse", "", "*"},
		{"UserPromptSubmit", "*", ""},
		{"Stop", "Edit", ""},
	}
	for _, tt := range tests {
		if got := matcherFor(tt.event, tt.matcher); got != tt.want {
			t.Errorf("matcherFor(%q, %q) = %q, want %q", tt.event, tt.matcher, got, tt.want)
		}
	}
}

func TestInstallUsesHookEvents(t *testing.T) {
	useTestExecutable(t)
	inProject(t)

	out, err := runApp(t, "hooks", "install", "--timeout", "5", "stats")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if !strings.Contains(out, "✅ Successfully installed stats hook in project settings") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Events: PreToolUse, PostToolUse, Stop") {
		t.Errorf("output = %q", out)
	}

	s := loadProjectSettings(t)
	if len(s.Hooks.PreToolUse) != 1 || s.Hooks.PreToolUse[0].Matcher != "*" {
		t.Fatalf("PreToolUse = %+v", s.Hooks.PreToolUse)
	}
	if len(s.Hooks.Stop) != 1 || s.Hooks.Stop[0].Matcher != "" {
		t.Fatalf("Stop = %+v", s.Hooks.Stop)
	}
	hook := s.Hooks.Stop[0].Hooks[0]
	if hook.Command != testExecutable+" hooks run stats" || hook.Timeout == nil || *hook.Timeout != 5 {
		t.Errorf("stop hook = %+v", hook)
	}
}

func TestInstallDuplicateAndReplace(t *testing.T) {
	useTestExecutable(t)
	inProject(t)

	if _, err := runApp(t, "hooks", "install", "--event", "PreToolUse", "--matcher", "Bash", "security"); err != nil {
		t.Fatal(err)
	}
	out, err := runApp(t, "hooks", "install", "--event", "PreToolUse", "--matcher", "Bash", "security")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Hook already installed") || !strings.Contains(out, "No changes made") {
		t.Errorf("duplicate output = %q", out)
	}

	out, err = runApp(t, "hooks", "install", "-e", "PreToolUse", "-m", "Bash", "--log", "security")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "🔄 Replaced existing security hook") {
		t.Errorf("replace output = %q", out)
	}
	s := loadProjectSettings(t)
	if got := s.Hooks.PreToolUse[0].Hooks; len(got) != 1 || !strings.HasSuffix(got[0].Command, "--log") {
		t.Errorf("hooks = %+v", got)
	}
}

func TestInstallRejectsBadInput(t *testing.T) {
	useTestExecutable(t)
	inProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown hook", []string{"hooks", "install", "nope"}, "plugin 'nope' not found"},
		{"unknown event", []string{"hooks", "install", "--event", "Whenever", "security"}, "invalid event 'Whenever'"},
		{"bad log format", []string{"hooks", "install", "--log", "--log-format", "xml", "security"}, "invalid --log-format"},
		{"no argument", []string{"hooks", "install"}, "exactly one argument required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestUninstallHook(t *testing.T) {
	useTestExecutable(t)
	inProject(t)

	if _, err := runApp(t, "hooks", "install", "audit"); err != nil {
		t.Fatal(err)
	}
	out, err := runApp(t, "hooks", "uninstall", "audit")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Entries removed: 2") {
		t.Errorf("output = %q", out)
	}
	if s := loadProjectSettings(t); !config.IsHooksConfigEmpty(s.Hooks) {
		t.Errorf("hooks left behind: %+v", s.Hooks)
	}

	if _, err := runApp(t, "hooks", "uninstall", "audit"); err == nil || !strings.Contains(err.Error(), "was not found") {
		t.Errorf("second uninstall err = %v", err)
	}
}

func TestUninstallAllKeepsForeignHooks(t *testing.T) {
	useTestExecutable(t)
	inProject(t)

	path, _ := config.GetSettingsPath(false, "")
	s := loadProjectSettings(t)
	if _, err := config.AddHookToSettings(s, "PreToolUse", "Bash", "/opt/other-tool check", nil); err != nil {
		t.Fatal(err)
	}
	if err := config.SaveSettings(path, s); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"security", "prompt"} {
		if _, err := runApp(t, "hooks", "install", key); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := uninstallAllHooks(&buf, strings.NewReader("n\n"), false, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Operation cancelled.") {
		t.Errorf("output = %q", buf.String())
	}
	if got := len(config.ListHookguardHooks(loadProjectSettings(t))); got != 2 {
		t.Fatalf("cancel removed hooks: %d left", got)
	}

	buf.Reset()
	if err := uninstallAllHooks(&buf, strings.NewReader("y\n"), false, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "✅ Removed 2 hookguard hooks") {
		t.Errorf("output = %q", buf.String())
	}
	left := loadProjectSettings(t)
	if len(config.ListHookguardHooks(left)) != 0 {
		t.Errorf("hookguard hooks left: %+v", left.Hooks)
	}
	if len(left.Hooks.PreToolUse) != 1 || left.Hooks.PreToolUse[0].Hooks[0].Command != "/opt/other-tool check" {
		t.Errorf("foreign hook lost: %+v", left.Hooks.PreToolUse)
	}
}

func TestHooksList(t *testing.T) {
	useTestExecutable(t)
	inProject(t)

	out, err := runApp(t, "hooks", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"audit", "format", "prompt", "security", "stats"} {
		if !strings.Contains(out, "  "+key) {
			t.Errorf("list missing %s: %q", key, out)
		}
	}
	if !strings.Contains(out, "events: UserPromptSubmit") {
		t.Errorf("list missing prompt events: %q", out)
	}

	out, err = runApp(t, "hooks", "list", "--events")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "PreToolUse") || !strings.Contains(out, "(tool matcher)") {
		t.Errorf("events output = %q", out)
	}

	out, err = runApp(t, "hooks", "list", "--installed")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No hooks are currently installed.") {
		t.Errorf("installed output = %q", out)
	}

	if _, err := runApp(t, "hooks", "install", "format"); err != nil {
		t.Fatal(err)
	}
	out, err = runApp(t, "hooks", "list", "-i")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "PostToolUse:") || !strings.Contains(out, "format") {
		t.Errorf("installed output = %q", out)
	}
}
