// Package notify sends desktop notifications.
package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier delivers a short user-facing message.
type Notifier interface {
	Notify(title, subtitle, message string) error
}

// CommandRunner runs an external command. It matches the hook command executor.
type CommandRunner interface {
	ExecuteCommand(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) ExecuteCommand(name string, args ...string) ([]byte, error) {
	// #nosec G204 - fixed notifier binaries, message passed as an argument
	return exec.Command(name, args...).CombinedOutput()
}

// Desktop notifies through osascript on macOS and notify-send on Linux.
// Other platforms are a no-op.
type Desktop struct {
	GOOS   string
	Runner CommandRunner
}

// NewDesktop returns a notifier for the running platform.
func NewDesktop() *Desktop {
	return &Desktop{GOOS: runtime.GOOS, Runner: execRunner{}}
}

// Notify implements Notifier.
func (d *Desktop) Notify(title, subtitle, message string) error {
	var (
		out []byte
		err error
	)
	switch d.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s subtitle %s",
			appleScriptString(message), appleScriptString(title), appleScriptString(subtitle))
		out, err = d.Runner.ExecuteCommand("osascript", "-e", script)
	case "linux":
		body := message
		if subtitle != "" {
			body = subtitle + "\n" + message
		}
		out, err = d.Runner.ExecuteCommand("notify-send", "--app-name=hookguard", title, body)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to send notification: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string, string, string) error { return nil }

// Safe sends a notification and reports failures on w (stderr when nil)
// instead of returning them.
func Safe(n Notifier, w io.Writer, title, subtitle, message string) {
	if n == nil {
		return
	}
	if err := n.Notify(title, subtitle, message); err != nil {
		if w == nil {
			w = os.Stderr
		}
		fmt.Fprintf(w, "Failed to send notification: %v\n", err)
	}
}

// Truncate shortens s to at most n runes for notification bodies.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
