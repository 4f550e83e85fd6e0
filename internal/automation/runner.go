package automation

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauern/hookguard/internal/config"
)

// Executor runs an external command in dir and returns combined output.
type Executor interface {
	ExecuteCommandInDir(dir, name string, args ...string) ([]byte, error)
}

// Step is one planned tool invocation.
type Step struct {
	Tool string   // label used in results
	Dir  string   // working directory, empty for the current one
	Name string   // executable
	Args []string // arguments
	// OnFailure is the status reported when the command exits non-zero.
	OnFailure Status
	// Done is the message reported on success.
	Done string
	// Classify, when set, overrides OnFailure based on command output.
	Classify func(output string) Status
}

// maxMessage caps tool output carried in a Result.
const maxMessage = 2000

// Option configures a Formatter or Linter.
type Option func(*toolRunner)

// WithRules installs glob rules that replace the built-in tools for matching files.
func WithRules(rules []config.ToolRule) Option {
	return func(r *toolRunner) { r.rules = rules }
}

// WithAvailability replaces the PATH lookup used to decide whether a tool exists.
func WithAvailability(available func(name string) bool) Option {
	return func(r *toolRunner) { r.available = available }
}

type toolRunner struct {
	exec      Executor
	rules     []config.ToolRule
	available func(name string) bool
}

func newToolRunner(executor Executor, opts []Option) *toolRunner {
	r := &toolRunner{exec: executor, available: IsAvailable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run executes a step and converts the outcome into a Result.
func (r *toolRunner) run(s Step) Result {
	if !r.available(s.Name) {
		return notAvailableResult(s.Tool)
	}
	output, err := r.exec.ExecuteCommandInDir(s.Dir, s.Name, s.Args...)
	if err == nil {
		return successResult(s.Tool, s.Done)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return notAvailableResult(s.Tool)
	}

	msg := strings.TrimSpace(string(output))
	if msg == "" {
		msg = err.Error()
	}
	status := s.OnFailure
	if s.Classify != nil {
		status = s.Classify(msg)
	}
	return Result{Tool: s.Tool, Status: status, Message: truncate(msg, maxMessage)}
}

func (r *toolRunner) runAll(steps []Step) []Result {
	results := make([]Result, 0, len(steps))
	for _, s := range steps {
		results = append(results, r.run(s))
	}
	return results
}

// matchRule returns the first rule whose glob matches path. Globs are tried
// against the slash-separated path and then the base name.
func (r *toolRunner) matchRule(path string) (config.ToolRule, bool) {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, rule := range r.rules {
		if ok, _ := doublestar.Match(rule.Glob, slashed); ok {
			return rule, true
		}
		if ok, _ := doublestar.Match(rule.Glob, base); ok {
			return rule, true
		}
	}
	return config.ToolRule{}, false
}

// ruleSteps turns rule command lines into steps that take path as the last
// argument and run in the file's directory.
func ruleSteps(commands []string, path string, onFailure Status, done string) []Step {
	var steps []Step
	for _, line := range commands {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		steps = append(steps, Step{
			Tool:      line,
			Dir:       filepath.Dir(path),
			Name:      fields[0],
			Args:      append(fields[1:len(fields):len(fields)], path),
			OnFailure: onFailure,
			Done:      done,
		})
	}
	return steps
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

var availability = struct {
	mu     sync.Mutex
	checks map[string]*toolCheck
}{checks: make(map[string]*toolCheck)}

type toolCheck struct {
	once sync.Once
	ok   bool
}

// IsAvailable reports whether name is on PATH. Lookups are cached per tool.
func IsAvailable(name string) bool {
	availability.mu.Lock()
	check, ok := availability.checks[name]
	if !ok {
		check = &toolCheck{}
		availability.checks[name] = check
	}
	availability.mu.Unlock()

	check.once.Do(func() {
		_, err := exec.LookPath(name)
		check.ok = err == nil
	})
	return check.ok
}

func fileLabel(path string) string {
	return fmt.Sprintf("Formatted: %s", path)
}
