package automation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Linter reports (and where the tool supports it, fixes) lint findings.
type Linter struct {
	r *toolRunner
}

// NewLinter returns a Linter that runs tools through executor.
func NewLinter(executor Executor, opts ...Option) *Linter {
	return &Linter{r: newToolRunner(executor, opts)}
}

// clippyStatus separates compile failures from ordinary lint warnings.
func clippyStatus(output string) Status {
	if strings.Contains(output, "could not compile") {
		return Error
	}
	return Warning
}

func clippy(dir string) Step {
	return Step{
		Tool: "cargo clippy", Dir: dir, Name: "cargo",
		Args:     []string{"clippy", "--", "-W", "clippy::all"},
		Done:     "No warnings found",
		Classify: clippyStatus,
	}
}

// FileSteps plans the linter invocations for a single file.
func (l *Linter) FileSteps(path string) []Step {
	if rule, ok := l.r.matchRule(path); ok && len(rule.Lint) > 0 {
		return ruleSteps(rule.Lint, path, Warning, "No issues found")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rs":
		if root, ok := FindUp(path, "Cargo.toml"); ok {
			return []Step{clippy(root)}
		}
	case ".go":
		return []Step{{Tool: "go vet", Dir: filepath.Dir(path), Name: "go", Args: []string{"vet", "."}, OnFailure: Warning, Done: "No issues found"}}
	case ".js", ".jsx", ".ts", ".tsx":
		return []Step{{Tool: "eslint", Dir: filepath.Dir(path), Name: "npx", Args: []string{"eslint", "--fix", path}, OnFailure: Warning, Done: "No issues found"}}
	case ".py":
		return []Step{{Tool: "flake8", Name: "flake8", Args: []string{path}, OnFailure: Warning, Done: "No issues found"}}
	}
	return nil
}

// LintFile lints path. A Rust file outside any Cargo project and unsupported
// file types yield a single Skipped result.
func (l *Linter) LintFile(path string) []Result {
	steps := l.FileSteps(path)
	if len(steps) == 0 {
		if strings.EqualFold(filepath.Ext(path), ".rs") {
			return []Result{skippedResult("No Cargo.toml found")}
		}
		return []Result{skippedResult(fmt.Sprintf("Unsupported file type: %s", path))}
	}
	return l.r.runAll(steps)
}

// ProjectSteps plans a whole-project lint for the project in dir.
func (l *Linter) ProjectSteps(dir string) []Step {
	switch DetectProject(dir) {
	case Rust:
		return []Step{clippy(dir)}
	case Node:
		return []Step{{Tool: "eslint", Dir: dir, Name: "npx", Args: []string{"eslint", ".", "--fix"}, OnFailure: Warning, Done: "No issues found"}}
	case Python:
		return []Step{{Tool: "flake8", Dir: dir, Name: "flake8", Args: []string{"."}, OnFailure: Warning, Done: "No issues found"}}
	case Go:
		return []Step{{Tool: "go vet", Dir: dir, Name: "go", Args: []string{"vet", "./..."}, OnFailure: Warning, Done: "No issues found"}}
	}
	return nil
}

// LintProject lints the project in dir.
func (l *Linter) LintProject(dir string) []Result {
	steps := l.ProjectSteps(dir)
	if len(steps) == 0 {
		return []Result{skippedResult("No recognized project type found")}
	}
	return l.r.runAll(steps)
}

// RunStep executes a planned step.
func (l *Linter) RunStep(s Step) Result {
	return l.r.run(s)
}
