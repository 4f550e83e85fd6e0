package automation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Formatter rewrites files in place with the language's standard formatter.
type Formatter struct {
	r *toolRunner
}

// NewFormatter returns a Formatter that runs tools through executor.
func NewFormatter(executor Executor, opts ...Option) *Formatter {
	return &Formatter{r: newToolRunner(executor, opts)}
}

// FileSteps plans the formatter invocations for a single file.
func (f *Formatter) FileSteps(path string) []Step {
	if rule, ok := f.r.matchRule(path); ok && len(rule.Format) > 0 {
		return ruleSteps(rule.Format, path, Error, fileLabel(path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rs":
		if root, ok := FindUp(path, "Cargo.toml"); ok {
			return []Step{{Tool: "cargo fmt", Dir: root, Name: "cargo", Args: []string{"fmt", "--", path}, OnFailure: Error, Done: fileLabel(path)}}
		}
		return []Step{{Tool: "rustfmt", Name: "rustfmt", Args: []string{path}, OnFailure: Error, Done: fileLabel(path)}}
	case ".go":
		if f.r.available("gofumpt") {
			return []Step{{Tool: "gofumpt", Name: "gofumpt", Args: []string{"-w", path}, OnFailure: Error, Done: fileLabel(path)}}
		}
		return []Step{{Tool: "gofmt", Name: "gofmt", Args: []string{"-w", path}, OnFailure: Error, Done: fileLabel(path)}}
	case ".js", ".jsx", ".ts", ".tsx", ".yml", ".yaml":
		return []Step{f.prettier(filepath.Dir(path), path)}
	case ".py":
		return []Step{{Tool: "black", Name: "black", Args: []string{path}, OnFailure: Error, Done: fileLabel(path)}}
	}
	return nil
}

// FormatFile formats path. Unsupported file types yield a single Skipped result.
func (f *Formatter) FormatFile(path string) []Result {
	steps := f.FileSteps(path)
	if len(steps) == 0 {
		return []Result{skippedResult(fmt.Sprintf("Unsupported file type: %s", path))}
	}
	return f.r.runAll(steps)
}

// ProjectSteps plans a whole-project format for the project in dir.
func (f *Formatter) ProjectSteps(dir string) []Step {
	switch DetectProject(dir) {
	case Rust:
		return []Step{{Tool: "cargo fmt", Dir: dir, Name: "cargo", Args: []string{"fmt"}, OnFailure: Error, Done: "Rust project formatted"}}
	case Node:
		return []Step{f.prettier(dir, ".")}
	case Python:
		return []Step{{Tool: "black", Dir: dir, Name: "black", Args: []string{"."}, OnFailure: Error, Done: "Python project formatted"}}
	case Go:
		if f.r.available("gofumpt") {
			return []Step{{Tool: "gofumpt", Dir: dir, Name: "gofumpt", Args: []string{"-w", "."}, OnFailure: Error, Done: "Go project formatted"}}
		}
		return []Step{{Tool: "gofmt", Dir: dir, Name: "gofmt", Args: []string{"-w", "."}, OnFailure: Error, Done: "Go project formatted"}}
	}
	return nil
}

// FormatProject formats the project in dir.
func (f *Formatter) FormatProject(dir string) []Result {
	steps := f.ProjectSteps(dir)
	if len(steps) == 0 {
		return []Result{skippedResult("No recognized project type found")}
	}
	return f.r.runAll(steps)
}

// RunStep executes a planned step.
func (f *Formatter) RunStep(s Step) Result {
	return f.r.run(s)
}

// prettier prefers a global install and falls back to npx.
func (f *Formatter) prettier(dir, target string) Step {
	done := "Formatted with prettier"
	if f.r.available("prettier") {
		return Step{Tool: "prettier", Dir: dir, Name: "prettier", Args: []string{"--write", target}, OnFailure: Error, Done: done}
	}
	return Step{Tool: "prettier", Dir: dir, Name: "npx", Args: []string{"prettier", "--write", target}, OnFailure: Error, Done: done}
}
