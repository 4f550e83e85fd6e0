package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauern/hookguard/internal/automation"
	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/core"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// NewFormatCommand formats (and optionally lints) a whole project.
func NewFormatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Aliases:   []string{"fmt"},
		Usage:     "Format a project with its language's formatter",
		ArgsUsage: "[dir]",
		Description: `Detect the project type in dir (default: the current directory) and run
its formatter: cargo fmt, prettier, black or gofumpt/gofmt. With --lint the
project linter runs afterwards.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "lint",
				Usage: "Also run the project linter",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = "."
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid directory %s: %w", dir, err)
			}
			if info, err := os.Stat(abs); err != nil || !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			rules := config.LoadOrDefault(abs).Automation.Rules
			results := runProjectAutomation(stdout(cmd), stderr(cmd), abs, cmd.Bool("lint"),
				&core.RealCommandExecutor{}, automation.WithRules(rules))
			if automation.HasErrors(results) {
				return fmt.Errorf("formatting failed in %s", abs)
			}
			return nil
		},
	}
}

// runProjectAutomation runs the planned format and lint steps for dir with
// a progress bar on errw, then prints each result on w.
func runProjectAutomation(w, errw io.Writer, dir string, lint bool, exec automation.Executor, opts ...automation.Option) []automation.Result {
	formatter := automation.NewFormatter(exec, opts...)
	linter := automation.NewLinter(exec, opts...)

	type planned struct {
		step automation.Step
		run  func(automation.Step) automation.Result
	}
	var plan []planned
	for _, s := range formatter.ProjectSteps(dir) {
		plan = append(plan, planned{s, formatter.RunStep})
	}
	if lint {
		for _, s := range linter.ProjectSteps(dir) {
			plan = append(plan, planned{s, linter.RunStep})
		}
	}

	project := automation.DetectProject(dir)
	if len(plan) == 0 {
		fmt.Fprintf(w, "No recognized project type found in %s\n", dir)
		return nil
	}
	fmt.Fprintf(w, "📦 %s project: %s\n", project, dir)

	bar := progressbar.NewOptions(len(plan),
		progressbar.OptionSetWriter(errw),
		progressbar.OptionSetDescription("Running tools..."),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	results := make([]automation.Result, 0, len(plan))
	for _, p := range plan {
		bar.Describe(p.step.Tool)
		results = append(results, p.run(p.step))
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r)
	}
	return results
}
