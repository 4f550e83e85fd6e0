package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/core"
	"github.com/klauern/hookguard/internal/prompt"
	"github.com/urfave/cli/v3"
)

// Project context modes for `evaluate --context`.
const (
	contextAuto = "auto"
	contextYes  = "yes"
	contextNo   = "no"
)

// NewEvaluateCommand scores a prompt the way the prompt hook does.
func NewEvaluateCommand() *cli.Command {
	return &cli.Command{
		Name:      "evaluate",
		Aliases:   []string{"eval"},
		Usage:     "Score a prompt for quality",
		ArgsUsage: "[prompt...]",
		Description: `Score a prompt from 0 to 100 and show which rules deducted points.
The prompt is read from stdin when no arguments are given. Fails when the
score is below the threshold.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "Minimum passing score (defaults to prompt.threshold from config)",
			},
			&cli.StringFlag{
				Name:  "context",
				Value: contextAuto,
				Usage: "Project context: auto (look for project markers), yes or no",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
			&cli.BoolFlag{
				Name:  "rules",
				Usage: "List the active scoring rules and exit",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			wd, _ := os.Getwd()
			cfg := config.LoadOrDefault(wd)
			evaluator, err := prompt.NewEvaluatorWithout(cfg.Prompt.DisabledRules)
			if err != nil {
				return fmt.Errorf("invalid prompt.disabledRules in config: %w", err)
			}
			w := stdout(cmd)
			if cmd.Bool("rules") {
				return listRules(w, evaluator.Rules())
			}

			text, err := promptText(cmd)
			if err != nil {
				return err
			}
			hasContext, err := projectContext(cmd.String("context"), wd)
			if err != nil {
				return err
			}
			threshold := int(cmd.Int("threshold"))
			if !cmd.IsSet("threshold") {
				threshold = cfg.Prompt.Threshold
			}

			res := evaluator.Analyze(text, hasContext)
			if cmd.Bool("json") {
				err = core.WriteJSON(w, evaluation{Result: res, Threshold: threshold, Passed: res.Slash || res.Passes(threshold)})
			} else {
				err = renderEvaluation(w, newPainter(w), res, threshold)
			}
			if err != nil {
				return err
			}
			if !res.Slash && !res.Passes(threshold) {
				return fmt.Errorf("prompt scored %d, below the threshold of %d", res.Score, threshold)
			}
			return nil
		},
	}
}

type evaluation struct {
	prompt.Result
	Threshold int  `json:"threshold"`
	Passed    bool `json:"passed"`
}

func promptText(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return strings.Join(cmd.Args().Slice(), " "), nil
	}
	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no prompt given: pass it as arguments or on stdin")
	}
	return text, nil
}

func projectContext(mode, dir string) (bool, error) {
	switch mode {
	case contextAuto, "":
		return prompt.HasProjectMarker(dir, nil), nil
	case contextYes:
		return true, nil
	case contextNo:
		return false, nil
	}
	return false, fmt.Errorf("invalid --context '%s'. Valid: auto, yes, no", mode)
}

func renderEvaluation(w io.Writer, p painter, res prompt.Result, threshold int) error {
	var b strings.Builder
	switch {
	case res.Slash:
		fmt.Fprintf(&b, "%s\n", p.paint(passStyle, "✅ Slash command: not scored"))
	case res.Passes(threshold):
		fmt.Fprintf(&b, "%s\n", p.paint(passStyle, fmt.Sprintf("✅ Prompt quality score: %d/100 (threshold %d)", res.Score, threshold)))
	default:
		fmt.Fprintf(&b, "%s\n", p.paint(failStyle, fmt.Sprintf("❌ Prompt quality score: %d/100 (threshold %d)", res.Score, threshold)))
	}
	if res.Blocked && len(res.Hits) > 0 {
		last := res.Hits[len(res.Hits)-1]
		fmt.Fprintf(&b, "  %s\n", p.paint(failStyle, "🚫 Blocked by "+last.Rule))
	}
	for _, h := range res.Hits {
		if h.Deduction == 0 {
			continue
		}
		count := ""
		if h.Count > 1 {
			count = p.paint(dimStyle, fmt.Sprintf(" (x%d)", h.Count))
		}
		fmt.Fprintf(&b, "  %s %s%s\n", p.paint(warnStyle, fmt.Sprintf("-%d", h.Deduction)), h.Rule, count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// listRules prints the scoring table in evaluation order.
func listRules(w io.Writer, rules []prompt.Rule) error {
	var b strings.Builder
	for i, r := range rules {
		effect := fmt.Sprintf("-%d", r.Penalty)
		switch {
		case r.Block:
			effect = "block (score 0)"
		case r.Cumulative:
			effect += " per term"
		}
		fmt.Fprintf(&b, "%2d. %-20s %s\n", i+1, r.Name, effect)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
