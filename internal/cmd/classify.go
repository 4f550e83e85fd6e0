package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauern/hookguard/internal/command"
	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/core"
	"github.com/urfave/cli/v3"
)

// NewClassifyCommand reports the security level of a shell command.
func NewClassifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify a shell command as Safe, SystemLevel or Destructive",
		ArgsUsage: "<command...>",
		Description: `Classify a shell command with the same patterns the security hook uses,
including extra patterns from the hookguard config.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the validation as JSON",
			},
			&cli.BoolFlag{
				Name:    "explain",
				Aliases: []string{"x"},
				Usage:   "Show which patterns matched",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("a command to classify is required")
			}
			line := strings.Join(cmd.Args().Slice(), " ")

			wd, _ := os.Getwd()
			sec := config.LoadOrDefault(wd).Security
			v, err := command.NewValidatorWithPatterns(sec.ExtraDestructive, sec.ExtraSystemLevel)
			if err != nil {
				return fmt.Errorf("invalid security patterns in config: %w", err)
			}

			w := stdout(cmd)
			c := classification{Validation: v.Validate(line), Matched: v.Explain(line)}
			if cmd.Bool("json") {
				return core.WriteJSON(w, c)
			}
			if !cmd.Bool("explain") {
				c.Matched = nil
			}
			return renderValidation(w, newPainter(w), c)
		},
	}
}

type classification struct {
	command.Validation
	Matched []command.PatternMatch `json:"matched_patterns,omitempty"`
}

func renderValidation(w io.Writer, p painter, c classification) error {
	v := c.Validation
	var b strings.Builder
	label := fmt.Sprintf("%s %s", v.Level.Symbol(), v.Level)
	switch v.Level {
	case command.Destructive:
		label = p.paint(failStyle, label)
	case command.SystemLevel:
		label = p.paint(warnStyle, label)
	default:
		label = p.paint(passStyle, label)
	}
	fmt.Fprintf(&b, "%s: %s\n", label, v.Command)
	for _, warning := range v.Warnings {
		fmt.Fprintf(&b, "   ⚠️  %s\n", warning)
	}
	for _, m := range c.Matched {
		fmt.Fprintf(&b, "   %s %s\n", p.paint(dimStyle, m.Set+":"), m.Pattern)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
