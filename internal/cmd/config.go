package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/urfave/cli/v3"
)

// NewConfigCommand manages the hookguard config file.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage hookguard configuration",
		Description: `Project config lives in .claude/hooks/hookguard.{yml,yaml,toml,json} and
takes precedence over the global config in $XDG_CONFIG_HOME/hookguard.`,
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "global",
						Aliases: []string{"g"},
						Usage:   "Write the global config instead of the project config",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "yaml",
						Usage:   "File format: yaml, toml or json",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					wd, err := os.Getwd()
					if err != nil {
						return fmt.Errorf("failed to get working directory: %w", err)
					}
					path, err := configPath(cmd.Bool("global"), wd, cmd.String("format"))
					if err != nil {
						return err
					}
					return initConfig(stdout(cmd), path, cmd.Bool("force"))
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "yaml",
						Usage:   "Output format: yaml, toml or json",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					wd, _ := os.Getwd()
					cfg, err := config.Load(wd)
					if err != nil {
						return err
					}
					return showConfig(stdout(cmd), cfg, cmd.String("format"))
				},
			},
			{
				Name:  "path",
				Usage: "List config file locations in precedence order",
				Action: func(_ context.Context, cmd *cli.Command) error {
					wd, _ := os.Getwd()
					w := stdout(cmd)
					for _, p := range config.CandidatePaths(wd) {
						marker := " "
						if _, err := os.Stat(p); err == nil {
							marker = "*"
						}
						fmt.Fprintf(w, "%s %s\n", marker, p)
					}
					return nil
				},
			},
		},
	}
}

// configPath returns where `config init` writes for the given scope.
func configPath(global bool, workDir, format string) (string, error) {
	ext := "." + format
	if format == "yaml" {
		ext = ".yml"
	}
	if _, err := config.Encode(config.Default(), format); err != nil {
		return "", fmt.Errorf("invalid --format '%s'. Valid: yaml, toml, json", format)
	}
	if global {
		return filepath.Join(config.XDGConfigDir(), "config"+ext), nil
	}
	return filepath.Join(constants.GetConfigDir(workDir), constants.ConfigBaseName+ext), nil
}

func initConfig(w io.Writer, path string, force bool) error {
	if err := config.WriteFile(path, config.Default(), force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}
		return err
	}
	fmt.Fprintf(w, "✅ Wrote default configuration to %s\n", path)
	return nil
}

func showConfig(w io.Writer, cfg *config.Config, format string) error {
	data, err := config.Encode(cfg, format)
	if err != nil {
		return err
	}
	source := cfg.Source
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(w, "# source: %s\n", source)
	_, err = w.Write(data)
	return err
}
