package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/constants"
	"github.com/klauern/hookguard/internal/stats"
	"github.com/urfave/cli/v3"
)

// NewStatsCommand inspects recorded session statistics.
func NewStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show session statistics",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Summarize one session",
				ArgsUsage: "<session-id>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("exactly one argument required: <session-id>")
					}
					w := stdout(cmd)
					return showSession(w, statsDir(), cmd.Args().First(), time.Now(), bool(newPainter(w)))
				},
			},
			{
				Name:  "history",
				Usage: "List archived sessions, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   20,
						Usage:   "Maximum number of sessions to show",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return showHistory(stdout(cmd), statsDir(), int(cmd.Int("limit")))
				},
			},
		},
	}
}

func statsDir() string {
	wd, _ := os.Getwd()
	return config.LoadOrDefault(wd).StatsDir()
}

// showSession renders the summary of a session still on disk.
func showSession(w io.Writer, dir, id string, now time.Time, styled bool) error {
	store := stats.NewStore(dir)
	if _, err := os.Stat(store.Path(id)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no statistics recorded for session %s in %s", id, dir)
	}
	sess, err := store.Load(id)
	if err != nil {
		return err
	}
	return sess.Summarize(now).Render(w, styled)
}

// showHistory lists summaries from the archive database.
func showHistory(w io.Writer, dir string, limit int) error {
	path := filepath.Join(dir, constants.HistoryDBFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(w, "No archived sessions.")
		return nil
	}
	archive, err := stats.OpenArchive(path)
	if err != nil {
		return fmt.Errorf("failed to open session archive: %w", err)
	}
	defer func() { _ = archive.Close() }()

	recent, err := archive.Recent(limit)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		fmt.Fprintln(w, "No archived sessions.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-36s  %6s  %4s  %4s  %5s  %s\n", "STARTED", "SESSION", "MIN", "BASH", "RISK", "FILES", "MCP")
	for _, sum := range recent {
		started := "-"
		if !sum.StartTime.IsZero() {
			started = sum.StartTime.Local().Format("2006-01-02 15:04")
		}
		var servers []string
		for _, u := range sum.MCPUsage {
			servers = append(servers, fmt.Sprintf("%s x%d", u.Server, u.Count))
		}
		fmt.Fprintf(w, "%-16s  %-36s  %6d  %4d  %4d  %5d  %s\n",
			started, sum.SessionID, int(sum.Duration.Minutes()), sum.BashCommands,
			sum.Destructive+sum.SystemLevel, sum.FileOperations, strings.Join(servers, ", "))
	}
	return nil
}
