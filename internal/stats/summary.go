package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Summary is the aggregate view of a Session.
type Summary struct {
	SessionID      string
	StartTime      time.Time
	Duration       time.Duration
	BashCommands   int
	Destructive    int
	SystemLevel    int
	FileOperations int
	Formatted      int
	Linted         int
	MCPUsage       []ServerUsage
	InfoSessions   int
}

// ServerUsage is the call count for one MCP server.
type ServerUsage struct {
	Server string
	Count  int
}

// Summarize aggregates s as of now.
func (s *Session) Summarize(now time.Time) Summary {
	sum := Summary{
		SessionID:      s.SessionID,
		StartTime:      s.StartTime,
		BashCommands:   len(s.BashCommands),
		FileOperations: len(s.FileOperations),
		InfoSessions:   len(s.InfoSessions),
	}
	if !s.StartTime.IsZero() && now.After(s.StartTime) {
		sum.Duration = now.Sub(s.StartTime)
	}
	for _, c := range s.BashCommands {
		if c.IsDestructive {
			sum.Destructive++
		}
		if c.IsSystemLevel {
			sum.SystemLevel++
		}
	}
	for _, op := range s.FileOperations {
		if op.FormatApplied {
			sum.Formatted++
		}
		if op.LintApplied {
			sum.Linted++
		}
	}
	for server, n := range s.MCPUsage {
		sum.MCPUsage = append(sum.MCPUsage, ServerUsage{Server: server, Count: n})
	}
	sort.Slice(sum.MCPUsage, func(i, j int) bool {
		if sum.MCPUsage[i].Count != sum.MCPUsage[j].Count {
			return sum.MCPUsage[i].Count > sum.MCPUsage[j].Count
		}
		return sum.MCPUsage[i].Server < sum.MCPUsage[j].Server
	})
	return sum
}

var (
	colorPurple = lipgloss.Color("#A855F7")
	colorRed    = lipgloss.Color("#EF4444")
	colorYellow = lipgloss.Color("#EAB308")
	colorCyan   = lipgloss.Color("#06B6D4")
	colorDim    = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	serverStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Render writes the summary. When styled is false the output is plain
// text suitable for hook stdout.
func (sum Summary) Render(w io.Writer, styled bool) error {
	paint := func(st lipgloss.Style, s string) string {
		if !styled {
			return s
		}
		return st.Render(s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", paint(titleStyle, fmt.Sprintf("📊 Session Summary (%s)", sum.SessionID)))
	if !sum.StartTime.IsZero() {
		fmt.Fprintf(&b, "  ⏱️  Duration: %d minutes\n", int(sum.Duration.Minutes()))
	}
	if sum.BashCommands > 0 {
		fmt.Fprintf(&b, "  💻 Bash Commands: %d\n", sum.BashCommands)
		if sum.Destructive > 0 {
			fmt.Fprintf(&b, "    %s\n", paint(dangerStyle, fmt.Sprintf("⚠️  Destructive commands: %d", sum.Destructive)))
		}
		if sum.SystemLevel > 0 {
			fmt.Fprintf(&b, "    %s\n", paint(warnStyle, fmt.Sprintf("🔧 System-level commands: %d", sum.SystemLevel)))
		}
	}
	if sum.FileOperations > 0 {
		fmt.Fprintf(&b, "  📝 File Operations: %d\n", sum.FileOperations)
		if sum.Formatted > 0 {
			fmt.Fprintf(&b, "    ✨ Auto-formatted: %d\n", sum.Formatted)
		}
		if sum.Linted > 0 {
			fmt.Fprintf(&b, "    🔍 Auto-linted: %d\n", sum.Linted)
		}
	}
	if len(sum.MCPUsage) > 0 {
		b.WriteString("  🔌 MCP Usage:\n")
		for _, u := range sum.MCPUsage {
			fmt.Fprintf(&b, "    %s %s\n", paint(serverStyle, u.Server), paint(dimStyle, fmt.Sprintf("x%d", u.Count)))
		}
	}
	if sum.InfoSessions > 0 {
		fmt.Fprintf(&b, "  📚 Information Sessions: %d\n", sum.InfoSessions)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
