package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// painter renders with st only when writing to a terminal.
type painter bool

func newPainter(w io.Writer) painter {
	f, ok := w.(*os.File)
	return painter(ok && term.IsTerminal(int(f.Fd())))
}

func (p painter) paint(st lipgloss.Style, s string) string {
	if !p {
		return s
	}
	return st.Render(s)
}
