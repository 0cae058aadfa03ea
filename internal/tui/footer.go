package tui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/kvset/internal/formatter"
)

// footerView renders the key hint band pinned to the last line.
func (e *Editor) footerView() string {
	hints := [][2]string{
		{"enter", "set"},
		{"tab", "complete"},
		{"ctrl+z", "undo"},
		{"f1", "help"},
		{"esc", "done"},
		{"ctrl+c", "abort"},
	}

	if e.noColor {
		parts := make([]string, 0, len(hints))
		for _, h := range hints {
			parts = append(parts, h[0]+" "+h[1])
		}
		return " " + formatter.Truncate(strings.Join(parts, "  "), e.width-1)
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("240")).
		Bold(true)
	labelStyle := lipgloss.NewStyle().
		Foreground(e.theme.FooterFG).
		Background(e.theme.FooterBG)

	parts := make([]string, 0, len(hints)*2)
	for _, h := range hints {
		parts = append(parts, keyStyle.Render(h[0]), labelStyle.Render(h[1]))
	}
	line := " " + strings.Join(parts, " ")

	if pad := e.width - lipgloss.Width(line); pad > 0 {
		line += labelStyle.Render(strings.Repeat(" ", pad))
	}
	return line
}
