package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("5")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
)

// SummaryRow is one label/value line of the summary panel
type SummaryRow struct {
	Label string
	Value string
}

// Row builds a SummaryRow formatting value with %v
func Row(label string, value interface{}) SummaryRow {
	return SummaryRow{Label: label, Value: fmt.Sprintf("%v", value)}
}

// RenderSummary renders rows as an aligned table inside a bordered panel
func RenderSummary(title string, rows []SummaryRow) string {
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.Label); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, r := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(r.Label))
		lines = append(lines, labelStyle.Render(r.Label)+pad+"  "+valueStyle.Render(r.Value))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// PrintSummary writes the rendered panel to w
func PrintSummary(w io.Writer, title string, rows []SummaryRow) {
	fmt.Fprintln(w, RenderSummary(title, rows))
}
