package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899")).
		Width(14)

	MetricValue = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Positive = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	Negative = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	Neutral  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
)

// Row renders one label/value line.
func Row(label, value string) string {
	return MetricLabel.Render(label) + " " + MetricValue.Render(value)
}

// Box renders a titled panel around rows.
func Box(title string, rows ...string) string {
	return Panel.Render(Title.Render(title) + "\n" + strings.Join(rows, "\n"))
}

// Signed colors a value by its sign.
func Signed(v float64, text string) string {
	switch {
	case v > 0:
		return Positive.Render(text)
	case v < 0:
		return Negative.Render(text)
	}
	return Neutral.Render(text)
}

func Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}
