package tui

import (
	"fmt"
	"strings"

	"raceready/internal/engine"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	primaryColor   = lipgloss.Color("#2563EB") // blue
	secondaryColor = lipgloss.Color("#10B981") // green
	warningColor   = lipgloss.Color("#F59E0B") // amber
	errorColor     = lipgloss.Color("#EF4444") // red
	mutedColor     = lipgloss.Color("#6B7280") // gray
	textColor      = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(textColor).Background(primaryColor).Padding(0, 1).MarginBottom(1)
	navStyle         = lipgloss.NewStyle().Foreground(mutedColor).MarginBottom(1)
	navActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	navInactiveStyle = lipgloss.NewStyle().Foreground(mutedColor)

	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(1, 2)
	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(secondaryColor)

	metricLabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(20)
	metricValueStyle = lipgloss.NewStyle().Bold(true).Foreground(textColor)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	tableRowStyle    = lipgloss.NewStyle().Padding(0, 1)

	statusStyle  = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	successStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)

	barFullStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	barEmptyStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// RenderMetric renders a label/value pair with an optional signed change.
// A leading '+' is shown as a warning since a positive form adjustment
// means slower times.
func RenderMetric(label, value, change string) string {
	changeStyle := helpDescStyle
	switch {
	case strings.HasPrefix(change, "+"):
		changeStyle = warningStyle
	case strings.HasPrefix(change, "-"):
		changeStyle = successStyle
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
		changeStyle.Render(" "+change),
	)
}

// RenderProgressBar renders a 0..1 fraction as an ASCII bar followed by
// the percentage
func RenderProgressBar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var b strings.Builder
	b.WriteString(barFullStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", width-filled)))
	fmt.Fprintf(&b, " %3.0f%%", fraction*100)
	return b.String()
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

func sectionHeader(title string) string {
	const width = 60
	label := "── " + title + " "
	pad := width - lipgloss.Width(label)
	if pad < 0 {
		pad = 0
	}
	return sectionStyle.Render(label + strings.Repeat("─", pad))
}

func confidenceStyle(confidence string) lipgloss.Style {
	switch confidence {
	case engine.ConfidenceHigh:
		return successStyle
	case engine.ConfidenceMedium:
		return warningStyle
	case engine.ConfidenceLow:
		return errorStyle
	default:
		return helpDescStyle
	}
}
