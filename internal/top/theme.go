package top

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary = lipgloss.Color("#06B6D4")
	colorLow     = lipgloss.Color("#22C55E")
	colorMedium  = lipgloss.Color("#EAB308")
	colorHigh    = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleHeader = lipgloss.NewStyle().Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorMuted)
	styleFooter = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
	styleError  = lipgloss.NewStyle().Foreground(colorHigh)
)

// usageStyle colors a bar by how busy the thread is.
func usageStyle(usage int) lipgloss.Style {
	switch {
	case usage >= 50:
		return lipgloss.NewStyle().Foreground(colorHigh)
	case usage >= 10:
		return lipgloss.NewStyle().Foreground(colorMedium)
	default:
		return lipgloss.NewStyle().Foreground(colorLow)
	}
}
