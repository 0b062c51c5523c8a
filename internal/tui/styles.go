package tui

import "github.com/charmbracelet/lipgloss"

// Palette follows the map defaults: the subunit fill for chrome, the
// highlight fill for the popup.
var (
	textFg    = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	mutedFg   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	fillFg    = lipgloss.Color("#ABDDA4")
	highlight = lipgloss.Color("#FC8D59")
	popupBg   = lipgloss.Color("#1B1F23")
)

var (
	appStyle   = lipgloss.NewStyle().Foreground(textFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(fillFg).Padding(0, 1)
	popupStyle = boxStyle.BorderForeground(highlight).Background(popupBg)
	titleStyle = lipgloss.NewStyle().Foreground(fillFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(mutedFg)
)
