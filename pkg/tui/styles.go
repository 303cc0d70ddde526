package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // accent
	mintGreen   = lipgloss.Color("#A8E6CF") // progress and success
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	doneStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
