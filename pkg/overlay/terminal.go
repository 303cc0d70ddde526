package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	mintGreen = lipgloss.Color("#A8E6CF")
	skyBlue   = lipgloss.Color("#2196F3")
	amber     = lipgloss.Color("#FF9800")
	mutedGray = lipgloss.Color("#6B7280")

	courseStyle  = lipgloss.NewStyle().Bold(true)
	percentStyle = lipgloss.NewStyle().Foreground(skyBlue).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(mintGreen).Bold(true)
	waitStyle    = lipgloss.NewStyle().Foreground(amber)
	dimStyle     = lipgloss.NewStyle().Foreground(mutedGray)
	barFill      = lipgloss.NewStyle().Foreground(mintGreen)
	barTrack     = lipgloss.NewStyle().Foreground(mutedGray)
)

// barCells is the width of the terminal progress bar.
const barCells = 20

// StatusLine renders v as one styled terminal line.
func StatusLine(v View) string {
	switch v.Mode {
	case ModeAllComplete:
		return doneStyle.Render(fmt.Sprintf("✔ all lessons complete (%d)", v.Count))
	case ModeLoading:
		return waitStyle.Render("… waiting for study time") + " " + dimStyle.Render(v.Course)
	}

	parts := []string{
		dimStyle.Render(fmt.Sprintf("[%d/%d]", v.Position, v.Count)),
		courseStyle.Render(v.Course),
		fmt.Sprintf("%s/%s", v.Studied, v.Total),
		Bar(v.BarWidth(), barCells),
		percentStyle.Render(fmt.Sprintf("%3d%%", v.Percent)),
	}
	if v.Switching() {
		parts = append(parts, waitStyle.Render("→ next"))
	}
	return strings.Join(parts, " ")
}

// Bar draws a fixed-width block bar for percent (0..100).
func Bar(percent, cells int) string {
	filled := percent * cells / 100
	if filled > cells {
		filled = cells
	}
	if filled < 0 {
		filled = 0
	}
	return barFill.Render(strings.Repeat("█", filled)) + barTrack.Render(strings.Repeat("░", cells-filled))
}
