package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type styles struct {
	panel     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	recording lipgloss.Style
	errText   lipgloss.Style
	graph     lipgloss.Style
	help      lipgloss.Style
	button    lipgloss.Style
	popup     lipgloss.Style
}

func stylesFor(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Secondary).
			Padding(0, 2).
			Width(panelWidth),
		header:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		running:   lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:    lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		recording: lipgloss.NewStyle().Foreground(t.Error).Bold(true).Blink(true),
		errText:   lipgloss.NewStyle().Foreground(t.Error),
		graph:     lipgloss.NewStyle().Foreground(t.Primary),
		help:      lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		button:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Reverse(true),
		popup:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1),
	}
}

// Swatch renders a small block in the given colour.
func Swatch(c colorful.Color) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Clamped().Hex())).Render("●")
}

// ProgressBar renders a fill bar for a fraction in [0, 1].
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
