package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and base styles of the terminal UI
type Theme struct {
	Renderer *lipgloss.Renderer

	Text      lipgloss.AdaptiveColor
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Link      lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Base lipgloss.Style
}

// DefaultTheme returns the standard palette bound to r
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Text:      lipgloss.AdaptiveColor{Light: "#000000", Dark: "#f8f8f2"},
		Primary:   lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8be9fd"},
		Secondary: lipgloss.AdaptiveColor{Light: "#5a3e9b", Dark: "#bd93f9"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#bfbfbf"},
		Muted:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6272a4"},
		Border:    lipgloss.AdaptiveColor{Light: "#cccccc", Dark: "#44475a"},
		Highlight: lipgloss.AdaptiveColor{Light: "#e6f2ff", Dark: "#44475a"},
		Link:      lipgloss.AdaptiveColor{Light: "#0b5fff", Dark: "#50fa7b"},
		Error:     lipgloss.AdaptiveColor{Light: "#b00020", Dark: "#ff5555"},
	}
	t.Base = r.NewStyle().Foreground(t.Text)
	return t
}
