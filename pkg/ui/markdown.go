package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer renders the record detail pane with glamour
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	theme    *Theme
	useTheme bool
}

// NewMarkdownRenderer creates a renderer with glamour's automatic style
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width}
	mr.rebuild()
	return mr
}

// NewMarkdownRendererWithTheme creates a renderer whose colors follow theme
func NewMarkdownRendererWithTheme(width int, theme Theme) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width, theme: &theme, useTheme: true}
	mr.rebuild()
	return mr
}

func (mr *MarkdownRenderer) rebuild() {
	var opt glamour.TermRendererOption
	if mr.useTheme && mr.theme != nil {
		opt = glamour.WithStyles(buildStyleFromTheme(*mr.theme, mr.IsDarkMode()))
	} else {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(mr.width))
	if err != nil {
		mr.renderer = nil
		return
	}
	mr.renderer = r
}

// Render renders markdown. Without a renderer the input is returned as is.
func (mr *MarkdownRenderer) Render(md string) (string, error) {
	if mr.renderer == nil {
		return md, nil
	}
	return mr.renderer.Render(md)
}

// SetWidth rebuilds the renderer for a new wrap width
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == mr.width {
		return
	}
	mr.width = width
	mr.rebuild()
}

// SetWidthWithTheme rebuilds the renderer for a new width and theme
func (mr *MarkdownRenderer) SetWidthWithTheme(width int, theme Theme) {
	if width > 0 {
		mr.width = width
	}
	mr.theme = &theme
	mr.useTheme = true
	mr.rebuild()
}

// IsDarkMode reports whether the terminal background is dark
func (mr *MarkdownRenderer) IsDarkMode() bool {
	if mr.theme != nil && mr.theme.Renderer != nil {
		return mr.theme.Renderer.HasDarkBackground()
	}
	return lipgloss.HasDarkBackground()
}

func extractHex(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

func buildStyleFromTheme(theme Theme, dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	if dark {
		cfg = styles.DarkStyleConfig
	}

	text := extractHex(theme.Text, dark)
	primary := extractHex(theme.Primary, dark)
	secondary := extractHex(theme.Secondary, dark)
	link := extractHex(theme.Link, dark)

	cfg.Document.Color = &text
	cfg.H1.Color = &primary
	cfg.H2.Color = &primary
	cfg.H3.Color = &secondary
	cfg.Link.Color = &link
	cfg.LinkText.Color = &link
	return cfg
}
