package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Context identifies which part of the UI has focus, for context help
type Context string

const (
	ContextTable        Context = "table"
	ContextSearch       Context = "search"
	ContextDetail       Context = "detail"
	ContextFilter       Context = "filter"
	ContextRecipePicker Context = "recipes"
)

// ContextHelpContent contains compact help content for each context.
// Content should fit on one screen (~20 lines) without scrolling.
var ContextHelpContent = map[Context]string{
	ContextTable:        contextHelpTable,
	ContextSearch:       contextHelpSearch,
	ContextDetail:       contextHelpDetail,
	ContextFilter:       contextHelpFilter,
	ContextRecipePicker: contextHelpRecipePicker,
}

// GetContextHelp returns the help content for a given context.
// Falls back to the table help if the context has no specific content.
func GetContextHelp(ctx Context) string {
	if content, ok := ContextHelpContent[ctx]; ok {
		return content
	}
	return contextHelpTable
}

// RenderContextHelp renders the context-specific help modal.
func RenderContextHelp(ctx Context, theme Theme, width, height int) string {
	content := GetContextHelp(ctx)

	r := theme.Renderer

	modalWidth := 60
	if width > 0 && modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	titleStyle := r.NewStyle().
		Bold(true).
		Foreground(theme.Primary)

	contentStyle := r.NewStyle().
		Foreground(theme.Subtext)

	footerStyle := r.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(content))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Esc or ? to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}

const contextHelpTable = `## Table

**Navigation**
  j/k       Move up/down
  h/l, Tab  Previous/next column
  g/G       Jump to top/bottom
  Enter     Record details
  Click     Select row

**Sort**
  s         Sort by focused column
  Click     Header toggles ▲/▼

**Filter**
  f         Choose values for column
  x         Clear column filter
  X         Clear all filters and search
  /         Search every column
  r         Apply a recipe
  R         Reload data`

const contextHelpSearch = `## Search

Type to filter rows containing the text in
any column. Matching ignores case.

  Enter     Keep the search
  Esc       Clear the search`

const contextHelpDetail = `## Detail View

  j/k       Scroll content
  y         Copy the service link
  Esc       Return to table`

const contextHelpFilter = `## Column Filter

Rows matching any checked value are kept.
Filters on different columns all apply.

  Space     Toggle value
  Enter     Apply
  Esc       Cancel`

const contextHelpRecipePicker = `## Recipes

A recipe sets filters, search and sort at once.
Define your own in .vt/recipes.yaml.

  j/k       Move selection
  Enter     Apply recipe
  Esc       Cancel`
