package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/voltable/pkg/recipe"
)

// RecipePickerModel provides a quick recipe selection modal
type RecipePickerModel struct {
	recipes       []recipe.Recipe
	current       string // name of the recipe currently applied
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewRecipePickerModel creates a new recipe picker with current highlighted
func NewRecipePickerModel(recipes []recipe.Recipe, current string, theme Theme) RecipePickerModel {
	selectedIdx := 0
	for i, r := range recipes {
		if r.Name == current {
			selectedIdx = i
			break
		}
	}
	return RecipePickerModel{
		recipes:       recipes,
		current:       current,
		selectedIndex: selectedIdx,
		theme:         theme,
	}
}

// SetSize updates the picker dimensions
func (m *RecipePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// MoveUp moves selection up
func (m *RecipePickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down
func (m *RecipePickerModel) MoveDown() {
	if m.selectedIndex < len(m.recipes)-1 {
		m.selectedIndex++
	}
}

// SelectedRecipe returns the highlighted recipe
func (m *RecipePickerModel) SelectedRecipe() (recipe.Recipe, bool) {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.recipes) {
		return m.recipes[m.selectedIndex], true
	}
	return recipe.Recipe{}, false
}

// View renders the recipe picker overlay
func (m *RecipePickerModel) View() string {
	if m.width == 0 {
		m.width = 60
	}
	if m.height == 0 {
		m.height = 20
	}

	t := m.theme

	boxWidth := 56
	if m.width < boxWidth+10 {
		boxWidth = m.width - 10
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	var lines []string

	titleStyle := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true)
	lines = append(lines, titleStyle.Render("Recipes"))
	lines = append(lines, "")

	if len(m.recipes) == 0 {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Muted).Render("No recipes defined"))
	}

	descStyle := t.Renderer.NewStyle().Foreground(t.Subtext)
	for i, r := range m.recipes {
		isSelected := i == m.selectedIndex

		itemStyle := t.Renderer.NewStyle()
		if isSelected {
			itemStyle = itemStyle.Foreground(t.Primary).Bold(true)
		} else {
			itemStyle = itemStyle.Foreground(t.Base.GetForeground())
		}

		prefix := "  "
		if isSelected {
			prefix = "> "
		}

		suffix := ""
		if r.Name == m.current {
			suffix = " " + t.Renderer.NewStyle().Foreground(t.Secondary).Render("✓")
		}

		line := itemStyle.Render(prefix+r.Name) + suffix
		if r.Description != "" {
			line += "  " + descStyle.Render(truncateDesc(r.Description, boxWidth-len(r.Name)-10))
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	footerStyle := t.Renderer.NewStyle().
		Foreground(t.Secondary).
		Italic(true)
	lines = append(lines, footerStyle.Render("j/k: navigate | enter: apply | esc: cancel"))

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}

func truncateDesc(s string, n int) string {
	if n < 8 {
		n = 8
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
