package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// filterForm is the multi-select control for one column's filter values.
type filterForm struct {
	column   string
	title    string
	form     *huh.Form
	selected *[]string
}

func newFilterForm(spec model.ColumnSpec, options []view.Option, current []string, width int) *filterForm {
	selected := slices.Clone(current)
	f := &filterForm{
		column:   spec.Key,
		title:    spec.Title,
		selected: &selected,
	}

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value).Selected(slices.Contains(current, o.Value))
	}

	field := huh.NewMultiSelect[string]().
		Title("Filter by " + spec.Title).
		Description("space toggles, enter applies, esc cancels").
		Options(opts...).
		Filterable(len(opts) > 8).
		Value(f.selected)

	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))

	f.form = huh.NewForm(huh.NewGroup(field)).
		WithKeyMap(km).
		WithShowHelp(true).
		WithWidth(formWidth(width))
	return f
}

func formWidth(screen int) int {
	w := 50
	if screen > 0 && screen-8 < w {
		w = screen - 8
	}
	return max(w, 24)
}

func (f *filterForm) Init() tea.Cmd {
	return f.form.Init()
}

// Update forwards msg to the form
func (f *filterForm) Update(msg tea.Msg) tea.Cmd {
	next, cmd := f.form.Update(msg)
	if form, ok := next.(*huh.Form); ok {
		f.form = form
	}
	return cmd
}

func (f *filterForm) Done() bool {
	return f.form.State == huh.StateCompleted
}

func (f *filterForm) Aborted() bool {
	return f.form.State == huh.StateAborted
}

// Values returns the submitted selection
func (f *filterForm) Values() []string {
	return slices.Clone(*f.selected)
}

func (f *filterForm) View() string {
	return f.form.View()
}
