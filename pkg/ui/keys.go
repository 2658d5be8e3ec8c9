package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Left       key.Binding
	Right      key.Binding
	Sort       key.Binding
	Filter     key.Binding
	Clear      key.Binding
	ClearAll   key.Binding
	Search     key.Binding
	Open       key.Binding
	Copy       key.Binding
	Recipes    key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	ReloadData key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Left:       key.NewBinding(key.WithKeys("h", "left", "shift+tab"), key.WithHelp("←/h", "prev column")),
		Right:      key.NewBinding(key.WithKeys("l", "right", "tab"), key.WithHelp("→/l", "next column")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
		Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear column filter")),
		ClearAll:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
		Recipes:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recipes")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		ReloadData: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Filter, k.Search, k.Open, k.Recipes, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Left, k.Right, k.Sort, k.Filter, k.Clear, k.ClearAll},
		{k.Search, k.Open, k.Copy, k.Recipes, k.ReloadData},
		{k.Help, k.Back, k.Quit},
	}
}
