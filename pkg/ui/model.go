// Package ui is the interactive terminal table for browsing opportunities.
package ui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/recipe"
	"github.com/vanderheijden86/voltable/pkg/view"
)

type mode int

const (
	modeTable mode = iota
	modeSearch
	modeDetail
	modeFilter
	modeRecipes
	modeHelp
)

func (m mode) String() string {
	switch m {
	case modeSearch:
		return "search"
	case modeDetail:
		return "detail"
	case modeFilter:
		return "filter"
	case modeRecipes:
		return "recipes"
	case modeHelp:
		return "help"
	}
	return "table"
}

// Default size used before the first WindowSizeMsg
const (
	defaultWidth  = 120
	defaultHeight = 30
)

// Options configures a Model
type Options struct {
	Title      string
	Source     string // CSV path or URL; used for R reloads
	State      view.State
	Recipes    []recipe.Recipe
	RecipeName string // recipe that produced State, if any
	LoadErr    error  // initial load failure, shown in the title bar
	Logger     *slog.Logger
	Theme      *Theme
	CopyFunc   func(string) error // defaults to the system clipboard
}

// Model is the bubbletea model of the table browser. All view state changes
// go through view.State and the Materializer.
type Model struct {
	ds     *model.Dataset
	cols   model.Columns
	mat    *view.Materializer
	state  view.State
	view   view.View
	widths []int

	title      string
	source     string
	loadErr    error
	recipeName string
	recipes    []recipe.Recipe
	logger     *slog.Logger

	theme      Theme
	keys       keyMap
	help       help.Model
	search     textinput.Model
	detail     viewport.Model
	markdown   *MarkdownRenderer
	picker     RecipePickerModel
	filterForm *filterForm

	mode     mode
	helpFrom mode
	cursor   int
	offset   int
	colFocus int
	firstCol int
	width    int
	height   int
	ready    bool
	status   string
	copyFn   func(string) error
}

// NewModel creates the table browser over ds
func NewModel(ds *model.Dataset, opts Options) Model {
	if ds == nil {
		ds = model.EmptyDataset()
	}
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	copyFn := opts.CopyFunc
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search every column"
	search.SetValue(opts.State.Query)

	m := Model{
		title:      opts.Title,
		source:     opts.Source,
		loadErr:    opts.LoadErr,
		recipeName: opts.RecipeName,
		recipes:    opts.Recipes,
		logger:     logger,
		theme:      theme,
		keys:       defaultKeyMap(),
		help:       help.New(),
		search:     search,
		detail:     viewport.New(defaultWidth, defaultHeight-2),
		markdown:   NewMarkdownRendererWithTheme(defaultWidth-4, theme),
		state:      opts.State,
		width:      defaultWidth,
		height:     defaultHeight,
		copyFn:     copyFn,
	}
	if m.title == "" {
		m.title = "Volunteer Opportunities"
	}
	m.setDataset(ds)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.mode == modeFilter && m.filterForm != nil {
			return m, m.filterForm.Update(msg)
		}
		return m, nil

	case DatasetReadyMsg:
		m.setDataset(msg.Dataset)
		m.loadErr = nil
		m.status = fmt.Sprintf("Reloaded %d opportunities", msg.Dataset.Len())
		return m, nil

	case DatasetErrorMsg:
		m.status = "Reload failed: " + msg.Err.Error()
		m.logger.Warn("reload failed", "err", msg.Err)
		return m, nil
	}

	if m.mode == modeFilter && m.filterForm != nil {
		return m.updateFilterForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		if m.mode == modeTable {
			return m.handleMouse(msg)
		}
		if m.mode == modeDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeDetail:
			return m.updateDetail(msg)
		case modeRecipes:
			return m.updateRecipes(msg)
		case modeHelp:
			if key.Matches(msg, m.keys.Back, m.keys.Help, m.keys.Quit) {
				m.mode = m.helpFrom
			}
			return m, nil
		default:
			return m.updateTable(msg)
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.view.Len())
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.view.Len())
	case key.Matches(msg, m.keys.Left):
		m.focusColumn(m.colFocus - 1)
	case key.Matches(msg, m.keys.Right):
		m.focusColumn(m.colFocus + 1)
	case key.Matches(msg, m.keys.Sort):
		m.toggleSort(m.colFocus)
	case key.Matches(msg, m.keys.Filter):
		return m.openFilter(m.colFocus)
	case key.Matches(msg, m.keys.Clear):
		if spec, ok := m.focusedColumn(); ok {
			m.setState(m.state.WithFilter(spec.Key, nil))
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.search.SetValue("")
		m.recipeName = ""
		m.setState(m.state.WithoutFilters().WithQuery(""))
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Open):
		m.openDetail()
	case key.Matches(msg, m.keys.Copy):
		m.copyLink()
	case key.Matches(msg, m.keys.Recipes):
		m.picker = NewRecipePickerModel(m.recipes, m.recipeName, m.theme)
		m.picker.SetSize(m.width, m.height)
		m.mode = modeRecipes
	case key.Matches(msg, m.keys.Help):
		m.helpFrom = modeTable
		m.mode = modeHelp
	case key.Matches(msg, m.keys.ReloadData):
		if m.source == "" {
			m.status = "No data source to reload"
			return m, nil
		}
		m.status = "Reloading…"
		return m, ReloadCmd(m.source)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeTable
		return m, nil
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue("")
		m.setState(m.state.WithQuery(""))
		m.mode = modeTable
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.state.Query {
		m.setState(m.state.WithQuery(q))
	}
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Open):
		m.mode = modeTable
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.copyLink()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.helpFrom = modeDetail
		m.mode = modeHelp
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) updateRecipes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.mode = modeTable
	case key.Matches(msg, m.keys.Up):
		m.picker.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.picker.MoveDown()
	case key.Matches(msg, m.keys.Open):
		if r, ok := m.picker.SelectedRecipe(); ok {
			m.ApplyRecipe(r)
		}
		m.mode = modeTable
	}
	return m, nil
}

func (m Model) updateFilterForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.filterForm.Update(msg)
	switch {
	case m.filterForm.Done():
		m.setState(m.state.WithFilter(m.filterForm.column, m.filterForm.Values()))
		m.filterForm = nil
		m.mode = modeTable
		return m, nil
	case m.filterForm.Aborted():
		m.filterForm = nil
		m.mode = modeTable
		return m, nil
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-3)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.moveCursor(3)
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}

	layout := m.layout()
	switch {
	case msg.Y == searchLine:
		m.mode = modeSearch
		return m, m.search.Focus()
	case msg.Y == headerLine:
		if col, ok := columnAt(layout, msg.X); ok {
			m.colFocus = col
			m.toggleSort(col)
		}
	case msg.Y == filterLine:
		if col, ok := columnAt(layout, msg.X); ok {
			m.colFocus = col
			return m.openFilter(col)
		}
	case msg.Y >= bodyTop:
		row := m.offset + msg.Y - bodyTop
		if row < m.view.Len() && msg.Y < bodyTop+m.bodyHeight() {
			m.cursor = row
		}
	}
	return m, nil
}

// ApplyRecipe replaces the view state with the recipe's
func (m *Model) ApplyRecipe(r recipe.Recipe) {
	state, err := r.State(m.cols)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.recipeName = r.Name
	m.search.SetValue(state.Query)
	m.setState(state)
	m.status = "Recipe: " + r.Name
}

func (m Model) openFilter(col int) (tea.Model, tea.Cmd) {
	if col < 0 || col >= len(m.cols) {
		return m, nil
	}
	spec := m.cols[col]
	if !spec.Filterable() {
		m.status = spec.Title + " has no filter"
		return m, nil
	}
	options := view.FilterOptions(m.ds, spec)
	if len(options) == 0 {
		m.status = spec.Title + " has no values to filter on"
		return m, nil
	}
	m.filterForm = newFilterForm(spec, options, m.state.Filters.Values(spec.Key), m.width)
	m.mode = modeFilter
	return m, m.filterForm.Init()
}

func (m *Model) toggleSort(col int) {
	if col < 0 || col >= len(m.cols) {
		return
	}
	spec := m.cols[col]
	if !spec.Sortable() {
		m.status = spec.Title + " is not sortable"
		return
	}
	m.setState(m.state.ToggleSort(spec.Key))
}

func (m *Model) openDetail() {
	rec := m.SelectedRecord()
	if rec == nil {
		return
	}
	content, err := m.markdown.Render(recordMarkdown(m.cols, rec))
	if err != nil {
		content = fmt.Sprintf("Error rendering details: %v", err)
	}
	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.mode = modeDetail
}

func (m *Model) copyLink() {
	rec := m.SelectedRecord()
	if rec == nil {
		return
	}
	for _, c := range m.cols {
		if !c.HasLink() {
			continue
		}
		url := strings.TrimSpace(rec.Value(c.LinkKey))
		if url == "" {
			m.status = "No link for this opportunity"
			return
		}
		if err := m.copyFn(url); err != nil {
			m.status = "Copy failed: " + err.Error()
			return
		}
		m.status = "Copied " + url
		return
	}
	m.status = "No link column"
}

// setState recomputes the view and keeps the selected record under the
// cursor when it is still visible.
func (m *Model) setState(s view.State) {
	prev := m.SelectedRecord()
	m.state = s
	m.view = m.mat.View(m.ds, m.state)

	m.cursor = 0
	if prev != nil {
		if i := slices.Index(m.view.Records, prev); i >= 0 {
			m.cursor = i
		}
	}
	m.clampCursor()
}

// setDataset swaps in a new dataset and keeps the current selections
func (m *Model) setDataset(ds *model.Dataset) {
	if ds == nil {
		ds = model.EmptyDataset()
	}
	cols := model.VolunteerColumns().Resolve(ds.Columns())
	if m.mat == nil || !slices.Equal(cols.Keys(), m.cols.Keys()) {
		m.mat = view.NewMaterializer(cols)
	}
	m.ds = ds
	m.cols = cols
	m.widths = naturalWidths(cols, ds.Records())
	if m.colFocus >= len(cols) {
		m.colFocus = max(len(cols)-1, 0)
	}
	m.firstCol = min(m.firstCol, m.colFocus)
	m.view = m.mat.View(m.ds, m.state)
	m.clampCursor()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true
	m.help.Width = width
	m.detail.Width = width
	m.detail.Height = max(height-2, 1)
	m.markdown.SetWidth(max(width-4, 20))
	m.picker.SetSize(width, height)
	m.ensureColumnVisible()
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.view.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset > max(n-h, 0) {
		m.offset = max(n-h, 0)
	}
}

func (m *Model) focusColumn(col int) {
	if len(m.cols) == 0 {
		return
	}
	m.colFocus = min(max(col, 0), len(m.cols)-1)
	m.ensureColumnVisible()
}

func (m *Model) ensureColumnVisible() {
	if m.colFocus < m.firstCol {
		m.firstCol = m.colFocus
	}
	for m.firstCol < m.colFocus {
		layout := layoutColumns(m.widths, m.firstCol, m.width)
		if len(layout) > 0 && layout[len(layout)-1].index >= m.colFocus {
			break
		}
		m.firstCol++
	}
}

func (m Model) focusedColumn() (model.ColumnSpec, bool) {
	if m.colFocus < 0 || m.colFocus >= len(m.cols) {
		return model.ColumnSpec{}, false
	}
	return m.cols[m.colFocus], true
}

func (m Model) layout() []colLayout {
	return layoutColumns(m.widths, m.firstCol, m.width)
}

func (m Model) bodyHeight() int {
	return max(m.height-bodyTop-footerRows, 1)
}

// helpContext returns which help page applies to the mode help was opened from
func (m Model) helpContext() Context {
	switch m.helpFrom {
	case modeSearch:
		return ContextSearch
	case modeDetail:
		return ContextDetail
	case modeFilter:
		return ContextFilter
	case modeRecipes:
		return ContextRecipePicker
	}
	return ContextTable
}

func (m Model) View() string {
	switch m.mode {
	case modeDetail:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), m.detail.View(), m.renderFooter())
	case modeRecipes:
		return m.picker.View()
	case modeHelp:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			RenderContextHelp(m.helpContext(), m.theme, m.width, m.height))
	case modeFilter:
		if m.filterForm != nil {
			box := m.theme.Renderer.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(m.theme.Primary).
				Padding(1, 2).
				Render(m.filterForm.View())
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
	}

	layout := m.layout()
	var sb strings.Builder
	sb.WriteString(m.renderTitle())
	sb.WriteByte('\n')
	sb.WriteString(m.renderSearchLine())
	sb.WriteByte('\n')
	sb.WriteString(m.renderHeader(layout))
	sb.WriteByte('\n')
	sb.WriteString(m.renderFilterRow(layout))
	sb.WriteByte('\n')
	sb.WriteString(m.renderRule(layout))
	sb.WriteByte('\n')

	body := m.renderBody(layout, m.view, m.bodyHeight())
	sb.WriteString(body)
	if pad := m.bodyHeight() - strings.Count(body, "\n") - 1; pad > 0 {
		sb.WriteString(strings.Repeat("\n", pad))
	}
	sb.WriteByte('\n')
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderTitle() string {
	t := m.theme
	title := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render(m.title)
	count := t.Renderer.NewStyle().Foreground(t.Subtext).
		Render(fmt.Sprintf("  %d of %d opportunities", m.view.Len(), m.view.Total))

	parts := []string{title, count}
	if m.recipeName != "" {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Secondary).Render("  ["+m.recipeName+"]"))
	}
	if m.state.Sort.Active() {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Muted).Render("  sorted by "+m.state.Sort.String()))
	}
	if m.loadErr != nil {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Error).Render("  load failed: "+m.loadErr.Error()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderSearchLine() string {
	if m.mode == modeSearch {
		return m.search.View()
	}
	if q := strings.TrimSpace(m.state.Query); q != "" {
		return m.theme.Renderer.NewStyle().Foreground(m.theme.Secondary).Render("/ " + q)
	}
	return m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).Render("/ to search")
}

func (m Model) renderFooter() string {
	if m.status != "" {
		return m.theme.Renderer.NewStyle().Foreground(m.theme.Secondary).Render(m.status)
	}
	return m.help.View(m.keys)
}

// recordMarkdown renders one record as the detail pane document
func recordMarkdown(cols model.Columns, rec *model.Record) string {
	var sb strings.Builder
	if len(cols) > 0 {
		heading := cellText(rec.Value(cols[0].Key))
		if heading == "" {
			heading = "Opportunity"
		}
		sb.WriteString("# " + heading + "\n\n")
	}
	for i, c := range cols {
		if i == 0 {
			continue
		}
		val := strings.TrimSpace(rec.Value(c.Key))
		if val == "" {
			continue
		}
		if c.HasLink() {
			if url := strings.TrimSpace(rec.Value(c.LinkKey)); url != "" {
				fmt.Fprintf(&sb, "**%s:** [%s](%s)\n\n", c.Title, val, url)
				continue
			}
		}
		fmt.Fprintf(&sb, "**%s:** %s\n\n", c.Title, val)
	}
	return sb.String()
}

// SelectedRecord returns the record under the cursor, or nil
func (m Model) SelectedRecord() *model.Record {
	if m.cursor < 0 || m.cursor >= m.view.Len() {
		return nil
	}
	return m.view.Records[m.cursor]
}

// VisibleRecords returns the derived view in display order (exposed for testing)
func (m Model) VisibleRecords() []*model.Record {
	return slices.Clone(m.view.Records)
}

// State returns the current view state
func (m Model) State() view.State {
	return m.state
}

// Mode returns the active mode name: table, search, detail, filter, recipes or help
func (m Model) Mode() string {
	return m.mode.String()
}

// Status returns the transient footer message
func (m Model) Status() string {
	return m.status
}

// FocusedColumn returns the key of the focused column
func (m Model) FocusedColumn() string {
	if spec, ok := m.focusedColumn(); ok {
		return spec.Key
	}
	return ""
}

// MaterializerStats reports view cache hits and misses
func (m Model) MaterializerStats() (hits, misses int) {
	return m.mat.Stats()
}
