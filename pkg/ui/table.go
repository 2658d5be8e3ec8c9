package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// Screen rows of the table view. The body starts at bodyTop and the last
// line of the screen is the footer.
const (
	titleLine  = 0
	searchLine = 1
	headerLine = 2
	filterLine = 3
	ruleLine   = 4
	bodyTop    = 5
	footerRows = 1
)

const (
	colGap       = 1
	maxColWidth  = 32
	maxWideWidth = 48
	widthSample  = 500 // records inspected when sizing columns
)

type colLayout struct {
	index int // into Model.cols
	x     int
	width int
}

// naturalWidths sizes each column to its title and content, clamped to
// [MinWidth, max].
func naturalWidths(cols model.Columns, records []*model.Record) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		w := runewidth.StringWidth(c.Title) + 2 // room for the sort arrow
		limit := maxColWidth
		if c.NoSort && c.MinWidth >= 20 {
			limit = maxWideWidth
		}
		for j, r := range records {
			if j >= widthSample {
				break
			}
			if cw := runewidth.StringWidth(cellText(r.Value(c.Key))); cw > w {
				w = cw
			}
			if w >= limit {
				break
			}
		}
		w = min(w, limit)
		w = max(w, c.MinWidth)
		widths[i] = w
	}
	return widths
}

// layoutColumns places columns left to right starting at first until the
// screen width is used up. The first column is always placed.
func layoutColumns(widths []int, first, screenWidth int) []colLayout {
	var out []colLayout
	x := 0
	for i := first; i < len(widths); i++ {
		w := widths[i]
		if len(out) > 0 && x+w > screenWidth {
			break
		}
		if len(out) == 0 && w > screenWidth && screenWidth > 0 {
			w = screenWidth
		}
		out = append(out, colLayout{index: i, x: x, width: w})
		x += w + colGap
	}
	return out
}

// columnAt returns the column under screen column x
func columnAt(layout []colLayout, x int) (int, bool) {
	for _, l := range layout {
		if x >= l.x && x < l.x+l.width {
			return l.index, true
		}
	}
	return 0, false
}

// cellText collapses whitespace so every value fits on one line
func cellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fit truncates or pads s to exactly w cells
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// hyperlink wraps label in an OSC 8 terminal hyperlink to url
func hyperlink(url, label string) string {
	return "\x1b]8;;" + url + "\x1b\\" + label + "\x1b]8;;\x1b\\"
}

func sortArrow(spec model.ColumnSpec, sel model.SortSelection) string {
	if !spec.Sortable() || sel.Column != spec.Key {
		return ""
	}
	if sel.Direction == model.Descending {
		return "▼"
	}
	return "▲"
}

func filterSummary(spec model.ColumnSpec, sel model.FilterSelection) string {
	if !spec.Filterable() {
		return ""
	}
	values := sel.Values(spec.Key)
	switch len(values) {
	case 0:
		return "any"
	case 1:
		return "= " + values[0]
	}
	return fmt.Sprintf("%d selected", len(values))
}

func (m Model) renderHeader(layout []colLayout) string {
	t := m.theme
	var cells []string
	for _, l := range layout {
		spec := m.cols[l.index]
		label := spec.Title
		if arrow := sortArrow(spec, m.state.Sort); arrow != "" {
			label += " " + arrow
		}
		style := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
		if !spec.Sortable() {
			style = style.Foreground(t.Subtext)
		}
		if l.index == m.colFocus {
			style = style.Underline(true)
		}
		cells = append(cells, style.Render(fit(label, l.width)))
	}
	return strings.Join(cells, strings.Repeat(" ", colGap))
}

func (m Model) renderFilterRow(layout []colLayout) string {
	t := m.theme
	var cells []string
	for _, l := range layout {
		spec := m.cols[l.index]
		text := filterSummary(spec, m.state.Filters)
		style := t.Renderer.NewStyle().Foreground(t.Muted).Italic(true)
		if m.state.Filters.Values(spec.Key) != nil {
			style = t.Renderer.NewStyle().Foreground(t.Secondary).Bold(true)
		}
		cells = append(cells, style.Render(fit(text, l.width)))
	}
	return strings.Join(cells, strings.Repeat(" ", colGap))
}

func (m Model) renderRule(layout []colLayout) string {
	width := 0
	if n := len(layout); n > 0 {
		width = layout[n-1].x + layout[n-1].width
	}
	return m.theme.Renderer.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", width))
}

func (m Model) renderRow(layout []colLayout, rec *model.Record, selected bool) string {
	t := m.theme
	base := t.Renderer.NewStyle().Foreground(t.Text)
	if selected {
		base = base.Background(t.Highlight).Bold(true)
	}
	gap := base.Render(strings.Repeat(" ", colGap))

	var sb strings.Builder
	for i, l := range layout {
		if i > 0 {
			sb.WriteString(gap)
		}
		spec := m.cols[l.index]
		text := cellText(rec.Value(spec.Key))

		url := ""
		if spec.HasLink() {
			url = strings.TrimSpace(rec.Value(spec.LinkKey))
		}
		if url == "" {
			sb.WriteString(base.Render(fit(text, l.width)))
			continue
		}

		label := runewidth.Truncate(text, l.width, "…")
		pad := l.width - runewidth.StringWidth(label)
		linkStyle := base.Foreground(t.Link).Underline(true)
		sb.WriteString(hyperlink(url, linkStyle.Render(label)))
		if pad > 0 {
			sb.WriteString(base.Render(strings.Repeat(" ", pad)))
		}
	}
	return sb.String()
}

func (m Model) renderBody(layout []colLayout, v view.View, height int) string {
	if v.Len() == 0 {
		msg := "No opportunities match the current filters."
		if v.Total == 0 {
			msg = "No opportunities loaded."
		}
		return m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).Italic(true).Render(msg)
	}
	end := min(m.offset+height, v.Len())
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(layout, v.Records[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}
