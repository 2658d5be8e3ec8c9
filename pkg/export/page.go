package export

import (
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

type headerCell struct {
	Title   string
	SortURL string // empty for columns that do not sort
	Arrow   string
}

type filterOption struct {
	Value   string
	Label   string
	Checked bool
}

type filterGroup struct {
	Name    string // form field name, f.<column>
	Title   string
	Options []filterOption
}

type cell struct {
	Text string
	URL  string
}

type pageData struct {
	Title       string
	Description string
	LoadErr     string
	Visible     int
	Total       int
	Query       string
	SortColumn  string
	SortDir     string
	ClearURL    string
	Headers     []headerCell
	Filters     []filterGroup
	Rows        [][]cell
}

func newPageData(title, description string, v view.View, ds *model.Dataset, loadErr error) pageData {
	state := v.State
	d := pageData{
		Title:       title,
		Description: description,
		Visible:     v.Len(),
		Total:       v.Total,
		Query:       state.Query,
		ClearURL:    stateURL(view.NewState().WithSort(state.Sort)),
	}
	if loadErr != nil {
		d.LoadErr = loadErr.Error()
	}
	if state.Sort.Active() {
		d.SortColumn = state.Sort.Column
		d.SortDir = state.Sort.Direction.String()
	}

	for _, c := range v.Columns {
		h := headerCell{Title: c.Title}
		if c.Sortable() {
			h.SortURL = stateURL(state.ToggleSort(c.Key))
			if state.Sort.Column == c.Key {
				h.Arrow = "▲"
				if state.Sort.Direction == model.Descending {
					h.Arrow = "▼"
				}
			}
		}
		d.Headers = append(d.Headers, h)

		if !c.Filterable() {
			continue
		}
		g := filterGroup{Name: ParamFilter + c.Key, Title: c.Title}
		for _, o := range view.FilterOptions(ds, c) {
			g.Options = append(g.Options, filterOption{
				Value:   o.Value,
				Label:   o.Label,
				Checked: state.Filters.Has(c.Key, o.Value),
			})
		}
		d.Filters = append(d.Filters, g)
	}

	for _, r := range v.Records {
		row := make([]cell, len(v.Columns))
		for i, c := range v.Columns {
			row[i] = cell{Text: strings.TrimSpace(r.Value(c.Key))}
			if c.HasLink() {
				row[i].URL = strings.TrimSpace(r.Value(c.LinkKey))
			}
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 1.5rem; color: #282a36; }
.filters { display: flex; flex-wrap: wrap; gap: 1rem; margin-bottom: 1rem; }
fieldset { border: 1px solid #ccc; border-radius: 6px; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: .4rem .6rem; text-align: left; vertical-align: top; }
th a { color: inherit; text-decoration: none; }
.error { color: #b00020; }
.count { color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Description}}<p>{{.}}</p>{{end}}
{{with .LoadErr}}<p class="error">Could not load opportunities: {{.}}</p>{{end}}
<form method="get" action="/">
<div class="filters">
{{range .Filters}}<fieldset><legend>{{.Title}}</legend>
{{$name := .Name}}{{range .Options}}<label><input type="checkbox" name="{{$name}}" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Label}}</label><br>
{{end}}</fieldset>
{{end}}</div>
<input type="search" name="q" value="{{.Query}}" placeholder="Search every column">
{{with .SortColumn}}<input type="hidden" name="sort" value="{{.}}">{{end}}
{{with .SortDir}}<input type="hidden" name="dir" value="{{.}}">{{end}}
<button type="submit">Apply</button> <a href="{{.ClearURL}}">Clear filters</a>
</form>
<p class="count">Showing {{.Visible}} of {{.Total}} opportunities</p>
<table>
<thead><tr>{{range .Headers}}<th>{{if .SortURL}}<a href="{{.SortURL}}">{{.Title}}{{with .Arrow}} {{.}}{{end}}</a>{{else}}{{.Title}}{{end}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{if .URL}}<a href="{{.URL}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Headers}}">{{if .Total}}No opportunities match the current filters.{{else}}No opportunities loaded.{{end}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`
