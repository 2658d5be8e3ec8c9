package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// Fields returns the dataset columns an export carries for cols: each
// visible column followed by its link column, if any.
func Fields(cols model.Columns) []string {
	var out []string
	for _, c := range cols {
		if !slices.Contains(out, c.Key) {
			out = append(out, c.Key)
		}
		if c.HasLink() && !slices.Contains(out, c.LinkKey) {
			out = append(out, c.LinkKey)
		}
	}
	return out
}

// ViewPayload is the JSON form of a derived view
type ViewPayload struct {
	Total   int                 `json:"total"`
	Visible int                 `json:"visible"`
	Query   string              `json:"query,omitempty"`
	Filters map[string][]string `json:"filters,omitempty"`
	Sort    *SortPayload        `json:"sort,omitempty"`
	Columns []string            `json:"columns"`
	Records []map[string]string `json:"records"`
}

// SortPayload is the active sort of a ViewPayload
type SortPayload struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// NewViewPayload converts v for JSON encoding
func NewViewPayload(v view.View) ViewPayload {
	fields := Fields(v.Columns)
	p := ViewPayload{
		Total:   v.Total,
		Visible: v.Len(),
		Query:   v.State.Query,
		Columns: fields,
		Records: make([]map[string]string, 0, v.Len()),
	}
	if cols := v.State.Filters.Columns(); len(cols) > 0 {
		p.Filters = make(map[string][]string, len(cols))
		for _, c := range cols {
			p.Filters[c] = v.State.Filters.Values(c)
		}
	}
	if v.State.Sort.Active() {
		p.Sort = &SortPayload{Column: v.State.Sort.Column, Direction: v.State.Sort.Direction.String()}
	}
	for _, r := range v.Records {
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			row[f] = r.Value(f)
		}
		p.Records = append(p.Records, row)
	}
	return p
}

// WriteJSON encodes v as an indented ViewPayload
func WriteJSON(w io.Writer, v view.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewViewPayload(v)); err != nil {
		return fmt.Errorf("encode view: %w", err)
	}
	return nil
}

// WriteCSV writes the visible records in view order
func WriteCSV(w io.Writer, v view.View) error {
	fields := Fields(v.Columns)
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(fields))
	for _, r := range v.Records {
		for i, f := range fields {
			row[i] = r.Value(f)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", r.Index(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}
