// Package view derives the visible rows from a dataset and the user's
// current filter, query and sort state.
package view

import (
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
)

// State is everything the user controls about a view. It is a value; the
// With* methods return a modified copy.
type State struct {
	Filters model.FilterSelection
	Query   string
	Sort    model.SortSelection
}

// NewState returns the initial state: no filters, no query, source order
func NewState() State {
	return State{Filters: model.NewFilterSelection()}
}

// Key returns a canonical encoding of the state for memoization
func (s State) Key() string {
	var sb strings.Builder
	sb.WriteString(s.Filters.Key())
	sb.WriteByte('\x1d')
	sb.WriteString(s.Query)
	sb.WriteByte('\x1d')
	sb.WriteString(s.Sort.String())
	return sb.String()
}

// WithFilter replaces one column's selected values
func (s State) WithFilter(column string, values []string) State {
	s.Filters = s.Filters.With(column, values)
	return s
}

// WithoutFilters clears every column filter
func (s State) WithoutFilters() State {
	s.Filters = model.NewFilterSelection()
	return s
}

// WithQuery replaces the global text query
func (s State) WithQuery(q string) State {
	s.Query = q
	return s
}

// ToggleSort applies a header click on column
func (s State) ToggleSort(column string) State {
	s.Sort = s.Sort.Toggle(column)
	return s
}

// WithSort sets the sort selection directly
func (s State) WithSort(sel model.SortSelection) State {
	s.Sort = sel
	return s
}

// IsZero reports whether the state shows every record in source order
func (s State) IsZero() bool {
	return s.Filters.IsEmpty() && strings.TrimSpace(s.Query) == "" && !s.Sort.Active()
}
