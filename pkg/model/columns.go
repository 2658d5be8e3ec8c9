package model

import "strings"

// FilterKind tags which predicate a column's filter control uses
type FilterKind string

const (
	FilterNone      FilterKind = ""
	FilterExact     FilterKind = "exact"     // folded value equals a selected value
	FilterPrefix    FilterKind = "prefix"    // folded value starts with a selected keyword
	FilterSubstring FilterKind = "substring" // folded value contains a selected keyword
	FilterCategory  FilterKind = "category"  // parsed integer falls in a selected named range
)

// IsValid returns true if the filter kind is a recognized value
func (k FilterKind) IsValid() bool {
	switch k {
	case FilterNone, FilterExact, FilterPrefix, FilterSubstring, FilterCategory:
		return true
	}
	return false
}

// SortKind tags which comparator a column sorts with
type SortKind string

const (
	SortLexical SortKind = "lexical"
	SortNumeric SortKind = "numeric"
)

// ColumnSpec describes one column of the table: how it is displayed, filtered
// and sorted. Columns are configuration, not behavior; the filter and sorter
// packages look up predicates and comparators from the tags.
type ColumnSpec struct {
	Title   string   `yaml:"title" json:"title"`
	Key     string   `yaml:"key" json:"key"`                             // header name in the CSV
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"` // alternative header names

	// LinkKey names a companion column holding a URL; the cell renders as a link.
	LinkKey string `yaml:"link_key,omitempty" json:"link_key,omitempty"`

	Filter     FilterKind `yaml:"filter,omitempty" json:"filter,omitempty"`
	Options    []string   `yaml:"options,omitempty" json:"options,omitempty"`       // static choices; empty exact = derived from data
	Categories string     `yaml:"categories,omitempty" json:"categories,omitempty"` // category set name for FilterCategory

	Sort   SortKind `yaml:"sort,omitempty" json:"sort,omitempty"`
	NoSort bool     `yaml:"no_sort,omitempty" json:"no_sort,omitempty"`

	MinWidth int `yaml:"min_width,omitempty" json:"min_width,omitempty"`
}

// Sortable reports whether clicking the header toggles a sort
func (c ColumnSpec) Sortable() bool {
	return !c.NoSort
}

// Filterable reports whether the column has a filter control
func (c ColumnSpec) Filterable() bool {
	return c.Filter != FilterNone
}

// HasLink reports whether the column renders as a hyperlink
func (c ColumnSpec) HasLink() bool {
	return c.LinkKey != ""
}

// matches reports whether a header name refers to this column
func (c ColumnSpec) matches(header string) bool {
	h := strings.TrimSpace(header)
	if strings.EqualFold(h, c.Key) {
		return true
	}
	for _, a := range c.Aliases {
		if strings.EqualFold(h, a) {
			return true
		}
	}
	return false
}

// Columns is the ordered column table of the view
type Columns []ColumnSpec

// VolunteerColumns returns the column table for the volunteer opportunities sheet.
func VolunteerColumns() Columns {
	return Columns{
		{Title: "Organization", Key: "Organization", MinWidth: 14},
		{Title: "Service", Key: "Service", LinkKey: "Service URL", MinWidth: 14},
		{Title: "Description", Key: "Description", NoSort: true, MinWidth: 20},
		{Title: "Training required", Key: "Training required", Filter: FilterExact, MinWidth: 8},
		{
			Title:      "Minimum age",
			Key:        "Minimum age",
			Sort:       SortNumeric,
			Filter:     FilterCategory,
			Categories: "age",
			MinWidth:   6,
		},
		{
			Title:    "Commitment",
			Key:      "Commitment",
			Filter:   FilterPrefix,
			Options:  []string{"Low", "Medium", "High"},
			MinWidth: 8,
		},
		{
			Title:      "Max group size",
			Key:        "Max group size",
			Aliases:    []string{"Group size"},
			Sort:       SortNumeric,
			Filter:     FilterCategory,
			Categories: "group-size",
			MinWidth:   6,
		},
		{Title: "Hours available", Key: "Hours available", NoSort: true, MinWidth: 10},
		{Title: "Other", Key: "Other", NoSort: true, MinWidth: 10},
		{
			Title:    "Recommended for",
			Key:      "Recommended for",
			Filter:   FilterSubstring,
			Options:  []string{"individuals", "families", "groups", "youth groups"},
			MinWidth: 12,
		},
	}
}

// Resolve keeps the columns whose key or alias appears in headers and binds
// each key to the header's exact spelling. With no headers (an empty dataset)
// every column is kept so the table still shows its header row.
func (cs Columns) Resolve(headers []string) Columns {
	if len(headers) == 0 {
		return append(Columns(nil), cs...)
	}
	var out Columns
	for _, c := range cs {
		for _, h := range headers {
			if c.matches(h) {
				c.Key = strings.TrimSpace(h)
				c.LinkKey = resolveHeader(c.LinkKey, headers)
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func resolveHeader(name string, headers []string) string {
	if name == "" {
		return ""
	}
	for _, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return strings.TrimSpace(h)
		}
	}
	return name
}

// Find returns the column with the given key, alias or title (case-insensitive)
func (cs Columns) Find(name string) (ColumnSpec, bool) {
	for _, c := range cs {
		if c.matches(name) || strings.EqualFold(strings.TrimSpace(name), c.Title) {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// IndexOf returns the position of the column with the given key, or -1
func (cs Columns) IndexOf(key string) int {
	for i, c := range cs {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Keys returns the accessor keys in order
func (cs Columns) Keys() []string {
	keys := make([]string, len(cs))
	for i, c := range cs {
		keys[i] = c.Key
	}
	return keys
}

// Filterable returns only the columns with a filter control
func (cs Columns) Filterable() Columns {
	var out Columns
	for _, c := range cs {
		if c.Filterable() {
			out = append(out, c)
		}
	}
	return out
}
