package model

import (
	"sort"
	"strings"
)

// Direction is the order of the active sort
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns "asc" or "desc"
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// DirectionError reports an unrecognized sort direction
type DirectionError struct {
	Input string
}

func (e *DirectionError) Error() string {
	return "invalid sort direction: " + e.Input + " (expected asc or desc)"
}

// ParseDirection parses "asc"/"desc" (case-insensitive). Empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, &DirectionError{Input: s}
}

// SortSelection is the single active (column, direction) pair.
// The zero value means no sort: the view keeps source order.
type SortSelection struct {
	Column    string
	Direction Direction
}

// Active reports whether a sort key is set
func (s SortSelection) Active() bool {
	return s.Column != ""
}

// Toggle returns the selection after a click on column's header: the active
// column flips direction, any other column becomes the key, ascending.
func (s SortSelection) Toggle(column string) SortSelection {
	if s.Column == column {
		if s.Direction == Ascending {
			return SortSelection{Column: column, Direction: Descending}
		}
		return SortSelection{Column: column, Direction: Ascending}
	}
	return SortSelection{Column: column, Direction: Ascending}
}

// String renders "column:dir", or "" when inactive
func (s SortSelection) String() string {
	if !s.Active() {
		return ""
	}
	return s.Column + ":" + s.Direction.String()
}

// FilterSelection holds, per column, the set of selected values.
// It is a value: With returns a new selection and never modifies the receiver.
type FilterSelection struct {
	values map[string][]string
}

// NewFilterSelection returns an empty selection
func NewFilterSelection() FilterSelection {
	return FilterSelection{}
}

// With returns a copy whose column constraint is values. Blank and duplicate
// values are dropped; an empty set removes the constraint.
func (f FilterSelection) With(column string, values []string) FilterSelection {
	next := make(map[string][]string, len(f.values)+1)
	for k, v := range f.values {
		if k != column {
			next[k] = v
		}
	}

	seen := make(map[string]bool, len(values))
	var set []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		set = append(set, v)
	}
	if len(set) > 0 {
		next[column] = set
	}
	return FilterSelection{values: next}
}

// Without returns a copy with the column's constraint removed
func (f FilterSelection) Without(column string) FilterSelection {
	return f.With(column, nil)
}

// Values returns the selected values for a column (nil = no constraint)
func (f FilterSelection) Values(column string) []string {
	return append([]string(nil), f.values[column]...)
}

// Has reports whether value is selected for column
func (f FilterSelection) Has(column, value string) bool {
	for _, v := range f.values[column] {
		if v == value {
			return true
		}
	}
	return false
}

// Columns returns the constrained columns, sorted by name
func (f FilterSelection) Columns() []string {
	cols := make([]string, 0, len(f.values))
	for k := range f.values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// IsEmpty reports whether no column is constrained
func (f FilterSelection) IsEmpty() bool {
	return len(f.values) == 0
}

// Key returns a canonical encoding used to memoize derived views.
// Two selections with the same constraints have the same key.
func (f FilterSelection) Key() string {
	var sb strings.Builder
	for _, col := range f.Columns() {
		vals := append([]string(nil), f.values[col]...)
		sort.Strings(vals)
		sb.WriteString(col)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(vals, "\x1f"))
		sb.WriteByte('\x1e')
	}
	return sb.String()
}
