// Package sorter orders filtered records by the single active sort key.
package sorter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
)

// Comparator orders two raw cell values; negative means a sorts first.
type Comparator func(a, b string) int

// Lexical compares case-folded strings.
func Lexical(a, b string) int {
	return strings.Compare(model.Fold(a), model.Fold(b))
}

// Numeric compares the leading integers of both values. Blank or unparsable
// values act as +infinity: after every number ascending, before them
// descending. Two such values compare equal.
func Numeric(a, b string) int {
	x, okA := model.ParseLeadingInt(a)
	y, okB := model.ParseLeadingInt(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return cmp.Compare(x, y)
}

// For returns the comparator for a column's sort kind
func For(spec model.ColumnSpec) Comparator {
	if spec.Sort == model.SortNumeric {
		return Numeric
	}
	return Lexical
}

// Sort returns a new slice ordered by sel. With no active selection, an
// unknown column, or a column that does not sort, the input order is kept.
// The sort is stable in both directions: ties keep their input order.
func Sort(records []*model.Record, cols model.Columns, sel model.SortSelection) []*model.Record {
	out := slices.Clone(records)
	if !sel.Active() {
		return out
	}
	i := cols.IndexOf(sel.Column)
	if i < 0 || !cols[i].Sortable() {
		return out
	}

	compare := For(cols[i])
	key := cols[i].Key
	desc := sel.Direction == model.Descending
	slices.SortStableFunc(out, func(a, b *model.Record) int {
		c := compare(a.Value(key), b.Value(key))
		if desc {
			return -c
		}
		return c
	})
	return out
}
