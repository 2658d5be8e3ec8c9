// Package filter implements the column predicates and the global text query
// that narrow a dataset down to the records a view shows.
//
// Within a column the selected values are OR-ed; across columns the
// constraints are AND-ed, and the global query is AND-ed with all of them.
package filter

import (
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
)

// Predicate reports whether a raw cell value satisfies a column constraint.
type Predicate func(raw string) bool

// Exact matches values equal to one of the selected values, ignoring case
func Exact(selected []string) Predicate {
	want := foldAll(selected)
	return func(raw string) bool {
		v := model.Fold(strings.TrimSpace(raw))
		for _, w := range want {
			if v == w {
				return true
			}
		}
		return false
	}
}

// Prefix matches values starting with one of the keywords
func Prefix(keywords []string) Predicate {
	want := foldAll(keywords)
	return func(raw string) bool {
		v := model.Fold(strings.TrimSpace(raw))
		for _, w := range want {
			if strings.HasPrefix(v, w) {
				return true
			}
		}
		return false
	}
}

// Substring matches values containing one of the keywords
func Substring(keywords []string) Predicate {
	want := foldAll(keywords)
	return func(raw string) bool {
		v := model.Fold(raw)
		for _, w := range want {
			if strings.Contains(v, w) {
				return true
			}
		}
		return false
	}
}

// InCategories matches values that fall into any of the selected categories.
// Selected values that name no category in set are ignored.
func InCategories(set CategorySet, selected []string) Predicate {
	var cats []Category
	for _, s := range selected {
		if c, ok := set.Find(s); ok {
			cats = append(cats, c)
		}
	}
	return func(raw string) bool {
		for _, c := range cats {
			if c.Contains(raw) {
				return true
			}
		}
		return false
	}
}

// ForColumn builds the predicate for a column's selected values.
// An empty selection yields nil, meaning no constraint.
func ForColumn(spec model.ColumnSpec, selected []string) Predicate {
	if len(selected) == 0 {
		return nil
	}
	switch spec.Filter {
	case model.FilterPrefix:
		return Prefix(selected)
	case model.FilterSubstring:
		return Substring(selected)
	case model.FilterCategory:
		if set, ok := Lookup(spec.Categories); ok {
			return InCategories(set, selected)
		}
	}
	return Exact(selected)
}

// MatchQuery reports whether the trimmed query occurs, ignoring case, in any
// of the given columns of rec. An empty query matches everything.
func MatchQuery(rec *model.Record, keys []string, query string) bool {
	q := model.Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return matchFolded(rec, keys, q)
}

func matchFolded(rec *model.Record, keys []string, q string) bool {
	for _, k := range keys {
		if strings.Contains(model.Fold(rec.Value(k)), q) {
			return true
		}
	}
	return false
}

type columnPredicate struct {
	key  string
	pred Predicate
}

// Apply returns the records that satisfy every column constraint in sel and
// the global query. The result is a new slice of the same record pointers in
// input order; the input is never modified.
//
// A constrained column missing from cols is matched exactly.
func Apply(records []*model.Record, cols model.Columns, sel model.FilterSelection, query string) []*model.Record {
	var preds []columnPredicate
	for _, col := range sel.Columns() {
		spec, ok := findByKey(cols, col)
		if !ok {
			spec = model.ColumnSpec{Key: col, Filter: model.FilterExact}
		}
		if p := ForColumn(spec, sel.Values(col)); p != nil {
			preds = append(preds, columnPredicate{key: col, pred: p})
		}
	}

	q := model.Fold(strings.TrimSpace(query))
	keys := cols.Keys()

	out := make([]*model.Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if !matchAll(rec, preds) {
			continue
		}
		if q != "" && !matchFolded(rec, keys, q) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchAll(rec *model.Record, preds []columnPredicate) bool {
	for _, p := range preds {
		if !p.pred(rec.Value(p.key)) {
			return false
		}
	}
	return true
}

func findByKey(cols model.Columns, key string) (model.ColumnSpec, bool) {
	if i := cols.IndexOf(key); i >= 0 {
		return cols[i], true
	}
	return cols.Find(key)
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, model.Fold(v))
	}
	return out
}
