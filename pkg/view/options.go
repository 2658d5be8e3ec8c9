package view

import (
	"github.com/vanderheijden86/voltable/pkg/filter"
	"github.com/vanderheijden86/voltable/pkg/model"
)

// Option is one choice in a column's filter control
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions returns the choices offered for a column: its category set,
// its static options, or else the distinct non-blank values in ds.
func FilterOptions(ds *model.Dataset, spec model.ColumnSpec) []Option {
	if spec.Filter == model.FilterCategory {
		if set, ok := filter.Lookup(spec.Categories); ok {
			out := make([]Option, len(set))
			for i, c := range set {
				out[i] = Option{Value: c.Value, Label: c.Label}
			}
			return out
		}
	}

	values := spec.Options
	if len(values) == 0 {
		values = ds.Distinct(spec.Key)
	}
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}
