package filter

import (
	"math"
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
)

// Category is a named integer range. Min and Max are inclusive.
// An Unset category matches only blank values.
type Category struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
	Min   int    `yaml:"min" json:"min"`
	Max   int    `yaml:"max" json:"max"`
	Unset bool   `yaml:"unset,omitempty" json:"unset,omitempty"`
}

// Contains reports whether the raw cell value falls into the category.
func (c Category) Contains(raw string) bool {
	if model.IsBlank(raw) {
		return c.Unset
	}
	if c.Unset {
		return false
	}
	n, ok := model.ParseLeadingInt(raw)
	if !ok {
		return false
	}
	return n >= c.Min && n <= c.Max
}

// CategorySet is an ordered list of non-overlapping categories
type CategorySet []Category

// Find returns the category with the given value (case-insensitive)
func (s CategorySet) Find(value string) (Category, bool) {
	value = strings.TrimSpace(value)
	for _, c := range s {
		if strings.EqualFold(c.Value, value) {
			return c, true
		}
	}
	return Category{}, false
}

// Values returns the category values in display order
func (s CategorySet) Values() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Value
	}
	return out
}

// Classify returns the value of the category raw belongs to, or "" if none.
func (s CategorySet) Classify(raw string) string {
	for _, c := range s {
		if c.Contains(raw) {
			return c.Value
		}
	}
	return ""
}

var categorySets = map[string]CategorySet{
	"age": {
		{Value: "under12", Label: "Under 12", Min: math.MinInt, Max: 11},
		{Value: "12-17", Label: "12-17 years", Min: 12, Max: 17},
		{Value: "18+", Label: "18 and older", Min: 18, Max: math.MaxInt},
		{Value: "no-minimum", Label: "No minimum age", Unset: true},
	},
	"group-size": {
		{Value: "1", Label: "1", Min: 1, Max: 1},
		{Value: "2-5", Label: "2-5", Min: 2, Max: 5},
		{Value: "6-10", Label: "6-10", Min: 6, Max: 10},
		{Value: "11-20", Label: "11-20", Min: 11, Max: 20},
		{Value: "21+", Label: "More than 20", Min: 21, Max: math.MaxInt},
	},
}

// Lookup returns a copy of the named category set
func Lookup(name string) (CategorySet, bool) {
	set, ok := categorySets[name]
	if !ok {
		return nil, false
	}
	return append(CategorySet(nil), set...), true
}
