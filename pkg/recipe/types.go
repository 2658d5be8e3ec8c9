package recipe

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// Recipe is a named, reusable combination of column filters, a text query
// and a sort.
type Recipe struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Filters     map[string][]string `yaml:"filters,omitempty" json:"filters,omitempty"` // column -> selected values
	Query       string              `yaml:"query,omitempty" json:"query,omitempty"`
	Sort        SortConfig          `yaml:"sort,omitempty" json:"sort,omitempty"`
}

// SortConfig defines the recipe's sort key
type SortConfig struct {
	Field     string `yaml:"field,omitempty" json:"field,omitempty"`         // column title, key or alias
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"` // asc, desc (default asc)
}

// State converts the recipe into a view state over cols. Column names may be
// titles, keys or aliases; names cols does not know are kept verbatim.
func (r Recipe) State(cols model.Columns) (view.State, error) {
	state := view.NewState().WithQuery(r.Query)

	for name, values := range r.Filters {
		state = state.WithFilter(columnKey(cols, name), values)
	}

	if r.Sort.Field != "" {
		dir, err := model.ParseDirection(r.Sort.Direction)
		if err != nil {
			return view.State{}, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		state = state.WithSort(model.SortSelection{Column: columnKey(cols, r.Sort.Field), Direction: dir})
	}
	return state, nil
}

// Validate checks that the recipe is usable
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe has no name")
	}
	if _, err := model.ParseDirection(r.Sort.Direction); err != nil {
		return fmt.Errorf("recipe %q: %w", r.Name, err)
	}
	return nil
}

func columnKey(cols model.Columns, name string) string {
	if c, ok := cols.Find(name); ok {
		return c.Key
	}
	return strings.TrimSpace(name)
}

// AllRecipe shows every opportunity in sheet order
func AllRecipe() Recipe {
	return Recipe{
		Name:        "all",
		Description: "Every opportunity in sheet order",
	}
}

// FamiliesRecipe returns opportunities recommended for families
func FamiliesRecipe() Recipe {
	return Recipe{
		Name:        "families",
		Description: "Recommended for families, youngest minimum age first",
		Filters: map[string][]string{
			"Recommended for": {"families"},
		},
		Sort: SortConfig{Field: "Minimum age", Direction: "asc"},
	}
}

// KidsRecipe returns opportunities open to volunteers under 18
func KidsRecipe() Recipe {
	return Recipe{
		Name:        "kids",
		Description: "Open to volunteers under 18",
		Filters: map[string][]string{
			"Minimum age": {"under12", "12-17"},
		},
		Sort: SortConfig{Field: "Minimum age", Direction: "asc"},
	}
}

// GroupsRecipe returns opportunities that take groups of six or more
func GroupsRecipe() Recipe {
	return Recipe{
		Name:        "groups",
		Description: "Takes groups of six or more, largest first",
		Filters: map[string][]string{
			"Max group size": {"6-10", "11-20", "21+"},
		},
		Sort: SortConfig{Field: "Max group size", Direction: "desc"},
	}
}

// LowCommitmentRecipe returns opportunities with a low time commitment
func LowCommitmentRecipe() Recipe {
	return Recipe{
		Name:        "low-commitment",
		Description: "Low commitment, by organization",
		Filters: map[string][]string{
			"Commitment": {"Low"},
		},
		Sort: SortConfig{Field: "Organization", Direction: "asc"},
	}
}

// BuiltinRecipes returns all built-in recipes
func BuiltinRecipes() []Recipe {
	return []Recipe{
		AllRecipe(),
		FamiliesRecipe(),
		KidsRecipe(),
		GroupsRecipe(),
		LowCommitmentRecipe(),
	}
}
