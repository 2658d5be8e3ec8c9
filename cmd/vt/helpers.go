// Shared helpers for vt commands.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/vanderheijden86/voltable/pkg/config"
	"github.com/vanderheijden86/voltable/pkg/loader"
	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/recipe"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// loadDataset resolves the data source and loads it once. A load failure
// is logged and yields an empty dataset; the error is returned so surfaces
// can show it, not to fail the command.
func loadDataset(ctx context.Context) (string, *model.Dataset, error) {
	source, err := config.ResolveDataSource(cfg.Data)
	if err != nil {
		logger.Warn("no data source", "err", err)
		return "", model.EmptyDataset(), err
	}
	ds, err := loader.LoadOrEmpty(ctx, source, logger)
	return source, ds, err
}

// loadRecipes returns the built-in recipes merged with the user's and the
// project's recipes.yaml.
func loadRecipes() (*recipe.Loader, error) {
	l := recipe.NewLoader()
	l.ProjectDir = cfg.Dir
	if err := l.Load(); err != nil {
		return nil, userErr(err)
	}
	return l, nil
}

// stateFlags are the command-line inputs that shape the view
type stateFlags struct {
	recipe  string
	sort    string
	query   string
	filters []string
}

func currentStateFlags() stateFlags {
	return stateFlags{
		recipe:  cfg.Recipe,
		sort:    flagSort,
		query:   flagQuery,
		filters: flagFilters,
	}
}

// buildState starts from the recipe, if any, then applies --filter, --query
// and --sort on top. Filters add to the recipe's values for the column.
func buildState(cols model.Columns, recipes *recipe.Loader, f stateFlags) (view.State, error) {
	state := view.NewState()
	if f.recipe != "" {
		r, err := recipes.Get(f.recipe)
		if err != nil {
			return view.State{}, userErr(err)
		}
		if state, err = r.State(cols); err != nil {
			return view.State{}, userErr(err)
		}
	}

	for _, raw := range f.filters {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return view.State{}, userErr(fmt.Errorf("invalid --filter %q: expected column=value", raw))
		}
		if c, found := cols.Find(name); found {
			name = c.Key
		}
		state = state.WithFilter(name, append(state.Filters.Values(name), value))
	}

	if q := strings.TrimSpace(f.query); q != "" {
		state = state.WithQuery(q)
	}

	if f.sort != "" {
		sel, err := parseSort(f.sort, cols)
		if err != nil {
			return view.State{}, userErr(err)
		}
		state = state.WithSort(sel)
	}
	return state, nil
}

// parseSort parses "column[:asc|desc]". The column may be a title, key or
// alias and must be sortable.
func parseSort(s string, cols model.Columns) (model.SortSelection, error) {
	name, dirText := s, ""
	if i := strings.LastIndex(s, ":"); i >= 0 {
		name, dirText = s[:i], s[i+1:]
	}
	dir, err := model.ParseDirection(dirText)
	if err != nil {
		return model.SortSelection{}, err
	}
	c, ok := cols.Find(name)
	if !ok {
		return model.SortSelection{}, fmt.Errorf("unknown sort column %q", strings.TrimSpace(name))
	}
	if !c.Sortable() {
		return model.SortSelection{}, fmt.Errorf("column %q is not sortable", c.Title)
	}
	return model.SortSelection{Column: c.Key, Direction: dir}, nil
}

// currentView loads the data and derives the view the flags ask for
func currentView(ctx context.Context) (view.View, error) {
	_, ds, _ := loadDataset(ctx)
	recipes, err := loadRecipes()
	if err != nil {
		return view.View{}, err
	}
	cols := model.VolunteerColumns().Resolve(ds.Columns())
	state, err := buildState(cols, recipes, currentStateFlags())
	if err != nil {
		return view.View{}, err
	}
	return view.Materialize(ds, cols, state), nil
}
