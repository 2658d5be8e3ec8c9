package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Get for an unknown recipe name
var ErrNotFound = errors.New("recipe not found")

// Source names where a recipe came from
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceUser    Source = "user"
	SourceProject Source = "project"
)

// File is the on-disk layout of a recipes.yaml
type File struct {
	Recipes []Recipe `yaml:"recipes"`
}

// Loader collects recipes from the built-ins, the user's config directory
// and the project directory. Later sources override earlier ones by name.
type Loader struct {
	UserDir    string // default ~/.config/vt
	ProjectDir string // default .vt

	recipes map[string]Recipe
	sources map[string]Source
	order   []string
}

// NewLoader returns a loader seeded with the built-in recipes
func NewLoader() *Loader {
	l := &Loader{
		recipes: make(map[string]Recipe),
		sources: make(map[string]Source),
	}
	for _, r := range BuiltinRecipes() {
		l.add(r, SourceBuiltin)
	}
	return l
}

// Load reads the user and project recipe files. Missing files are skipped.
func (l *Loader) Load() error {
	userDir := l.UserDir
	if userDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			userDir = filepath.Join(home, ".config", "vt")
		}
	}
	projectDir := l.ProjectDir
	if projectDir == "" {
		projectDir = ".vt"
	}

	if userDir != "" {
		if err := l.LoadFile(filepath.Join(userDir, "recipes.yaml"), SourceUser); err != nil {
			return err
		}
	}
	return l.LoadFile(filepath.Join(projectDir, "recipes.yaml"), SourceProject)
}

// LoadFile merges the recipes in path. A missing file is not an error.
func (l *Loader) LoadFile(path string, src Source) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading recipes: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing recipes %s: %w", path, err)
	}
	for _, r := range f.Recipes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("invalid recipe in %s: %w", path, err)
		}
		l.add(r, src)
	}
	return nil
}

func (l *Loader) add(r Recipe, src Source) {
	if _, exists := l.recipes[r.Name]; !exists {
		l.order = append(l.order, r.Name)
	}
	l.recipes[r.Name] = r
	l.sources[r.Name] = src
}

// Get returns the named recipe
func (l *Loader) Get(name string) (Recipe, error) {
	r, ok := l.recipes[name]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %s (available: %v)", ErrNotFound, name, l.Names())
	}
	return r, nil
}

// Source returns where the named recipe was defined
func (l *Loader) Source(name string) Source {
	return l.sources[name]
}

// List returns recipes in definition order: built-ins first, then new names
// in the order their files declared them.
func (l *Loader) List() []Recipe {
	out := make([]Recipe, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.recipes[name])
	}
	return out
}

// Names returns the recipe names, sorted
func (l *Loader) Names() []string {
	names := append([]string(nil), l.order...)
	sort.Strings(names)
	return names
}
