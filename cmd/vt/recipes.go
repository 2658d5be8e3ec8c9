package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/voltable/pkg/recipe"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List the available recipes",
	Long: `List the built-in recipes and those defined in ~/.config/vt/recipes.yaml
and <config-dir>/recipes.yaml. Apply one with --recipe NAME.`,
	Args: cobra.NoArgs,
	RunE: runRecipes,
}

func init() {
	recipesCmd.Flags().BoolVar(&flagJSON, "json", false, "print the recipes as JSON")
}

// recipeSummary is the JSON form of one recipe
type recipeSummary struct {
	recipe.Recipe
	Source recipe.Source `json:"source"`
}

func runRecipes(cmd *cobra.Command, args []string) error {
	l, err := loadRecipes()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if flagJSON {
		summaries := make([]recipeSummary, 0, len(l.List()))
		for _, r := range l.List() {
			summaries = append(summaries, recipeSummary{Recipe: r, Source: l.Source(r.Name)})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"recipes": summaries}); err != nil {
			return sysErr(err)
		}
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Source", "Description").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return listCellStyle
		})
	for _, r := range l.List() {
		t.Row(r.Name, string(l.Source(r.Name)), r.Description)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}
