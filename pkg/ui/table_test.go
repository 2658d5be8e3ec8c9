package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/recipe"
)

func TestLayoutColumns(t *testing.T) {
	widths := []int{10, 20, 30}

	layout := layoutColumns(widths, 0, 40)
	assert.Equal(t, []colLayout{{index: 0, x: 0, width: 10}, {index: 1, x: 11, width: 20}}, layout)

	layout = layoutColumns(widths, 1, 100)
	assert.Equal(t, []colLayout{{index: 1, x: 0, width: 20}, {index: 2, x: 21, width: 30}}, layout)

	layout = layoutColumns(widths, 2, 12)
	assert.Equal(t, []colLayout{{index: 2, x: 0, width: 12}}, layout, "first column is clipped, never dropped")
}

func TestColumnAt(t *testing.T) {
	layout := layoutColumns([]int{10, 20}, 0, 80)

	col, ok := columnAt(layout, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, col)

	col, ok = columnAt(layout, 11)
	assert.True(t, ok)
	assert.Equal(t, 1, col)

	_, ok = columnAt(layout, 10)
	assert.False(t, ok, "gap between columns")
	_, ok = columnAt(layout, 31)
	assert.False(t, ok)
}

func TestNaturalWidths(t *testing.T) {
	cols := model.Columns{
		{Title: "Org", Key: "Org", MinWidth: 6},
		{Title: "Notes", Key: "Notes", NoSort: true, MinWidth: 20},
	}
	records := []*model.Record{
		model.NewRecord(0, map[string]string{"Org": "Harvest", "Notes": ""}),
		model.NewRecord(1, map[string]string{"Org": "A", "Notes": strings.Repeat("word ", 30)}),
	}

	widths := naturalWidths(cols, records)
	assert.Equal(t, 7, widths[0])
	assert.Equal(t, maxWideWidth, widths[1])
}

func TestFitAndCellText(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5))
	assert.Equal(t, 5, runewidth.StringWidth(fit("abcdefgh", 5)))
	assert.Equal(t, "", fit("abc", 0))
	assert.Equal(t, "two lines", cellText("two\n  lines "))
}

func TestFilterSummary(t *testing.T) {
	spec := model.ColumnSpec{Key: "Commitment", Filter: model.FilterPrefix}
	sel := model.NewFilterSelection()

	assert.Equal(t, "any", filterSummary(spec, sel))
	assert.Equal(t, "= Low", filterSummary(spec, sel.With("Commitment", []string{"Low"})))
	assert.Equal(t, "2 selected", filterSummary(spec, sel.With("Commitment", []string{"Low", "High"})))
	assert.Equal(t, "", filterSummary(model.ColumnSpec{Key: "Other"}, sel))
}

func TestSortArrow(t *testing.T) {
	spec := model.ColumnSpec{Key: "Service"}

	assert.Equal(t, "", sortArrow(spec, model.SortSelection{}))
	assert.Equal(t, "▲", sortArrow(spec, model.SortSelection{Column: "Service"}))
	assert.Equal(t, "▼", sortArrow(spec, model.SortSelection{Column: "Service", Direction: model.Descending}))
	assert.Equal(t, "", sortArrow(spec, model.SortSelection{Column: "Organization"}))
}

func TestHyperlink(t *testing.T) {
	assert.Equal(t, "\x1b]8;;https://x.test\x1b\\go\x1b]8;;\x1b\\", hyperlink("https://x.test", "go"))
}

func TestRecipePicker_Navigation(t *testing.T) {
	recipes := recipe.BuiltinRecipes()
	p := NewRecipePickerModel(recipes, "kids", DefaultTheme(lipgloss.DefaultRenderer()))

	got, ok := p.SelectedRecipe()
	assert.True(t, ok)
	assert.Equal(t, "kids", got.Name, "current recipe is preselected")

	for range len(recipes) + 3 {
		p.MoveDown()
	}
	got, _ = p.SelectedRecipe()
	assert.Equal(t, recipes[len(recipes)-1].Name, got.Name)

	for range len(recipes) + 3 {
		p.MoveUp()
	}
	got, _ = p.SelectedRecipe()
	assert.Equal(t, recipes[0].Name, got.Name)

	p.SetSize(100, 30)
	out := p.View()
	assert.Contains(t, out, "Recipes")
	assert.Contains(t, out, "families")
	assert.Contains(t, out, "✓")
}

func TestRecipePicker_Empty(t *testing.T) {
	p := NewRecipePickerModel(nil, "", DefaultTheme(lipgloss.DefaultRenderer()))
	_, ok := p.SelectedRecipe()
	assert.False(t, ok)
	assert.Contains(t, p.View(), "No recipes defined")
}

func TestTruncateDesc(t *testing.T) {
	assert.Equal(t, "short", truncateDesc("short", 20))
	assert.Equal(t, "abcdefg…", truncateDesc("abcdefghijkl", 8))
}

func TestContextHelp(t *testing.T) {
	for ctx := range ContextHelpContent {
		assert.NotEmpty(t, GetContextHelp(ctx), ctx)
	}
	assert.Equal(t, contextHelpTable, GetContextHelp(Context("unknown")))

	out := RenderContextHelp(ContextFilter, DefaultTheme(lipgloss.DefaultRenderer()), 80, 24)
	assert.Contains(t, out, "Quick Reference")
	assert.Contains(t, out, "Column Filter")
}
