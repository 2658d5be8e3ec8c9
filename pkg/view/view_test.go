package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/voltable/pkg/model"
)

func sampleDataset() *model.Dataset {
	return model.NewDataset(
		[]string{"Organization", "Service", "Description", "Minimum age", "Commitment", "Training required"},
		[]map[string]string{
			{"Organization": "A", "Service": "Meals", "Description": "Cook at the shelter", "Minimum age": "10", "Commitment": "Low", "Training required": "No"},
			{"Organization": "B", "Service": "Sorting", "Description": "Warehouse", "Minimum age": "", "Commitment": "High", "Training required": "Yes"},
			{"Organization": "C", "Service": "Reading", "Description": "Library hour", "Minimum age": "5", "Commitment": "Medium", "Training required": "No"},
		},
	)
}

func cols(ds *model.Dataset) model.Columns {
	return model.VolunteerColumns().Resolve(ds.Columns())
}

func orgs(v View) []string {
	out := make([]string, v.Len())
	for i, r := range v.Records {
		out[i] = r.Value("Organization")
	}
	return out
}

func TestMaterialize_EndToEnd(t *testing.T) {
	ds := sampleDataset()
	c := cols(ds)

	v := Materialize(ds, c, NewState().ToggleSort("Minimum age"))
	assert.Equal(t, []string{"C", "A", "B"}, orgs(v))
	assert.Equal(t, 3, v.Total)

	v = Materialize(ds, c, NewState().WithFilter("Minimum age", []string{"under12"}))
	assert.Equal(t, []string{"A", "C"}, orgs(v))

	v = Materialize(ds, c, NewState().WithQuery("SHELTER"))
	assert.Equal(t, []string{"A"}, orgs(v))

	v = Materialize(ds, c, NewState().
		WithFilter("Minimum age", []string{"under12"}).
		ToggleSort("Minimum age").
		ToggleSort("Minimum age"))
	assert.Equal(t, []string{"A", "C"}, orgs(v))
}

func TestMaterialize_EmptyDataset(t *testing.T) {
	v := Materialize(model.EmptyDataset(), model.VolunteerColumns(), NewState().WithQuery("x"))
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0, v.Total)

	v = Materialize(nil, model.VolunteerColumns(), NewState())
	assert.Equal(t, 0, v.Len())
}

func TestState_KeyAndValueSemantics(t *testing.T) {
	base := NewState()
	a := base.WithFilter("Commitment", []string{"Low"})
	assert.True(t, base.IsZero())
	assert.False(t, a.IsZero())
	assert.NotEqual(t, base.Key(), a.Key())

	b := NewState().WithFilter("Commitment", []string{"Low"})
	assert.Equal(t, a.Key(), b.Key())

	assert.NotEqual(t, a.Key(), a.ToggleSort("Organization").Key())
	assert.NotEqual(t, a.Key(), a.WithQuery("x").Key())
	assert.True(t, a.WithoutFilters().IsZero())
}

func TestMaterializer_Memoizes(t *testing.T) {
	ds := sampleDataset()
	m := NewMaterializer(cols(ds))

	s := NewState().ToggleSort("Organization")
	first := m.View(ds, s)
	second := m.View(ds, NewState().ToggleSort("Organization"))
	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	require.Equal(t, first.Len(), second.Len())
	for i := range first.Records {
		assert.Same(t, first.Records[i], second.Records[i])
	}

	m.View(ds, s.ToggleSort("Organization"))
	_, misses = m.Stats()
	assert.Equal(t, 2, misses, "state change recomputes")

	reloaded := sampleDataset()
	m.View(reloaded, s.ToggleSort("Organization"))
	_, misses = m.Stats()
	assert.Equal(t, 3, misses, "new dataset recomputes")
}

func TestFilterOptions(t *testing.T) {
	ds := sampleDataset()
	c := cols(ds)

	age, _ := c.Find("Minimum age")
	opts := FilterOptions(ds, age)
	require.Len(t, opts, 4)
	assert.Equal(t, Option{Value: "under12", Label: "Under 12"}, opts[0])

	commit, _ := c.Find("Commitment")
	assert.Equal(t, []Option{{"Low", "Low"}, {"Medium", "Medium"}, {"High", "High"}}, FilterOptions(ds, commit))

	training, _ := c.Find("Training required")
	assert.Equal(t, []Option{{"No", "No"}, {"Yes", "Yes"}}, FilterOptions(ds, training))
}

func TestSummarize(t *testing.T) {
	ds := sampleDataset()
	v := Materialize(ds, cols(ds), NewState())

	s := Summarize(v, "Minimum age")
	assert.Equal(t, 3, s.Visible)
	assert.Equal(t, 2, s.Numeric)
	assert.InDelta(t, 7.5, s.Mean, 1e-9)
	require.Len(t, s.Buckets, 4)
	assert.Equal(t, 2, s.Buckets[0].Count, "under12")
	assert.Equal(t, 1, s.Buckets[3].Count, "no-minimum")

	s = Summarize(v, "Commitment")
	assert.Equal(t, []Bucket{
		{Value: "Low", Label: "Low", Count: 1},
		{Value: "High", Label: "High", Count: 1},
		{Value: "Medium", Label: "Medium", Count: 1},
	}, s.Buckets)
}

func TestSummarize_Median(t *testing.T) {
	ds := model.NewDataset([]string{"Organization", "Minimum age"}, []map[string]string{
		{"Organization": "A", "Minimum age": "16"},
		{"Organization": "B", "Minimum age": "8"},
		{"Organization": "C", "Minimum age": "12"},
		{"Organization": "D", "Minimum age": "n/a"},
	})
	s := Summarize(Materialize(ds, cols(ds), NewState()), "Minimum age")
	assert.Equal(t, 12.0, s.Median)
	require.Len(t, s.Buckets, 5)
	assert.Equal(t, Bucket{Value: "other", Label: "Other", Count: 1}, s.Buckets[4])
}

func TestMaterialize_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		ages := rapid.SampledFrom([]string{"", "4", "12", "18", "30", "none"})
		rows := make([]map[string]string, n)
		for i := range rows {
			rows[i] = map[string]string{
				"Organization": rapid.SampledFrom([]string{"a", "B", "c", "D"}).Draw(t, "org"),
				"Minimum age":  ages.Draw(t, "age"),
			}
		}
		ds := model.NewDataset([]string{"Organization", "Minimum age"}, rows)
		c := cols(ds)

		state := NewState()
		if rapid.Bool().Draw(t, "filter") {
			state = state.WithFilter("Minimum age", []string{rapid.SampledFrom([]string{"under12", "12-17", "18+", "no-minimum"}).Draw(t, "cat")})
		}
		if rapid.Bool().Draw(t, "sort") {
			state = state.ToggleSort(rapid.SampledFrom([]string{"Organization", "Minimum age"}).Draw(t, "col"))
		}

		// identity: no constraints, no sort is the dataset in order
		id := Materialize(ds, c, NewState())
		for i, r := range id.Records {
			if r != ds.At(i) {
				t.Fatalf("identity view differs at %d", i)
			}
		}

		// determinism
		a := Materialize(ds, c, state)
		b := Materialize(ds, c, state)
		if a.Len() != b.Len() {
			t.Fatalf("non-deterministic length")
		}
		for i := range a.Records {
			if a.Records[i] != b.Records[i] {
				t.Fatalf("non-deterministic order at %d", i)
			}
		}

		// toggle law: two clicks on a fresh column end descending, three ascending
		col := "Organization"
		two := state.ToggleSort(col).ToggleSort(col)
		three := two.ToggleSort(col)
		if state.Sort.Column != col {
			if two.Sort.Direction != model.Descending || three.Sort.Direction != model.Ascending {
				t.Fatalf("toggle law violated: %v %v", two.Sort, three.Sort)
			}
		}

		if a.Len() > ds.Len() {
			t.Fatalf("view larger than dataset")
		}
	})
}
