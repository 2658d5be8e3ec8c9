package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/voltable/pkg/model"
)

func records(kv ...[2]string) []*model.Record {
	out := make([]*model.Record, len(kv))
	for i, p := range kv {
		out[i] = model.NewRecord(i, map[string]string{"Organization": p[0], "Minimum age": p[1]})
	}
	return out
}

func orgs(rs []*model.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Value("Organization")
	}
	return out
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"5", "10", -1},
		{"10", "5", 1},
		{"18+", "18", 0},
		{"", "99", 1},
		{"99", "n/a", -1},
		{"", "n/a", 0},
	}
	for _, tt := range tests {
		if got := Numeric(tt.a, tt.b); got != tt.want {
			t.Errorf("Numeric(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLexical_IgnoresCase(t *testing.T) {
	assert.Equal(t, 0, Lexical("City Shelter", "city shelter"))
	assert.Negative(t, Lexical("apple", "Banana"))
}

func TestSort_MinimumAgeSentinel(t *testing.T) {
	rs := records([2]string{"A", "10"}, [2]string{"B", ""}, [2]string{"C", "5"})
	cols := model.VolunteerColumns()

	asc := Sort(rs, cols, model.SortSelection{Column: "Minimum age", Direction: model.Ascending})
	assert.Equal(t, []string{"C", "A", "B"}, orgs(asc))

	desc := Sort(rs, cols, model.SortSelection{Column: "Minimum age", Direction: model.Descending})
	assert.Equal(t, []string{"B", "A", "C"}, orgs(desc))

	assert.Equal(t, []string{"A", "B", "C"}, orgs(rs), "input is not reordered")
}

func TestSort_StableTiesBothDirections(t *testing.T) {
	rs := records(
		[2]string{"first", "12"},
		[2]string{"x", "5"},
		[2]string{"second", "12"},
		[2]string{"third", "12"},
	)
	cols := model.VolunteerColumns()

	asc := Sort(rs, cols, model.SortSelection{Column: "Minimum age", Direction: model.Ascending})
	assert.Equal(t, []string{"x", "first", "second", "third"}, orgs(asc))

	desc := Sort(rs, cols, model.SortSelection{Column: "Minimum age", Direction: model.Descending})
	assert.Equal(t, []string{"first", "second", "third", "x"}, orgs(desc))
}

func TestSort_KeepsOrderWhenNotSortable(t *testing.T) {
	rs := records([2]string{"b", ""}, [2]string{"a", ""})
	cols := model.VolunteerColumns()

	for _, sel := range []model.SortSelection{
		{},
		{Column: "Description"},
		{Column: "Nope", Direction: model.Descending},
	} {
		got := Sort(rs, cols, sel)
		require.Len(t, got, 2)
		assert.Same(t, rs[0], got[0], "selection %+v", sel)
	}
}

func TestSort_Properties(t *testing.T) {
	cols := model.VolunteerColumns()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 25).Draw(t, "n")
		vals := rapid.SampledFrom([]string{"", "0", "3", "12", "12+", "40", "x", "Alpha", "alpha", "beta"})
		rs := make([]*model.Record, n)
		for i := range rs {
			rs[i] = model.NewRecord(i, map[string]string{
				"Organization": vals.Draw(t, "org"),
				"Minimum age":  vals.Draw(t, "age"),
			})
		}
		col := rapid.SampledFrom([]string{"Organization", "Minimum age"}).Draw(t, "col")
		dir := model.Direction(rapid.IntRange(0, 1).Draw(t, "dir"))
		sel := model.SortSelection{Column: col, Direction: dir}

		got := Sort(rs, cols, sel)
		if len(got) != len(rs) {
			t.Fatalf("Sort changed length: %d -> %d", len(rs), len(got))
		}

		// permutation of the same pointers
		seen := make(map[*model.Record]int, len(rs))
		for _, r := range got {
			seen[r]++
		}
		for _, r := range rs {
			if seen[r] != 1 {
				t.Fatalf("record %d appears %d times", r.Index(), seen[r])
			}
		}

		// ordered, ties by input order
		cmp := For(cols[cols.IndexOf(col)])
		for i := 1; i < len(got); i++ {
			c := cmp(got[i-1].Value(col), got[i].Value(col))
			if dir == model.Descending {
				c = -c
			}
			if c > 0 || (c == 0 && got[i-1].Index() > got[i].Index()) {
				t.Fatalf("out of order at %d", i)
			}
		}

		// deterministic
		again := Sort(rs, cols, sel)
		for i := range got {
			if got[i] != again[i] {
				t.Fatalf("Sort is not deterministic at %d", i)
			}
		}
	})
}
