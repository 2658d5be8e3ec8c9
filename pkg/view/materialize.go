package view

import (
	"sync"

	"github.com/vanderheijden86/voltable/pkg/filter"
	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/sorter"
)

// View is the derived, ordered list of records a surface renders.
type View struct {
	Records []*model.Record
	Columns model.Columns
	State   State
	Total   int // records in the dataset before filtering
}

// Len returns the number of visible records
func (v View) Len() int {
	return len(v.Records)
}

// Materialize computes sort(filter(ds, state.Filters, state.Query), state.Sort).
// It never modifies ds.
func Materialize(ds *model.Dataset, cols model.Columns, state State) View {
	filtered := filter.Apply(ds.Records(), cols, state.Filters, state.Query)
	return View{
		Records: sorter.Sort(filtered, cols, state.Sort),
		Columns: cols,
		State:   state,
		Total:   ds.Len(),
	}
}

// Materializer caches the last view and recomputes only when the dataset
// pointer or the state key changes. It is safe for concurrent use.
type Materializer struct {
	cols model.Columns

	mu     sync.Mutex
	ds     *model.Dataset
	key    string
	last   View
	valid  bool
	hits   int
	misses int
}

// NewMaterializer returns a Materializer over a fixed column table
func NewMaterializer(cols model.Columns) *Materializer {
	return &Materializer{cols: cols}
}

// Columns returns the column table views are built with
func (m *Materializer) Columns() model.Columns {
	return m.cols
}

// View returns the derived view for ds and state.
func (m *Materializer) View(ds *model.Dataset, state State) View {
	key := state.Key()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.ds == ds && m.key == key {
		m.hits++
		return m.last
	}
	m.misses++
	m.last = Materialize(ds, m.cols, state)
	m.ds = ds
	m.key = key
	m.valid = true
	return m.last
}

// Stats returns cache hit and miss counts
func (m *Materializer) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
