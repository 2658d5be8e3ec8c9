package model

import (
	"fmt"
	"strings"
)

// Record is one row of source data, keyed by column name.
// Records are created once at load time and never mutated; callers
// compare them by pointer.
type Record struct {
	index  int
	values map[string]string
}

// NewRecord creates a record at the given source position. The values map is
// copied so later changes by the caller cannot leak into the record.
func NewRecord(index int, values map[string]string) *Record {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Record{index: index, values: copied}
}

// Index returns the record's position in the source file (0-based, header excluded)
func (r *Record) Index() int {
	return r.index
}

// Get returns the cell value for a column and whether the column was present
// in the source row at all.
func (r *Record) Get(column string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[column]
	return v, ok
}

// Value returns the cell value for a column, or "" when absent
func (r *Record) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// Fields returns a copy of all cell values
func (r *Record) Fields() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// String implements fmt.Stringer for debugging output.
func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("#%d%v", r.index, r.values)
}

// Dataset is the full, ordered collection of records loaded at startup.
// Order is source file order. A nil Dataset behaves as an empty one.
type Dataset struct {
	columns []string
	records []*Record
}

// NewDataset builds a dataset from a header and rows in source order.
func NewDataset(columns []string, rows []map[string]string) *Dataset {
	ds := &Dataset{
		columns: append([]string(nil), columns...),
		records: make([]*Record, 0, len(rows)),
	}
	for i, row := range rows {
		ds.records = append(ds.records, NewRecord(i, row))
	}
	return ds
}

// EmptyDataset returns a dataset with no columns and no records
func EmptyDataset() *Dataset {
	return &Dataset{}
}

// Columns returns the header column names in source order
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.columns...)
}

// Records returns the records in source order. The slice is a copy; the
// records themselves are shared.
func (d *Dataset) Records() []*Record {
	if d == nil {
		return nil
	}
	return append([]*Record(nil), d.records...)
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the record at position i
func (d *Dataset) At(i int) *Record {
	return d.records[i]
}

// HasColumn reports whether the header contains the column (exact match)
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Distinct returns the distinct non-blank values of a column in first-seen order.
func (d *Dataset) Distinct(column string) []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.records {
		v := strings.TrimSpace(r.Value(column))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
