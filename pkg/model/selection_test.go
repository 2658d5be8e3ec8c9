package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestSortSelection_Toggle(t *testing.T) {
	var s SortSelection
	if s.Active() {
		t.Fatal("zero SortSelection should be inactive")
	}

	s = s.Toggle("Minimum age")
	if s != (SortSelection{Column: "Minimum age", Direction: Ascending}) {
		t.Errorf("first click = %+v, want ascending", s)
	}
	s = s.Toggle("Minimum age")
	if s.Direction != Descending {
		t.Errorf("second click = %+v, want descending", s)
	}
	s = s.Toggle("Minimum age")
	if s.Direction != Ascending {
		t.Errorf("third click = %+v, want ascending", s)
	}

	s = s.Toggle("Minimum age").Toggle("Organization")
	if s != (SortSelection{Column: "Organization", Direction: Ascending}) {
		t.Errorf("switching column = %+v, want Organization ascending", s)
	}
}

func TestSortSelection_String(t *testing.T) {
	if got := (SortSelection{}).String(); got != "" {
		t.Errorf("inactive String() = %q", got)
	}
	if got := (SortSelection{Column: "Service", Direction: Descending}).String(); got != "Service:desc" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", Ascending, false},
		{"asc", Ascending, false},
		{"DESC", Descending, false},
		{"descending", Descending, false},
		{"sideways", Ascending, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			var de *DirectionError
			if !errors.As(err, &de) {
				t.Errorf("ParseDirection(%q) error type = %T", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFilterSelection_WithIsCopyOnWrite(t *testing.T) {
	base := NewFilterSelection()
	a := base.With("Commitment", []string{"Low", "Low", " ", "High"})
	b := a.With("Minimum age", []string{"under12"})

	if !base.IsEmpty() {
		t.Error("base selection was modified")
	}
	if got := a.Columns(); !reflect.DeepEqual(got, []string{"Commitment"}) {
		t.Errorf("a.Columns() = %v", got)
	}
	if got := a.Values("Commitment"); !reflect.DeepEqual(got, []string{"Low", "High"}) {
		t.Errorf("a.Values() = %v, want deduplicated [Low High]", got)
	}
	if got := b.Columns(); !reflect.DeepEqual(got, []string{"Commitment", "Minimum age"}) {
		t.Errorf("b.Columns() = %v", got)
	}

	c := b.Without("Commitment")
	if c.Has("Commitment", "Low") || !b.Has("Commitment", "Low") {
		t.Error("Without should only affect the copy")
	}
	if d := b.With("Minimum age", nil); d.Has("Minimum age", "under12") {
		t.Error("empty value set should remove the constraint")
	}
}

func TestFilterSelection_Key(t *testing.T) {
	a := NewFilterSelection().With("x", []string{"1", "2"}).With("y", []string{"3"})
	b := NewFilterSelection().With("y", []string{"3"}).With("x", []string{"2", "1"})
	if a.Key() != b.Key() {
		t.Errorf("equivalent selections have different keys: %q vs %q", a.Key(), b.Key())
	}
	c := a.With("x", []string{"1"})
	if a.Key() == c.Key() {
		t.Error("different selections share a key")
	}
	if NewFilterSelection().Key() != "" {
		t.Error("empty selection key should be empty")
	}
}
