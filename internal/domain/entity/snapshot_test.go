package entity

import (
	"slices"
	"testing"
)

func TestSnapshot_Counts(t *testing.T) {
	s := NewSnapshot()
	s.AddRecord("b.com.", Record{Name: "www.b.com.", Type: "A"})
	s.AddRecord("a.com.", Record{Name: "www.a.com.", Type: "A"})
	s.AddRecord("a.com.", Record{Name: "mail.a.com.", Type: "MX"})
	s.AddZone("empty.com.")

	if s.ZoneCount() != 3 {
		t.Errorf("expected 3 zones, got %d", s.ZoneCount())
	}
	if s.RecordCount() != 3 {
		t.Errorf("expected 3 records, got %d", s.RecordCount())
	}
	if got := s.ZoneNames(); !slices.Equal(got, []string{"a.com.", "b.com.", "empty.com."}) {
		t.Errorf("unexpected zone order %v", got)
	}
}

func TestSnapshot_NilSafe(t *testing.T) {
	var s *Snapshot
	if s.ZoneCount() != 0 || s.RecordCount() != 0 {
		t.Error("expected zero counts for nil snapshot")
	}
	if s.HasZone("x.") {
		t.Error("nil snapshot has no zones")
	}
	if c := s.Clone(); c == nil || c.Zones == nil {
		t.Error("expected clone of nil to be an empty snapshot")
	}
}

func TestSnapshot_Equal(t *testing.T) {
	a := NewSnapshot()
	a.AddRecord("z.", Record{Name: "a.z.", Type: "A", TTL: 60, Values: []string{"1.1.1.1"}})
	b := a.Clone()

	if !a.Equal(b) {
		t.Fatal("expected clone to be equal")
	}

	b.Zones["z."][0].Name = "b.z."
	if a.Equal(b) {
		t.Error("expected snapshots with different names to differ")
	}
}

func TestSnapshot_Normalize(t *testing.T) {
	s := &Snapshot{Zones: map[string][]Record{
		"a.com.": nil,
		"b.com.": {{Name: "WWW.b.com", Type: "a"}},
	}}
	s.Normalize()

	if s.Zones["a.com."] == nil {
		t.Error("expected empty zone to hold a non-nil slice")
	}
	if s.Zones["b.com."][0].Name != "www.b.com." {
		t.Errorf("expected record name normalized, got %q", s.Zones["b.com."][0].Name)
	}
}
