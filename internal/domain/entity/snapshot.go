package entity

import (
	"maps"
	"slices"
)

// Snapshot maps a zone name to the records observed in that zone.
type Snapshot struct {
	Zones map[string][]Record
}

func NewSnapshot() *Snapshot {
	return &Snapshot{Zones: make(map[string][]Record)}
}

func (s *Snapshot) AddZone(zone string) {
	if s.Zones == nil {
		s.Zones = make(map[string][]Record)
	}
	if _, ok := s.Zones[zone]; !ok {
		s.Zones[zone] = []Record{}
	}
}

func (s *Snapshot) AddRecord(zone string, r Record) {
	s.AddZone(zone)
	s.Zones[zone] = append(s.Zones[zone], r)
}

func (s *Snapshot) Records(zone string) []Record {
	if s == nil {
		return nil
	}
	return s.Zones[zone]
}

func (s *Snapshot) HasZone(zone string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Zones[zone]
	return ok
}

// ZoneNames returns zone names in sorted order.
func (s *Snapshot) ZoneNames() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.Zones))
}

func (s *Snapshot) ZoneCount() int {
	if s == nil {
		return 0
	}
	return len(s.Zones)
}

func (s *Snapshot) RecordCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, records := range s.Zones {
		n += len(records)
	}
	return n
}

func (s *Snapshot) Normalize() {
	if s.Zones == nil {
		s.Zones = make(map[string][]Record)
	}
	for zone, records := range s.Zones {
		if records == nil {
			s.Zones[zone] = []Record{}
			continue
		}
		for i := range records {
			records[i].Normalize()
		}
	}
}

// FillDefaults replaces absent zone and value lists with empty ones and
// leaves everything else untouched.
func (s *Snapshot) FillDefaults() {
	if s.Zones == nil {
		s.Zones = make(map[string][]Record)
	}
	for zone, records := range s.Zones {
		if records == nil {
			s.Zones[zone] = []Record{}
			continue
		}
		for i := range records {
			if records[i].Values == nil {
				records[i].Values = []string{}
			}
		}
	}
}

func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	if s == nil {
		return out
	}
	for zone, records := range s.Zones {
		cloned := make([]Record, len(records))
		for i := range records {
			cloned[i] = records[i].Clone()
		}
		out.Zones[zone] = cloned
	}
	return out
}

// Equal reports whether both snapshots hold the same zones with the same
// records in the same order, names included.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s.ZoneCount() != other.ZoneCount() {
		return false
	}
	for _, zone := range s.ZoneNames() {
		if !other.HasZone(zone) {
			return false
		}
		a, b := s.Zones[zone], other.Zones[zone]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].Name != b[i].Name || !a[i].Equal(&b[i]) {
				return false
			}
		}
	}
	return true
}
