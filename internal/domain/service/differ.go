package service

import (
	"github.com/lite-lake/dnswatch/internal/domain/entity"
	"github.com/lite-lake/dnswatch/internal/domain/valueobject"
)

// DifferService compares two snapshots. It holds no state; Compare is a pure
// function of its inputs.
type DifferService struct{}

func NewDifferService() *DifferService {
	return &DifferService{}
}

// Compare classifies every record of current and previous into added,
// modified and deleted. Records are matched per zone on (name, type); when a
// zone holds several records for one key the first wins and the rest are
// reported in ChangeSet.Duplicates.
func (s *DifferService) Compare(previous, current *entity.Snapshot) *valueobject.ChangeSet {
	changes := valueobject.NewChangeSet()

	prevIndex := make(map[string]ZoneIndex, previous.ZoneCount())
	for _, zone := range previous.ZoneNames() {
		idx, dups := IndexZone(previous.Records(zone))
		prevIndex[zone] = idx
		reportDuplicates(changes, valueobject.SidePrevious, zone, dups)
	}

	curIndex := make(map[string]ZoneIndex, current.ZoneCount())
	for _, zone := range current.ZoneNames() {
		idx, dups := IndexZone(current.Records(zone))
		curIndex[zone] = idx
		reportDuplicates(changes, valueobject.SideCurrent, zone, dups)
	}

	for _, zone := range current.ZoneNames() {
		planZoneAdditions(changes, zone, current.Records(zone), curIndex[zone], prevIndex[zone])
	}

	for _, zone := range previous.ZoneNames() {
		planZoneDeletions(changes, zone, previous.Records(zone), prevIndex[zone], curIndex[zone])
	}

	return changes
}

func planZoneAdditions(changes *valueobject.ChangeSet, zone string, records []entity.Record, self, prev ZoneIndex) {
	for i := range records {
		r := &records[i]
		key := r.Key()
		if self[key] != r {
			continue
		}
		old, exists := prev[key]
		if !exists {
			changes.AddAdded(zone, r)
			continue
		}
		if !old.Equal(r) {
			changes.AddModified(zone, old, r)
		}
	}
}

func planZoneDeletions(changes *valueobject.ChangeSet, zone string, records []entity.Record, self, cur ZoneIndex) {
	for i := range records {
		r := &records[i]
		key := r.Key()
		if self[key] != r {
			continue
		}
		if _, exists := cur[key]; !exists {
			changes.AddDeleted(zone, r)
		}
	}
}

func reportDuplicates(changes *valueobject.ChangeSet, side valueobject.Side, zone string, dups []*entity.Record) {
	for _, r := range dups {
		changes.AddDuplicate(valueobject.DuplicateKey{
			Side:   side,
			Zone:   zone,
			Key:    r.Key(),
			Record: r,
		})
	}
}
