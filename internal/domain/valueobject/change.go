package valueobject

import (
	"fmt"

	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
)

type ChangeType int

const (
	ChangeTypeNoop ChangeType = iota
	ChangeTypeCreate
	ChangeTypeUpdate
	ChangeTypeDelete
)

func (ct ChangeType) String() string {
	switch ct {
	case ChangeTypeNoop:
		return "NOOP"
	case ChangeTypeCreate:
		return "ADDED"
	case ChangeTypeUpdate:
		return "MODIFIED"
	case ChangeTypeDelete:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// RecordChange is one classified difference inside a zone. Added changes
// carry only New, deleted changes only Old, modified changes both.
type RecordChange struct {
	Type ChangeType
	Zone string
	Old  *entity.Record
	New  *entity.Record
}

// Record returns the record whose identity names this change.
func (c RecordChange) Record() *entity.Record {
	if c.New != nil {
		return c.New
	}
	return c.Old
}

type Side string

const (
	SidePrevious Side = "previous"
	SideCurrent  Side = "current"
)

// DuplicateKey reports a record that shares its (name, type) with an earlier
// record in the same zone and was therefore ignored by the comparison.
type DuplicateKey struct {
	Side   Side
	Zone   string
	Key    entity.RecordKey
	Record *entity.Record
}

// Err describes the duplicate as an error wrapping domain.ErrDuplicateRecord.
func (d DuplicateKey) Err() error {
	return domain.WrapEntity("zone", d.Zone, fmt.Errorf("%w %s in %s snapshot", domain.ErrDuplicateRecord, d.Key, d.Side))
}

type ChangeSet struct {
	Added      []RecordChange
	Modified   []RecordChange
	Deleted    []RecordChange
	Duplicates []DuplicateKey
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{
		Added:    []RecordChange{},
		Modified: []RecordChange{},
		Deleted:  []RecordChange{},
	}
}

func (cs *ChangeSet) AddAdded(zone string, r *entity.Record) {
	cs.Added = append(cs.Added, RecordChange{Type: ChangeTypeCreate, Zone: zone, New: r})
}

func (cs *ChangeSet) AddModified(zone string, old, new *entity.Record) {
	cs.Modified = append(cs.Modified, RecordChange{Type: ChangeTypeUpdate, Zone: zone, Old: old, New: new})
}

func (cs *ChangeSet) AddDeleted(zone string, r *entity.Record) {
	cs.Deleted = append(cs.Deleted, RecordChange{Type: ChangeTypeDelete, Zone: zone, Old: r})
}

func (cs *ChangeSet) AddDuplicate(d DuplicateKey) {
	cs.Duplicates = append(cs.Duplicates, d)
}

func (cs *ChangeSet) Total() int {
	if cs == nil {
		return 0
	}
	return len(cs.Added) + len(cs.Modified) + len(cs.Deleted)
}

func (cs *ChangeSet) HasChanges() bool {
	return cs.Total() > 0
}

// All returns added, modified and deleted changes in that order.
func (cs *ChangeSet) All() []RecordChange {
	if cs == nil {
		return nil
	}
	out := make([]RecordChange, 0, cs.Total())
	out = append(out, cs.Added...)
	out = append(out, cs.Modified...)
	out = append(out, cs.Deleted...)
	return out
}
