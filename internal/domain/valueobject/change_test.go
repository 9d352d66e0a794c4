package valueobject

import (
	"errors"
	"testing"

	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
)

func TestDuplicateKey_Err(t *testing.T) {
	d := DuplicateKey{
		Side: SideCurrent,
		Zone: "example.com.",
		Key:  entity.RecordKey{Name: "www.example.com.", Type: "A"},
	}

	err := d.Err()
	if !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
	want := "zone[example.com.]: duplicate record key www.example.com.:A in current snapshot"
	if err.Error() != want {
		t.Errorf("Err() = %q, want %q", err.Error(), want)
	}
}

func TestChangeSet_Totals(t *testing.T) {
	var nilSet *ChangeSet
	if nilSet.Total() != 0 || nilSet.HasChanges() || nilSet.All() != nil {
		t.Error("expected nil change set to be empty")
	}

	cs := NewChangeSet()
	r := &entity.Record{Name: "a.example.com.", Type: "A"}
	cs.AddDeleted("example.com.", r)
	cs.AddAdded("example.com.", r)
	cs.AddModified("example.com.", r, r)
	cs.AddDuplicate(DuplicateKey{Side: SidePrevious, Zone: "example.com."})

	if cs.Total() != 3 {
		t.Errorf("expected duplicates to be excluded from Total, got %d", cs.Total())
	}
	all := cs.All()
	wantOrder := []ChangeType{ChangeTypeCreate, ChangeTypeUpdate, ChangeTypeDelete}
	for i, ct := range wantOrder {
		if all[i].Type != ct {
			t.Errorf("All()[%d] = %s, want %s", i, all[i].Type, ct)
		}
	}
}
