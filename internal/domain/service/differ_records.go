package service

import (
	"github.com/lite-lake/dnswatch/internal/domain/entity"
)

// ZoneIndex maps a record key to the first record in the zone holding it.
type ZoneIndex map[entity.RecordKey]*entity.Record

// IndexZone builds the lookup used by Compare. Pointers refer into records,
// which must outlive the index. Records whose key was already taken are
// returned as duplicates in input order.
func IndexZone(records []entity.Record) (ZoneIndex, []*entity.Record) {
	idx := make(ZoneIndex, len(records))
	var dups []*entity.Record
	for i := range records {
		r := &records[i]
		key := r.Key()
		if _, exists := idx[key]; exists {
			dups = append(dups, r)
			continue
		}
		idx[key] = r
	}
	return idx, dups
}
