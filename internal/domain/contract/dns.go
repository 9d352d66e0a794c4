package contract

import (
	"context"

	"github.com/lite-lake/dnswatch/internal/domain/entity"
)

// RecordSource lists every record of every zone the provider manages.
type RecordSource interface {
	Name() string
	FetchSnapshot(ctx context.Context) (*entity.Snapshot, error)
}
