package repository

import (
	"context"

	"github.com/lite-lake/dnswatch/internal/domain/entity"
)

// SnapshotRepository persists the single baseline snapshot between runs.
type SnapshotRepository interface {
	Load(ctx context.Context) (*entity.Snapshot, error)
	Save(ctx context.Context, snapshot *entity.Snapshot) error
}
