package repo

import (
	"context"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

// SnapshotStore persists the liveness snapshot between polling cycles.
type SnapshotStore interface {
	// Load returns the previous snapshot. A missing or unreadable snapshot is
	// a cold start and yields an empty map, never an error.
	Load(ctx context.Context) domain.Snapshot
	// Save replaces the stored snapshot as a whole.
	Save(ctx context.Context, s domain.Snapshot) error
}
