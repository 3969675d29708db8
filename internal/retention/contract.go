package retention

import (
	"context"
	"time"
)

type Store interface {
	CompactDeletedReactions(ctx context.Context, before time.Time) (int64, error)
	PurgeDeliveryRecords(ctx context.Context, before time.Time) (int64, error)
	ListRoomIDs(ctx context.Context) ([]string, error)
}

// Reconciler rebuilds denormalized per-message aggregates of one room.
type Reconciler interface {
	Reconcile(ctx context.Context, roomID string) (int, error)
}
