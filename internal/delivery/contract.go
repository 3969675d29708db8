package delivery

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
)

type Store interface {
	CreateDeliveryRecord(ctx context.Context, rec *model.DeliveryRecord) error
	DueDeliveryRecords(ctx context.Context, now time.Time, limit int) ([]model.DeliveryRecord, error)
	MarkDeliveries(ctx context.Context, ids []uuid.UUID, status model.DeliveryStatus, at time.Time) error
	RescheduleDelivery(ctx context.Context, id uuid.UUID, attempts int, next time.Time, lastErr string) error
	AbandonDelivery(ctx context.Context, id uuid.UUID, attempts int, lastErr string, at time.Time) error
	PendingDeliveryCount(ctx context.Context) (int, error)
	GetMessagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Message, error)
}

// Presence answers whether a recipient came back since a record was made.
type Presence interface {
	IsOnline(userID string) bool
	LastConnectedAt(userID string) (time.Time, bool)
}

type LastSeen interface {
	LastSeen(ctx context.Context, userID string) (time.Time, bool, error)
}

type Notifier interface {
	Push(ctx context.Context, n model.Notification) error
}

type Metrics interface {
	AddDeliveries(status model.DeliveryStatus, n int)
	SetQueueDepth(n int)
}
