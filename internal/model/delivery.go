package model

import (
	"time"

	"github.com/google/uuid"
)

type Priority int

const (
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 10
)

func (p Priority) String() string {
	if p >= PriorityHigh {
		return "high"
	}
	return "normal"
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryExpired   DeliveryStatus = "expired"
	DeliveryAbandoned DeliveryStatus = "abandoned"
)

// DeliveryPayload references the event a recipient missed.
type DeliveryPayload struct {
	RoomID    string    `db:"room_id" json:"room_id"`
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	EventKind EventType `db:"event_kind" json:"event_kind"`
}

type DeliveryRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	DeliveryPayload
	Priority      Priority       `db:"priority" json:"priority"`
	Attempts      int            `db:"attempts" json:"attempts"`
	NextAttemptAt time.Time      `db:"next_attempt_at" json:"next_attempt_at"`
	Status        DeliveryStatus `db:"status" json:"status"`
	LastError     *string        `db:"last_error" json:"last_error,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Notification is one batched push to a single recipient.
type Notification struct {
	RecipientID string             `json:"recipient_id"`
	Priority    string             `json:"priority"`
	Items       []NotificationItem `json:"items"`
}

type NotificationItem struct {
	RoomID    string    `json:"room_id"`
	MessageID uuid.UUID `json:"message_id"`
	Kind      EventType `json:"kind"`
	AuthorID  string    `json:"author_id"`
	Preview   string    `json:"preview"`
	SentAt    time.Time `json:"sent_at"`
}
