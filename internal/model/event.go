package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMessage        EventType = "message"
	EventMessageEdited  EventType = "message_edited"
	EventMessageDeleted EventType = "message_deleted"
	EventMessagePinned  EventType = "message_pinned"
	EventReaction       EventType = "reaction"
	EventTyping         EventType = "typing"
	EventPresence       EventType = "presence"
	EventMention        EventType = "mention"
	EventRead           EventType = "read"
	EventAck            EventType = "ack"
	EventSubscribed     EventType = "subscribed"
	EventError          EventType = "error"
)

// Queueable events produce a Delivery Record for members that are offline.
func (t EventType) Queueable() bool {
	return t == EventMessage || t == EventMention
}

// EventData is implemented by every server -> client payload variant.
type EventData interface {
	EventType() EventType
}

type Event struct {
	Type      EventType `json:"type"`
	RoomID    string    `json:"room_id,omitempty"`
	Data      EventData `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(roomID string, data EventData, at time.Time) Event {
	return Event{
		Type:      data.EventType(),
		RoomID:    roomID,
		Data:      data,
		Timestamp: at.UTC(),
	}
}

type MessageEvent struct {
	Message Message `json:"message"`
}

func (MessageEvent) EventType() EventType { return EventMessage }

type MessageEditedEvent struct {
	Message Message `json:"message"`
}

func (MessageEditedEvent) EventType() EventType { return EventMessageEdited }

type MessageDeletedEvent struct {
	MessageID uuid.UUID  `json:"message_id"`
	ThreadID  *uuid.UUID `json:"thread_id,omitempty"`
	DeletedBy string     `json:"deleted_by"`
	Marker    string     `json:"marker"`
}

func (MessageDeletedEvent) EventType() EventType { return EventMessageDeleted }

type MessagePinnedEvent struct {
	MessageID uuid.UUID `json:"message_id"`
	Pinned    bool      `json:"pinned"`
	By        string    `json:"by"`
}

func (MessagePinnedEvent) EventType() EventType { return EventMessagePinned }

type ReactionEvent struct {
	MessageID uuid.UUID      `json:"message_id"`
	UserID    string         `json:"user_id"`
	Kind      string         `json:"kind"`
	Action    ReactionAction `json:"action"`
	Counts    map[string]int `json:"counts"`
	Total     int            `json:"total"`
}

func (ReactionEvent) EventType() EventType { return EventReaction }

type TypingEvent struct {
	UserID    string     `json:"user_id"`
	ThreadID  *uuid.UUID `json:"thread_id,omitempty"`
	Typing    bool       `json:"typing"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (TypingEvent) EventType() EventType { return EventTyping }

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
)

type PresenceEvent struct {
	UserID string         `json:"user_id"`
	Status PresenceStatus `json:"status"`
}

func (PresenceEvent) EventType() EventType { return EventPresence }

type MentionEvent struct {
	MessageID uuid.UUID  `json:"message_id"`
	ThreadID  *uuid.UUID `json:"thread_id,omitempty"`
	AuthorID  string     `json:"author_id"`
	Preview   string     `json:"preview"`
}

func (MentionEvent) EventType() EventType { return EventMention }

type ReadEvent struct {
	UserID    string    `json:"user_id"`
	MessageID uuid.UUID `json:"message_id"`
}

func (ReadEvent) EventType() EventType { return EventRead }

type AckEvent struct {
	ClientMessageID *string   `json:"client_message_id,omitempty"`
	MessageID       uuid.UUID `json:"message_id"`
	CreatedAt       time.Time `json:"created_at"`
	Duplicate       bool      `json:"duplicate"`
}

func (AckEvent) EventType() EventType { return EventAck }

type SubscribedEvent struct {
	Subscribed bool `json:"subscribed"`
}

func (SubscribedEvent) EventType() EventType { return EventSubscribed }

type ErrorEvent struct {
	Code            string  `json:"code"`
	Message         string  `json:"message"`
	RetryAfterMs    int64   `json:"retry_after_ms,omitempty"`
	ClientMessageID *string `json:"client_message_id,omitempty"`
}

func (ErrorEvent) EventType() EventType { return EventError }
