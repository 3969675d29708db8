package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
)

type Error struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type SendMessageRequest struct {
	ThreadID        *uuid.UUID        `json:"thread_id,omitempty"`
	ClientMessageID *string           `json:"client_message_id,omitempty"`
	Type            model.ContentType `json:"type"`
	Body            string            `json:"body"`
	MediaIDs        []uuid.UUID       `json:"media_ids,omitempty"`
	Mentions        []string          `json:"mentions,omitempty"`
}

type SendMessageResponse struct {
	Message   model.Message `json:"message"`
	Duplicate bool          `json:"duplicate"`
}

type EditMessageRequest struct {
	Body     string   `json:"body"`
	Mentions []string `json:"mentions,omitempty"`
}

type ReactRequest struct {
	Kind string `json:"kind"`
}

type MarkReadRequest struct {
	MessageID uuid.UUID `json:"message_id"`
}

type GetMessagesParams struct {
	Cursor   *string
	Limit    *int
	ThreadID *uuid.UUID
}

type SearchMessagesParams struct {
	Q      string
	Cursor *string
	Limit  *int
}

type PinnedMessagesResponse struct {
	Messages model.MessageList `json:"messages"`
}

type ConnectTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Connections int            `json:"connections"`
	Users       int            `json:"users"`
	Rooms       map[string]int `json:"rooms"`
	QueueDepth  int            `json:"queue_depth"`
	ErrorRate   float64        `json:"error_rate"`
	CheckedAt   time.Time      `json:"checked_at"`
}
