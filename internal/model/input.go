package model

import "github.com/google/uuid"

type SendInput struct {
	RoomID          string      `json:"room_id"`
	ThreadID        *uuid.UUID  `json:"thread_id,omitempty"`
	ClientMessageID *string     `json:"client_message_id,omitempty"`
	Type            ContentType `json:"type"`
	Body            string      `json:"body"`
	MediaIDs        []uuid.UUID `json:"media_ids,omitempty"`
	Mentions        []string    `json:"mentions,omitempty"`
}

type EditInput struct {
	Body     string   `json:"body"`
	Mentions []string `json:"mentions,omitempty"`
}

type HistoryQuery struct {
	RoomID   string
	ThreadID *uuid.UUID
	Cursor   string
	Limit    int
}

type SearchQuery struct {
	RoomID string
	Text   string
	Cursor string
	Limit  int
}
