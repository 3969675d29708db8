package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cursor is the keyset position after the last returned message. Rank is
// only set for search results.
type Cursor struct {
	Rank      *float64  `json:"r,omitempty"`
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
}

func (c Cursor) Encode() string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse cursor: %w", err)
	}
	if c.ID == uuid.Nil || c.CreatedAt.IsZero() {
		return nil, fmt.Errorf("cursor is incomplete")
	}
	return &c, nil
}

type MessagePage struct {
	Messages   MessageList `json:"messages"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// SearchHit is a message with its full-text relevance.
type SearchHit struct {
	Message
	Rank float64 `db:"rank" json:"rank"`
}
