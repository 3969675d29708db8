package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MediaCategory string

const (
	MediaImage    MediaCategory = "image"
	MediaVoice    MediaCategory = "voice"
	MediaVideo    MediaCategory = "video"
	MediaDocument MediaCategory = "document"
)

type MediaRef struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	OwnerID     string        `db:"owner_id" json:"owner_id"`
	Category    MediaCategory `db:"category" json:"category"`
	ContentType string        `db:"content_type" json:"content_type"`
	Size        int64         `db:"size" json:"size"`
	Hash        string        `db:"hash" json:"hash"`
	URL         string        `db:"url" json:"url"`
	Thumbnails  Thumbnails    `db:"thumbnails" json:"thumbnails,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

func (m *MediaRef) Attachment() Attachment {
	return Attachment{
		MediaID:     m.ID,
		Category:    m.Category,
		ContentType: m.ContentType,
		Size:        m.Size,
		URL:         m.URL,
		Thumbnails:  m.Thumbnails,
	}
}

// Thumbnails maps a derivative size (small, medium, large) to its URL.
type Thumbnails map[string]string

func (t Thumbnails) Value() (driver.Value, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t)
}

func (t *Thumbnails) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported thumbnails type %T", src)
	}
	out := Thumbnails{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode thumbnails: %w", err)
	}
	*t = out
	return nil
}
