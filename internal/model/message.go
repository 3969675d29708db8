package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ContentType string

const (
	TextMessageType         ContentType = "text"
	ImageMessageType        ContentType = "image"
	VoiceMessageType        ContentType = "voice"
	VideoMessageType        ContentType = "video"
	FileMessageType         ContentType = "file"
	SystemMessageType       ContentType = "system"
	AnnouncementMessageType ContentType = "announcement"
)

func (c ContentType) Valid() bool {
	switch c {
	case TextMessageType, ImageMessageType, VoiceMessageType, VideoMessageType,
		FileMessageType, SystemMessageType, AnnouncementMessageType:
		return true
	}
	return false
}

type MessageStatus string

const (
	StatusActive  MessageStatus = "active"
	StatusEdited  MessageStatus = "edited"
	StatusDeleted MessageStatus = "deleted"
)

// DeletedMarker replaces the body of a soft-deleted message in every
// client-facing representation.
const DeletedMarker = "This message was deleted"

type MessageList []Message

type Message struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	RoomID          string         `db:"room_id" json:"room_id"`
	ThreadID        *uuid.UUID     `db:"thread_id" json:"thread_id,omitempty"`
	AuthorID        string         `db:"author_id" json:"author_id"`
	ClientMessageID *string        `db:"client_message_id" json:"client_message_id,omitempty"`
	Type            ContentType    `db:"type" json:"type"`
	Body            string         `db:"body" json:"body"`
	Attachments     []Attachment   `db:"-" json:"attachments"`
	Mentions        pq.StringArray `db:"mentions" json:"mentions"`
	Status          MessageStatus  `db:"status" json:"status"`
	Pinned          bool           `db:"pinned" json:"pinned"`
	PinnedBy        *string        `db:"pinned_by" json:"pinned_by,omitempty"`
	ReplyCount      int            `db:"reply_count" json:"reply_count"`
	Reactions       Reactions      `db:"reactions" json:"reactions"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	EditedAt        *time.Time     `db:"edited_at" json:"edited_at,omitempty"`
	DeletedAt       *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (m *Message) IsDeleted() bool {
	return m.Status == StatusDeleted
}

// SoftDelete clears content but keeps identity, authorship, thread linkage,
// reactions and reply count.
func (m *Message) SoftDelete(at time.Time) {
	m.Status = StatusDeleted
	m.Body = ""
	m.Attachments = nil
	m.Mentions = nil
	m.DeletedAt = &at
}

// Rendered is the client-facing copy of the message.
func (m Message) Rendered() Message {
	if m.IsDeleted() {
		m.Body = DeletedMarker
		m.Attachments = []Attachment{}
	}
	if m.Attachments == nil {
		m.Attachments = []Attachment{}
	}
	if m.Mentions == nil {
		m.Mentions = pq.StringArray{}
	}
	if m.Reactions == nil {
		m.Reactions = Reactions{}
	}
	return m
}

type Attachment struct {
	MediaID     uuid.UUID     `db:"media_id" json:"media_id"`
	Category    MediaCategory `db:"category" json:"category"`
	ContentType string        `db:"content_type" json:"content_type"`
	Size        int64         `db:"size" json:"size"`
	URL         string        `db:"url" json:"url"`
	Thumbnails  Thumbnails    `db:"thumbnails" json:"thumbnails,omitempty"`
}

// Reactions is the per-message aggregate: reaction kind -> reactor ids.
// One identity appears under at most one kind.
type Reactions map[string][]string

func (r Reactions) Counts() map[string]int {
	counts := make(map[string]int, len(r))
	for kind, users := range r {
		counts[kind] = len(users)
	}
	return counts
}

func (r Reactions) Total() int {
	total := 0
	for _, users := range r {
		total += len(users)
	}
	return total
}

// KindOf returns the kind userID currently reacts with.
func (r Reactions) KindOf(userID string) (string, bool) {
	for kind, users := range r {
		for _, u := range users {
			if u == userID {
				return kind, true
			}
		}
	}
	return "", false
}

func (r Reactions) Remove(userID string) {
	for kind, users := range r {
		for i, u := range users {
			if u == userID {
				users = append(users[:i], users[i+1:]...)
				break
			}
		}
		if len(users) == 0 {
			delete(r, kind)
		} else {
			r[kind] = users
		}
	}
}

func (r Reactions) Add(kind, userID string) {
	r[kind] = append(r[kind], userID)
	sort.Strings(r[kind])
}

func (r Reactions) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *Reactions) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = Reactions{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported reactions type %T", src)
	}
	out := Reactions{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode reactions: %w", err)
	}
	*r = out
	return nil
}

type Reaction struct {
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ReactionAction string

const (
	ReactionAdded    ReactionAction = "added"
	ReactionRemoved  ReactionAction = "removed"
	ReactionReplaced ReactionAction = "replaced"
)

type ReadMarker struct {
	RoomID    string    `db:"room_id" json:"room_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
}

const previewLength = 120

// Preview is a short plain-text summary for notifications.
func (m *Message) Preview() string {
	if m.IsDeleted() {
		return DeletedMarker
	}
	body := []rune(m.Body)
	if len(body) > previewLength {
		return string(body[:previewLength]) + "…"
	}
	if len(body) == 0 {
		return fmt.Sprintf("[%s]", m.Type)
	}
	return string(body)
}
