package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
	"github.com/s21platform/group-chat-service/internal/router"
)

type Store interface {
	RoomAccess(ctx context.Context, roomID, userID string) (*model.Access, error)
	RoomMemberIDs(ctx context.Context, roomID string) ([]string, error)

	SaveMessage(ctx context.Context, msg *model.Message) error
	GetMessage(ctx context.Context, roomID string, id uuid.UUID) (*model.Message, error)
	GetMessageForUpdate(ctx context.Context, roomID string, id uuid.UUID) (*model.Message, error)
	GetMessageByClientID(ctx context.Context, roomID, authorID, clientMessageID string) (*model.Message, error)
	UpdateMessage(ctx context.Context, msg *model.Message) error
	IncrementReplyCount(ctx context.Context, id uuid.UUID) error
	CountReplies(ctx context.Context, id uuid.UUID) (int, error)
	ListMessages(ctx context.Context, roomID string, threadID *uuid.UUID, after *model.Cursor, limit int) (model.MessageList, error)
	SearchMessages(ctx context.Context, roomID, text string, after *model.Cursor, limit int) ([]model.SearchHit, error)
	ListPinned(ctx context.Context, roomID string) (model.MessageList, error)
	ListRoomMessageIDs(ctx context.Context, roomID string) ([]uuid.UUID, error)

	UpsertReaction(ctx context.Context, reaction model.Reaction) error
	DeleteReaction(ctx context.Context, messageID uuid.UUID, userID string) error
	ListReactions(ctx context.Context, messageID uuid.UUID) ([]model.Reaction, error)

	GetStagedMedia(ctx context.Context, ownerID string, ids []uuid.UUID) ([]model.MediaRef, error)
	AttachMedia(ctx context.Context, messageID uuid.UUID, attachments []model.Attachment) error
	ClearAttachments(ctx context.Context, messageID uuid.UUID) error
	ListAttachments(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]model.Attachment, error)

	UpsertReadMarker(ctx context.Context, marker model.ReadMarker) error

	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}

type Router interface {
	Broadcast(ctx context.Context, roomID string, ev model.Event, opts ...router.Option) router.Result
	SendToUser(userID string, ev model.Event) bool
	Notify(ctx context.Context, userID string, ev model.Event, priority model.Priority) bool
}

type Limiter interface {
	Check(identity string, action ratelimit.Action) (time.Duration, bool)
}

type TypingStore interface {
	Start(ctx context.Context, roomID string, threadID *uuid.UUID, userID string, expiresAt time.Time) error
	Stop(ctx context.Context, roomID string, threadID *uuid.UUID, userID string) error
	Active(ctx context.Context, roomID string, now time.Time) ([]model.TypingEvent, error)
}

type Validator interface {
	ValidateSendMessage(req *model.SendInput) error
	ValidateEditMessage(req *model.EditInput) error
	ValidateReaction(kind string) error
	ValidateSearchQuery(q string) error
	PageLimit(limit int) int
}
