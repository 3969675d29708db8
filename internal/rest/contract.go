//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/media"
	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/registry"
)

type ChatService interface {
	Send(ctx context.Context, actor model.Identity, in model.SendInput) (*model.Message, bool, error)
	Edit(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID, in model.EditInput) (*model.Message, error)
	Delete(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error)
	Pin(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error)
	React(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID, kind string) (*model.ReactionEvent, error)
	History(ctx context.Context, actor model.Identity, q model.HistoryQuery) (*model.MessagePage, error)
	Search(ctx context.Context, actor model.Identity, q model.SearchQuery) (*model.MessagePage, error)
	Get(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error)
	PinnedList(ctx context.Context, actor model.Identity, roomID string) (model.MessageList, error)
	MarkRead(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) error
}

type MediaIntake interface {
	Stage(ctx context.Context, ownerID string, f media.File) (*model.MediaRef, error)
}

type JWTGenerator interface {
	GenerateConnectToken(identity model.Identity) (string, int64, error)
}

type SessionStats interface {
	Stats() registry.Stats
}

type QueueDepth interface {
	Depth(ctx context.Context) (int, error)
}

type ErrorRate interface {
	ErrorRate() float64
}
