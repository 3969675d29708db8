package ws

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/registry"
)

type ChatService interface {
	Send(ctx context.Context, actor model.Identity, in model.SendInput) (*model.Message, bool, error)
	Edit(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID, in model.EditInput) (*model.Message, error)
	Delete(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error)
	React(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID, kind string) (*model.ReactionEvent, error)
	MarkRead(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) error
	Typing(ctx context.Context, actor model.Identity, roomID string, threadID *uuid.UUID, typing bool) error
	ActiveTyping(ctx context.Context, roomID string) []model.TypingEvent
}

type Sessions interface {
	Register(identity model.Identity, transport registry.Transport) (string, error)
	Subscribe(ctx context.Context, sessionID, roomID string) error
	Unsubscribe(sessionID, roomID string)
	Unregister(sessionID string, reason registry.CloseReason)
	Touch(sessionID string)
}

type TokenValidator interface {
	ValidateConnectToken(token string) (model.Identity, time.Time, error)
}

type Observer interface {
	Observe(surface string, kind apperr.Kind)
}

type SeenMarker interface {
	MarkSeen(ctx context.Context, userID string, at time.Time) error
}
