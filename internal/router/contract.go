package router

import (
	"context"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/registry"
)

type SessionSource interface {
	Subscribers(roomID string) []*registry.Session
	SessionsOf(userID string) []*registry.Session
	Session(sessionID string) *registry.Session
	Unregister(sessionID string, reason registry.CloseReason)
}

type MemberSource interface {
	RoomMemberIDs(ctx context.Context, roomID string) ([]string, error)
}

type OfflineQueue interface {
	Enqueue(ctx context.Context, recipientID string, payload model.DeliveryPayload, priority model.Priority) error
}
