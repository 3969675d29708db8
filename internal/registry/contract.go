package registry

import (
	"context"

	"github.com/s21platform/group-chat-service/internal/model"
)

// AccessChecker resolves a user's standing in a room. A nil Access means
// the room does not exist or the user never joined it.
type AccessChecker interface {
	RoomAccess(ctx context.Context, roomID, userID string) (*model.Access, error)
}

type AccessCheckerFunc func(ctx context.Context, roomID, userID string) (*model.Access, error)

func (f AccessCheckerFunc) RoomAccess(ctx context.Context, roomID, userID string) (*model.Access, error) {
	return f(ctx, roomID, userID)
}
