//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package membership

import (
	"context"
	"time"

	"github.com/s21platform/group-chat-service/internal/model"
)

type DBRepo interface {
	UpsertRoom(ctx context.Context, roomID string, premiumOnly, tracksPresence *bool) error
	UpsertRoomMember(ctx context.Context, member model.RoomMember) error
	UpdateMemberRole(ctx context.Context, roomID, userID string, role model.Role) error
	RemoveRoomMember(ctx context.Context, roomID, userID string, at time.Time) error

	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}
