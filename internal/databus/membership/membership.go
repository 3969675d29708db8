// Package membership applies room membership changes published by the room
// management service.
package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/config"
	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/tx"
)

type Action string

const (
	ActionJoin  Action = "join"
	ActionRole  Action = "role"
	ActionLeave Action = "leave"
)

type Event struct {
	RoomID         string     `json:"room_id"`
	UserID         string     `json:"user_id"`
	Role           model.Role `json:"role,omitempty"`
	Action         Action     `json:"action"`
	PremiumOnly    *bool      `json:"premium_only,omitempty"`
	TracksPresence *bool      `json:"tracks_presence,omitempty"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
}

type Handler struct {
	dbR DBRepo
	now func() time.Time
}

func New(dbR DBRepo) *Handler {
	return &Handler{dbR: dbR, now: time.Now}
}

// Handler applies one membership event. Malformed events are logged and
// skipped; storage failures are returned so the consumer retries.
func (h *Handler) Handler(ctx context.Context, in []byte) error {
	logger := logger_lib.FromContext(ctx, config.KeyLogger)
	logger.AddFuncName("MembershipHandler")

	var ev Event
	if err := json.Unmarshal(in, &ev); err != nil {
		logger.Error(fmt.Sprintf("failed to unmarshal membership event: %v", err))
		return nil
	}
	if err := validate(&ev); err != nil {
		logger.Error(fmt.Sprintf("skipping membership event: %v", err))
		return nil
	}

	at := h.now().UTC()
	if ev.OccurredAt != nil {
		at = ev.OccurredAt.UTC()
	}

	err := tx.TxExecute(tx.WithRepo(ctx, h.dbR), func(ctx context.Context) error {
		if err := h.dbR.UpsertRoom(ctx, ev.RoomID, ev.PremiumOnly, ev.TracksPresence); err != nil {
			return err
		}

		switch ev.Action {
		case ActionJoin:
			return h.dbR.UpsertRoomMember(ctx, model.RoomMember{
				RoomID:   ev.RoomID,
				UserID:   ev.UserID,
				Role:     ev.Role,
				JoinedAt: at,
			})
		case ActionRole:
			return h.dbR.UpdateMemberRole(ctx, ev.RoomID, ev.UserID, ev.Role)
		default:
			return h.dbR.RemoveRoomMember(ctx, ev.RoomID, ev.UserID, at)
		}
	})
	if err != nil {
		logger.Error(fmt.Sprintf("failed to apply %s of %s in %s: %v", ev.Action, ev.UserID, ev.RoomID, err))
		return fmt.Errorf("failed to apply membership event: %w", err)
	}

	logger.Info(fmt.Sprintf("applied %s of %s in %s", ev.Action, ev.UserID, ev.RoomID))
	return nil
}

func validate(ev *Event) error {
	if ev.RoomID == "" || ev.UserID == "" {
		return fmt.Errorf("room_id and user_id are required")
	}
	switch ev.Action {
	case ActionJoin:
		if ev.Role == "" {
			ev.Role = model.RoleMember
		}
	case ActionRole:
	case ActionLeave:
		return nil
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	if !ev.Role.Valid() {
		return fmt.Errorf("unknown role %q", ev.Role)
	}
	return nil
}
