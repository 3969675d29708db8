package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/s21platform/group-chat-service/internal/model"
)

type accessRow struct {
	PremiumOnly    bool        `db:"premium_only"`
	TracksPresence bool        `db:"tracks_presence"`
	UserID         *string     `db:"user_id"`
	Role           *model.Role `db:"role"`
	JoinedAt       *time.Time  `db:"joined_at"`
	LeftAt         *time.Time  `db:"left_at"`
}

func (r *Repository) RoomAccess(ctx context.Context, roomID, userID string) (*model.Access, error) {
	query := sq.Select(
		"r.premium_only",
		"r.tracks_presence",
		"m.user_id",
		"m.role",
		"m.joined_at",
		"m.left_at",
	).
		From("rooms r").
		LeftJoin("room_members m ON m.room_id = r.id AND m.user_id = ?", userID).
		Where(sq.Eq{"r.id": roomID}).
		PlaceholderFormat(sq.Dollar)

	var row accessRow
	found, err := r.get(ctx, &row, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get room access: %w", err)
	}
	if !found {
		return nil, nil
	}

	access := &model.Access{PremiumOnly: row.PremiumOnly, Presence: row.TracksPresence}
	if row.UserID != nil && row.Role != nil {
		access.Member = &model.RoomMember{
			RoomID: roomID,
			UserID: *row.UserID,
			Role:   *row.Role,
			LeftAt: row.LeftAt,
		}
		if row.JoinedAt != nil {
			access.Member.JoinedAt = *row.JoinedAt
		}
	}
	return access, nil
}

func (r *Repository) RoomMemberIDs(ctx context.Context, roomID string) ([]string, error) {
	query, args, err := sq.Select("user_id").
		From("room_members").
		Where(sq.Eq{
			"room_id": roomID,
			"left_at": nil,
		}).
		OrderBy("user_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var ids []string
	err = r.Chk(ctx).SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get room members: %w", err)
	}
	return ids, nil
}

func (r *Repository) ListRoomIDs(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("id").
		From("rooms").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var ids []string
	err = r.Chk(ctx).SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return ids, nil
}

// UpsertRoom creates the room on first sight. Flags are only overwritten
// when given.
func (r *Repository) UpsertRoom(ctx context.Context, roomID string, premiumOnly, tracksPresence *bool) error {
	insert := sq.Insert("rooms").
		Columns("id", "premium_only", "tracks_presence").
		Values(roomID, premiumOnly != nil && *premiumOnly, tracksPresence != nil && *tracksPresence)
	if premiumOnly == nil && tracksPresence == nil {
		insert = insert.Suffix("ON CONFLICT (id) DO NOTHING")
	} else {
		insert = insert.Suffix("ON CONFLICT (id) DO UPDATE SET "+
			"premium_only = COALESCE(?, rooms.premium_only), "+
			"tracks_presence = COALESCE(?, rooms.tracks_presence)", premiumOnly, tracksPresence)
	}

	if _, err := r.exec(ctx, insert.PlaceholderFormat(sq.Dollar)); err != nil {
		return fmt.Errorf("failed to upsert room: %w", err)
	}
	return nil
}

// UpsertRoomMember joins or re-joins userID, clearing any previous leave.
func (r *Repository) UpsertRoomMember(ctx context.Context, member model.RoomMember) error {
	query := sq.Insert("room_members").
		Columns("room_id", "user_id", "role", "joined_at").
		Values(member.RoomID, member.UserID, member.Role, member.JoinedAt).
		Suffix("ON CONFLICT (room_id, user_id) DO UPDATE SET role = EXCLUDED.role, " +
			"joined_at = CASE WHEN room_members.left_at IS NULL THEN room_members.joined_at ELSE EXCLUDED.joined_at END, " +
			"left_at = NULL").
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to upsert room member: %w", err)
	}
	return nil
}

func (r *Repository) UpdateMemberRole(ctx context.Context, roomID, userID string, role model.Role) error {
	query := sq.Update("room_members").
		Set("role", role).
		Where(sq.Eq{
			"room_id": roomID,
			"user_id": userID,
			"left_at": nil,
		}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return nil
}

func (r *Repository) RemoveRoomMember(ctx context.Context, roomID, userID string, at time.Time) error {
	query := sq.Update("room_members").
		Set("left_at", at).
		Where(sq.Eq{
			"room_id": roomID,
			"user_id": userID,
			"left_at": nil,
		}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to remove room member: %w", err)
	}
	return nil
}
