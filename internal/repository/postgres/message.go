package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
)

var messageColumns = []string{
	"id",
	"room_id",
	"thread_id",
	"author_id",
	"client_message_id",
	"type",
	"body",
	"mentions",
	"status",
	"pinned",
	"pinned_by",
	"reply_count",
	"reactions",
	"created_at",
	"edited_at",
	"deleted_at",
}

const searchVector = "to_tsvector('simple', body)"

func (r *Repository) SaveMessage(ctx context.Context, msg *model.Message) error {
	query := sq.Insert("messages").
		Columns(messageColumns...).
		Values(
			msg.ID,
			msg.RoomID,
			msg.ThreadID,
			msg.AuthorID,
			msg.ClientMessageID,
			msg.Type,
			msg.Body,
			msg.Mentions,
			msg.Status,
			msg.Pinned,
			msg.PinnedBy,
			msg.ReplyCount,
			msg.Reactions,
			msg.CreatedAt,
			msg.EditedAt,
			msg.DeletedAt,
		).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *Repository) getMessage(ctx context.Context, where sq.Eq, suffix string) (*model.Message, error) {
	query := sq.Select(messageColumns...).
		From("messages").
		Where(where).
		PlaceholderFormat(sq.Dollar)
	if suffix != "" {
		query = query.Suffix(suffix)
	}

	var msg model.Message
	found, err := r.get(ctx, &msg, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &msg, nil
}

func (r *Repository) GetMessage(ctx context.Context, roomID string, id uuid.UUID) (*model.Message, error) {
	return r.getMessage(ctx, sq.Eq{"id": id, "room_id": roomID}, "")
}

// GetMessageForUpdate locks the row until the surrounding transaction ends.
func (r *Repository) GetMessageForUpdate(ctx context.Context, roomID string, id uuid.UUID) (*model.Message, error) {
	return r.getMessage(ctx, sq.Eq{"id": id, "room_id": roomID}, "FOR UPDATE")
}

func (r *Repository) GetMessageByClientID(ctx context.Context, roomID, authorID, clientMessageID string) (*model.Message, error) {
	return r.getMessage(ctx, sq.Eq{"room_id": roomID, "author_id": authorID, "client_message_id": clientMessageID}, "")
}

func (r *Repository) GetMessagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Message, error) {
	out := make(map[uuid.UUID]model.Message, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.Chk(ctx).SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	for _, msg := range messages {
		out[msg.ID] = msg
	}
	return out, nil
}

func (r *Repository) UpdateMessage(ctx context.Context, msg *model.Message) error {
	query := sq.Update("messages").
		SetMap(map[string]interface{}{
			"body":        msg.Body,
			"mentions":    msg.Mentions,
			"status":      msg.Status,
			"pinned":      msg.Pinned,
			"pinned_by":   msg.PinnedBy,
			"reply_count": msg.ReplyCount,
			"reactions":   msg.Reactions,
			"edited_at":   msg.EditedAt,
			"deleted_at":  msg.DeletedAt,
		}).
		Where(sq.Eq{"id": msg.ID}).
		PlaceholderFormat(sq.Dollar)

	n, err := r.exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to update message: %s not found", msg.ID)
	}
	return nil
}

func (r *Repository) IncrementReplyCount(ctx context.Context, id uuid.UUID) error {
	query := sq.Update("messages").
		Set("reply_count", sq.Expr("reply_count + 1")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to increment reply count: %w", err)
	}
	return nil
}

func (r *Repository) CountReplies(ctx context.Context, id uuid.UUID) (int, error) {
	query := sq.Select("COUNT(*)").
		From("messages").
		Where(sq.Eq{"thread_id": id}).
		PlaceholderFormat(sq.Dollar)

	var n int
	if _, err := r.get(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return n, nil
}

// ListMessages pages a room newest first. A nil threadID lists top-level
// messages only.
func (r *Repository) ListMessages(ctx context.Context, roomID string, threadID *uuid.UUID, after *model.Cursor, limit int) (model.MessageList, error) {
	queryBuilder := sq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"room_id": roomID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	if threadID == nil {
		queryBuilder = queryBuilder.Where(sq.Eq{"thread_id": nil})
	} else {
		queryBuilder = queryBuilder.Where(sq.Eq{"thread_id": *threadID})
	}
	if after != nil {
		queryBuilder = queryBuilder.Where(sq.Expr("(created_at, id) < (?, ?)", after.CreatedAt, after.ID))
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.Chk(ctx).SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// SearchMessages ranks live messages of a room by full-text relevance, ties
// broken newest first.
func (r *Repository) SearchMessages(ctx context.Context, roomID, text string, after *model.Cursor, limit int) ([]model.SearchHit, error) {
	rank := "ts_rank(" + searchVector + ", plainto_tsquery('simple', ?))::float8"

	queryBuilder := sq.Select(messageColumns...).
		Column(sq.Expr(rank+" AS rank", text)).
		From("messages").
		Where(sq.Eq{"room_id": roomID}).
		Where(sq.NotEq{"status": model.StatusDeleted}).
		Where(sq.Expr(searchVector+" @@ plainto_tsquery('simple', ?)", text)).
		OrderBy("rank DESC", "created_at DESC", "id DESC").
		Limit(uint64(limit))

	if after != nil && after.Rank != nil {
		queryBuilder = queryBuilder.Where(sq.Expr("("+rank+", created_at, id) < (?, ?, ?)", text, *after.Rank, after.CreatedAt, after.ID))
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var hits []model.SearchHit
	err = r.Chk(ctx).SelectContext(ctx, &hits, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return hits, nil
}

func (r *Repository) ListPinned(ctx context.Context, roomID string) (model.MessageList, error) {
	query, args, err := sq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"room_id": roomID, "pinned": true}).
		Where(sq.NotEq{"status": model.StatusDeleted}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.Chk(ctx).SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pinned messages: %w", err)
	}
	return messages, nil
}

func (r *Repository) ListRoomMessageIDs(ctx context.Context, roomID string) ([]uuid.UUID, error) {
	query, args, err := sq.Select("id").
		From("messages").
		Where(sq.Eq{"room_id": roomID}).
		OrderBy("created_at", "id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var ids []uuid.UUID
	err = r.Chk(ctx).SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list room messages: %w", err)
	}
	return ids, nil
}

func (r *Repository) UpsertReadMarker(ctx context.Context, marker model.ReadMarker) error {
	query := sq.Insert("read_markers").
		Columns("room_id", "user_id", "message_id", "read_at").
		Values(marker.RoomID, marker.UserID, marker.MessageID, marker.ReadAt).
		Suffix("ON CONFLICT (room_id, user_id) DO UPDATE SET message_id = EXCLUDED.message_id, read_at = EXCLUDED.read_at").
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to save read marker: %w", err)
	}
	return nil
}
