package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
)

func (r *Repository) UpsertReaction(ctx context.Context, reaction model.Reaction) error {
	query := sq.Insert("message_reactions").
		Columns("message_id", "user_id", "kind", "created_at").
		Values(reaction.MessageID, reaction.UserID, reaction.Kind, reaction.CreatedAt).
		Suffix("ON CONFLICT (message_id, user_id) DO UPDATE SET kind = EXCLUDED.kind, created_at = EXCLUDED.created_at").
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to save reaction: %w", err)
	}
	return nil
}

func (r *Repository) DeleteReaction(ctx context.Context, messageID uuid.UUID, userID string) error {
	query := sq.Delete("message_reactions").
		Where(sq.Eq{"message_id": messageID, "user_id": userID}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	return nil
}

func (r *Repository) ListReactions(ctx context.Context, messageID uuid.UUID) ([]model.Reaction, error) {
	query, args, err := sq.Select("message_id", "user_id", "kind", "created_at").
		From("message_reactions").
		Where(sq.Eq{"message_id": messageID}).
		OrderBy("created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var reactions []model.Reaction
	err = r.Chk(ctx).SelectContext(ctx, &reactions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	return reactions, nil
}
