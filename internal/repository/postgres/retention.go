package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/s21platform/group-chat-service/internal/model"
)

// CompactDeletedReactions drops reaction rows of messages deleted before
// the cutoff. The per-message aggregate keeps the counts.
func (r *Repository) CompactDeletedReactions(ctx context.Context, before time.Time) (int64, error) {
	deleted := sq.Select("id").
		From("messages").
		Where(sq.Eq{"status": model.StatusDeleted}).
		Where(sq.Lt{"deleted_at": before})

	sub, args, err := deleted.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sql query: %v", err)
	}

	query := sq.Delete("message_reactions").
		Where("message_id IN ("+sub+")", args...).
		PlaceholderFormat(sq.Dollar)

	n, err := r.exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to compact reactions: %w", err)
	}
	return n, nil
}

// PurgeDeliveryRecords removes finished records last touched before the
// cutoff. Pending records are never purged.
func (r *Repository) PurgeDeliveryRecords(ctx context.Context, before time.Time) (int64, error) {
	query := sq.Delete("delivery_records").
		Where(sq.NotEq{"status": model.DeliveryPending}).
		Where(sq.Lt{"updated_at": before}).
		PlaceholderFormat(sq.Dollar)

	n, err := r.exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge delivery records: %w", err)
	}
	return n, nil
}
