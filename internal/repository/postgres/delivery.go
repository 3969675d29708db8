package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
)

var deliveryColumns = []string{
	"id",
	"recipient_id",
	"room_id",
	"message_id",
	"event_kind",
	"priority",
	"attempts",
	"next_attempt_at",
	"status",
	"last_error",
	"created_at",
	"updated_at",
}

func (r *Repository) CreateDeliveryRecord(ctx context.Context, rec *model.DeliveryRecord) error {
	query := sq.Insert("delivery_records").
		Columns(deliveryColumns...).
		Values(
			rec.ID,
			rec.RecipientID,
			rec.RoomID,
			rec.MessageID,
			rec.EventKind,
			rec.Priority,
			rec.Attempts,
			rec.NextAttemptAt,
			rec.Status,
			rec.LastError,
			rec.CreatedAt,
			rec.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create delivery record: %w", err)
	}
	return nil
}

// DueDeliveryRecords returns pending records whose next attempt has come,
// highest priority first.
func (r *Repository) DueDeliveryRecords(ctx context.Context, now time.Time, limit int) ([]model.DeliveryRecord, error) {
	query, args, err := sq.Select(deliveryColumns...).
		From("delivery_records").
		Where(sq.Eq{"status": model.DeliveryPending}).
		Where(sq.LtOrEq{"next_attempt_at": now}).
		OrderBy("priority DESC", "next_attempt_at", "created_at").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var records []model.DeliveryRecord
	err = r.Chk(ctx).SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get due deliveries: %w", err)
	}
	return records, nil
}

func (r *Repository) MarkDeliveries(ctx context.Context, ids []uuid.UUID, status model.DeliveryStatus, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := sq.Update("delivery_records").
		Set("status", status).
		Set("updated_at", at).
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to mark deliveries: %w", err)
	}
	return nil
}

func (r *Repository) RescheduleDelivery(ctx context.Context, id uuid.UUID, attempts int, next time.Time, lastErr string) error {
	query := sq.Update("delivery_records").
		Set("attempts", attempts).
		Set("next_attempt_at", next).
		Set("last_error", lastErr).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to reschedule delivery: %w", err)
	}
	return nil
}

func (r *Repository) AbandonDelivery(ctx context.Context, id uuid.UUID, attempts int, lastErr string, at time.Time) error {
	query := sq.Update("delivery_records").
		Set("attempts", attempts).
		Set("status", model.DeliveryAbandoned).
		Set("last_error", lastErr).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to abandon delivery: %w", err)
	}
	return nil
}

func (r *Repository) PendingDeliveryCount(ctx context.Context) (int, error) {
	query := sq.Select("COUNT(*)").
		From("delivery_records").
		Where(sq.Eq{"status": model.DeliveryPending}).
		PlaceholderFormat(sq.Dollar)

	var n int
	if _, err := r.get(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("failed to count pending deliveries: %w", err)
	}
	return n, nil
}
