package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
)

var mediaColumns = []string{
	"id",
	"owner_id",
	"category",
	"content_type",
	"size",
	"hash",
	"url",
	"thumbnails",
	"created_at",
}

func (r *Repository) SaveMedia(ctx context.Context, ref *model.MediaRef) error {
	query := sq.Insert("media").
		Columns(mediaColumns...).
		Values(ref.ID, ref.OwnerID, ref.Category, ref.ContentType, ref.Size, ref.Hash, ref.URL, ref.Thumbnails, ref.CreatedAt).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to save media: %w", err)
	}
	return nil
}

func (r *Repository) FindMediaByHash(ctx context.Context, ownerID, hash string) (*model.MediaRef, error) {
	query := sq.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"owner_id": ownerID, "hash": hash}).
		OrderBy("created_at").
		Limit(1).
		PlaceholderFormat(sq.Dollar)

	var ref model.MediaRef
	found, err := r.get(ctx, &ref, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find media: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &ref, nil
}

func (r *Repository) GetStagedMedia(ctx context.Context, ownerID string, ids []uuid.UUID) ([]model.MediaRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sq.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"owner_id": ownerID, "id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var refs []model.MediaRef
	err = r.Chk(ctx).SelectContext(ctx, &refs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged media: %w", err)
	}
	return refs, nil
}

func (r *Repository) AttachMedia(ctx context.Context, messageID uuid.UUID, attachments []model.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}

	query := sq.Insert("message_attachments").
		Columns("message_id", "media_id", "position").
		PlaceholderFormat(sq.Dollar)
	for i, a := range attachments {
		query = query.Values(messageID, a.MediaID, i)
	}

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to attach media: %w", err)
	}
	return nil
}

func (r *Repository) ClearAttachments(ctx context.Context, messageID uuid.UUID) error {
	query := sq.Delete("message_attachments").
		Where(sq.Eq{"message_id": messageID}).
		PlaceholderFormat(sq.Dollar)

	if _, err := r.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to clear attachments: %w", err)
	}
	return nil
}

type attachmentRow struct {
	MessageID uuid.UUID `db:"message_id"`
	model.Attachment
}

func (r *Repository) ListAttachments(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]model.Attachment, error) {
	out := make(map[uuid.UUID][]model.Attachment)
	if len(messageIDs) == 0 {
		return out, nil
	}

	query, args, err := sq.Select(
		"a.message_id",
		"m.id AS media_id",
		"m.category",
		"m.content_type",
		"m.size",
		"m.url",
		"m.thumbnails",
	).
		From("message_attachments a").
		Join("media m ON m.id = a.media_id").
		Where(sq.Eq{"a.message_id": messageIDs}).
		OrderBy("a.message_id", "a.position").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rows []attachmentRow
	err = r.Chk(ctx).SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	for _, row := range rows {
		out[row.MessageID] = append(out[row.MessageID], row.Attachment)
	}
	return out, nil
}
