package media

import (
	"context"
	"io"

	"github.com/s21platform/group-chat-service/internal/model"
)

type Store interface {
	FindMediaByHash(ctx context.Context, ownerID, hash string) (*model.MediaRef, error)
	SaveMedia(ctx context.Context, ref *model.MediaRef) error
}

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
