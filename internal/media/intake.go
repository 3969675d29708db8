// Package media validates uploads and stages them in object storage before
// they are attached to a message.
package media

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
)

var allowed = map[model.MediaCategory][]string{
	model.MediaImage: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	model.MediaVoice: {"audio/mpeg", "audio/ogg", "audio/wav", "audio/x-m4a", "audio/aac", "audio/webm"},
	model.MediaVideo: {"video/mp4", "video/webm", "video/quicktime"},
	model.MediaDocument: {
		"application/pdf",
		"text/plain",
		"application/zip",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	},
}

// Limits are per-category size ceilings in bytes.
type Limits struct {
	Image    int64
	Voice    int64
	Video    int64
	Document int64
}

func (l Limits) of(category model.MediaCategory) int64 {
	switch category {
	case model.MediaImage:
		return l.Image
	case model.MediaVoice:
		return l.Voice
	case model.MediaVideo:
		return l.Video
	default:
		return l.Document
	}
}

type File struct {
	Name         string
	DeclaredType string
	Body         io.Reader
}

type Intake struct {
	store   Store
	objects ObjectStore
	limits  Limits
	logger  logger_lib.LoggerInterface
	now     func() time.Time
}

func New(limits Limits, store Store, objects ObjectStore, logger logger_lib.LoggerInterface) *Intake {
	if limits.Image <= 0 {
		limits.Image = 10 << 20
	}
	if limits.Voice <= 0 {
		limits.Voice = 20 << 20
	}
	if limits.Video <= 0 {
		limits.Video = 100 << 20
	}
	if limits.Document <= 0 {
		limits.Document = 25 << 20
	}
	return &Intake{
		store:   store,
		objects: objects,
		limits:  limits,
		logger:  logger,
		now:     time.Now,
	}
}

// Stage checks the declared type against the allow-lists and the sniffed
// content, stores the object with its derivatives and returns a reference
// that can later be attached to a message. Uploading the same bytes twice
// returns the first reference.
func (i *Intake) Stage(ctx context.Context, ownerID string, f File) (*model.MediaRef, error) {
	declared, _, err := mime.ParseMediaType(f.DeclaredType)
	if err != nil {
		return nil, apperr.Validation("invalid content type %q", f.DeclaredType)
	}
	category, ok := categoryOf(declared)
	if !ok {
		return nil, apperr.Validation("content type %s is not allowed", declared)
	}

	limit := i.limits.of(category)
	data, err := io.ReadAll(io.LimitReader(f.Body, limit+1))
	if err != nil {
		return nil, apperr.Validation("failed to read upload")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	if int64(len(data)) > limit {
		return nil, apperr.Validation("%s exceeds %d bytes", category, limit)
	}

	detected := mimetype.Detect(data)
	if !conforms(detected, declared) {
		return nil, apperr.Validation("content does not match declared type %s", declared)
	}

	sum := blake3.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	existing, err := i.store.FindMediaByHash(ctx, ownerID, hash)
	if err != nil {
		return nil, apperr.FromStore("failed to look up media", err)
	}
	if existing != nil {
		return existing, nil
	}

	ref := &model.MediaRef{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Category:    category,
		ContentType: declared,
		Size:        int64(len(data)),
		Hash:        hash,
		CreatedAt:   i.now().UTC(),
	}

	key := fmt.Sprintf("%s/%s%s", ownerID, ref.ID, detected.Extension())
	ref.URL, err = i.objects.Put(ctx, key, declared, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Transient("failed to store media", err)
	}

	if category == model.MediaImage {
		ref.Thumbnails = i.thumbnails(ctx, ownerID, ref.ID, data)
	}

	if err := i.store.SaveMedia(ctx, ref); err != nil {
		return nil, apperr.FromStore("failed to save media", err)
	}
	return ref, nil
}

func categoryOf(contentType string) (model.MediaCategory, bool) {
	for category, types := range allowed {
		for _, t := range types {
			if t == contentType {
				return category, true
			}
		}
	}
	return "", false
}

// conforms reports whether the sniffed type is the declared one or a more
// specific form of it, such as JSON declared as text/plain.
func conforms(detected *mimetype.MIME, declared string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return true
		}
	}
	return false
}
