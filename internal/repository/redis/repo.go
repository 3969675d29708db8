package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/config"
	"github.com/s21platform/group-chat-service/internal/model"
)

const (
	lastSeenTTL  = 48 * time.Hour
	typingKeyTTL = time.Minute
)

type Repository struct {
	client *redis.Client
}

func New(cfg *config.Config) *Repository {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &Repository{
		client: rdb,
	}
}

func (r *Repository) Close() {
	_ = r.client.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func typingKey(roomID string) string {
	return fmt.Sprintf("typing:%s", roomID)
}

func lastSeenKey(userID string) string {
	return fmt.Sprintf("lastseen:%s", userID)
}

// typingMember encodes who types where inside a room's sorted set.
func typingMember(userID string, threadID *uuid.UUID) string {
	if threadID == nil {
		return userID
	}
	return userID + "|" + threadID.String()
}

func parseTypingMember(member string) (string, *uuid.UUID) {
	userID, thread, ok := strings.Cut(member, "|")
	if !ok {
		return member, nil
	}
	id, err := uuid.Parse(thread)
	if err != nil {
		return userID, nil
	}
	return userID, &id
}

// Start marks userID as typing until expiresAt. The score is the expiry so
// stale indicators fall out by range.
func (r *Repository) Start(ctx context.Context, roomID string, threadID *uuid.UUID, userID string, expiresAt time.Time) error {
	key := typingKey(roomID)
	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(expiresAt.UnixMilli()), Member: typingMember(userID, threadID)})
	pipe.ExpireAt(ctx, key, expiresAt.Add(typingKeyTTL))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set typing: %w", err)
	}
	return nil
}

func (r *Repository) Stop(ctx context.Context, roomID string, threadID *uuid.UUID, userID string) error {
	err := r.client.ZRem(ctx, typingKey(roomID), typingMember(userID, threadID)).Err()
	if err != nil {
		return fmt.Errorf("failed to clear typing: %w", err)
	}
	return nil
}

func (r *Repository) Active(ctx context.Context, roomID string, now time.Time) ([]model.TypingEvent, error) {
	key := typingKey(roomID)
	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(now.UnixMilli(), 10)).Err(); err != nil {
		return nil, fmt.Errorf("failed to expire typing: %w", err)
	}

	entries, err := r.client.ZRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get typing: %w", err)
	}

	out := make([]model.TypingEvent, 0, len(entries))
	for _, z := range entries {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID, threadID := parseTypingMember(member)
		expiresAt := time.UnixMilli(int64(z.Score)).UTC()
		out = append(out, model.TypingEvent{
			UserID:    userID,
			ThreadID:  threadID,
			Typing:    true,
			ExpiresAt: &expiresAt,
		})
	}
	return out, nil
}

// MarkSeen records that userID had a live connection at the given time.
func (r *Repository) MarkSeen(ctx context.Context, userID string, at time.Time) error {
	err := r.client.Set(ctx, lastSeenKey(userID), at.UnixMilli(), lastSeenTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set last seen: %w", err)
	}
	return nil
}

func (r *Repository) LastSeen(ctx context.Context, userID string) (time.Time, bool, error) {
	ms, err := r.client.Get(ctx, lastSeenKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get last seen: %w", err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}
