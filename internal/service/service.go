// Package service is the single writer of message state. Every mutation
// checks membership, commits under the room lock and then fans the result out
// through the router, so subscribers see events in commit order.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/pkg/keylock"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
	"github.com/s21platform/group-chat-service/internal/pkg/tx"
	"github.com/s21platform/group-chat-service/internal/router"
)

type Config struct {
	EditWindow     time.Duration
	PersistTimeout time.Duration
	TypingTTL      time.Duration
}

type Service struct {
	store     Store
	router    Router
	limiter   Limiter
	typing    TypingStore
	validator Validator
	logger    logger_lib.LoggerInterface
	locks     *keylock.Locker
	cfg       Config
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(
	cfg Config,
	store Store,
	broadcaster Router,
	limiter Limiter,
	typing TypingStore,
	validator Validator,
	logger logger_lib.LoggerInterface,
	opts ...Option,
) *Service {
	if cfg.EditWindow <= 0 {
		cfg.EditWindow = 15 * time.Minute
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	if cfg.TypingTTL <= 0 {
		cfg.TypingTTL = 10 * time.Second
	}
	s := &Service{
		store:     store,
		router:    broadcaster,
		limiter:   limiter,
		typing:    typing,
		validator: validator,
		logger:    logger,
		locks:     keylock.New(),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type originKey struct{}

// WithOrigin marks ctx as coming from a live session. That session is left
// out of the resulting broadcast and answered with an ack instead.
func WithOrigin(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, originKey{}, sessionID)
}

func originOf(ctx context.Context) string {
	id, _ := ctx.Value(originKey{}).(string)
	return id
}

// member loads the actor's membership and fails with the fixed Forbidden
// error for non-members, departed members and premium rooms without the
// entitlement.
func (s *Service) member(ctx context.Context, actor model.Identity, roomID string) (*model.RoomMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	access, err := s.store.RoomAccess(ctx, roomID, actor.UserID)
	if err != nil {
		return nil, apperr.FromStore("failed to check room membership", err)
	}
	if access == nil || !access.Member.Active() {
		return nil, apperr.Forbidden()
	}
	if access.PremiumOnly && !actor.Premium {
		return nil, apperr.Forbidden()
	}
	return access.Member, nil
}

func (s *Service) allow(actor model.Identity, action ratelimit.Action) error {
	retryAfter, ok := s.limiter.Check(actor.UserID, action)
	if !ok {
		s.logger.Warn(fmt.Sprintf("user %s is over the %s budget, retry in %s", actor.UserID, action, retryAfter))
		return apperr.RateLimited(retryAfter)
	}
	return nil
}

// persist runs cb in one transaction bounded by the persistence timeout.
// Failures that are not already classified come back as Transient.
func (s *Service) persist(ctx context.Context, msg string, cb func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	return apperr.FromStore(msg, tx.TxExecute(tx.WithRepo(ctx, s.store), cb))
}

func (s *Service) read(ctx context.Context, msg string, cb func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	return apperr.FromStore(msg, cb(ctx))
}

// live turns a missing or deleted message into NotFound.
func live(msg *model.Message, err error) (*model.Message, error) {
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.IsDeleted() {
		return nil, apperr.NotFound("message")
	}
	return msg, nil
}

// withAttachments fills the attachment lists of msgs in place.
func (s *Service) withAttachments(ctx context.Context, msgs model.MessageList) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsDeleted() {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	byMessage, err := s.store.ListAttachments(ctx, ids)
	if err != nil {
		return err
	}
	for i := range msgs {
		msgs[i].Attachments = byMessage[msgs[i].ID]
	}
	return nil
}

func (s *Service) event(roomID string, data model.EventData) model.Event {
	return model.NewEvent(roomID, data, s.now())
}

func (s *Service) broadcast(ctx context.Context, roomID string, data model.EventData, opts ...router.Option) router.Result {
	if origin := originOf(ctx); origin != "" {
		opts = append(opts, router.ExcludeSession(origin))
	}
	return s.router.Broadcast(ctx, roomID, s.event(roomID, data), opts...)
}

// resolveMentions keeps the requested identities that are active members of
// the room, without the author and without duplicates, in request order.
func resolveMentions(requested []string, members []string, authorID string) []string {
	if len(requested) == 0 {
		return nil
	}
	isMember := make(map[string]struct{}, len(members))
	for _, id := range members {
		isMember[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requested))
	resolved := make([]string, 0, len(requested))
	for _, id := range requested {
		if id == authorID {
			continue
		}
		if _, ok := isMember[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, id)
	}
	return resolved
}
