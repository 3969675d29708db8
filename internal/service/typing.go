package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
	"github.com/s21platform/group-chat-service/internal/router"
)

// Typing records or clears a typing indicator and tells the room. Indicators
// expire on their own after the typing TTL; the latest call wins.
func (s *Service) Typing(ctx context.Context, actor model.Identity, roomID string, threadID *uuid.UUID, typing bool) error {
	if _, err := s.member(ctx, actor, roomID); err != nil {
		return err
	}

	if typing {
		if err := s.allow(actor, ratelimit.ActionTyping); err != nil {
			return err
		}
	}

	ev := model.TypingEvent{UserID: actor.UserID, ThreadID: threadID, Typing: typing}
	if s.typing != nil {
		var err error
		if typing {
			expiresAt := s.now().Add(s.cfg.TypingTTL).UTC()
			ev.ExpiresAt = &expiresAt
			err = s.typing.Start(ctx, roomID, threadID, actor.UserID, expiresAt)
		} else {
			err = s.typing.Stop(ctx, roomID, threadID, actor.UserID)
		}
		if err != nil {
			s.logger.Warn(fmt.Sprintf("failed to update typing indicator in room %s: %v", roomID, err))
		}
	}

	s.broadcast(ctx, roomID, ev, router.WithoutOffline())
	return nil
}

// ActiveTyping lists unexpired indicators so a fresh subscriber can catch up.
func (s *Service) ActiveTyping(ctx context.Context, roomID string) []model.TypingEvent {
	if s.typing == nil {
		return nil
	}
	events, err := s.typing.Active(ctx, roomID, s.now())
	if err != nil {
		s.logger.Warn(fmt.Sprintf("failed to load typing indicators for room %s: %v", roomID, err))
		return nil
	}
	return events
}
