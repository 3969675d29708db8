package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
)

// React applies the one-reaction-per-identity policy: the same kind again
// removes the reaction, a different kind replaces it. The reaction row and
// the aggregate on the message change in one transaction.
func (s *Service) React(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID, kind string) (*model.ReactionEvent, error) {
	if _, err := s.member(ctx, actor, roomID); err != nil {
		return nil, err
	}

	if err := s.allow(actor, ratelimit.ActionReaction); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateReaction(kind); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	var result model.ReactionEvent
	err := s.persist(ctx, "failed to save reaction", func(ctx context.Context) error {
		msg, err := live(s.store.GetMessageForUpdate(ctx, roomID, messageID))
		if err != nil {
			return err
		}
		if msg.Reactions == nil {
			msg.Reactions = model.Reactions{}
		}

		action := model.ReactionAdded
		current, has := msg.Reactions.KindOf(actor.UserID)
		switch {
		case has && current == kind:
			action = model.ReactionRemoved
			if err := s.store.DeleteReaction(ctx, msg.ID, actor.UserID); err != nil {
				return err
			}
			msg.Reactions.Remove(actor.UserID)
		default:
			if has {
				action = model.ReactionReplaced
				msg.Reactions.Remove(actor.UserID)
			}
			err := s.store.UpsertReaction(ctx, model.Reaction{
				MessageID: msg.ID,
				UserID:    actor.UserID,
				Kind:      kind,
				CreatedAt: s.now().UTC(),
			})
			if err != nil {
				return err
			}
			msg.Reactions.Add(kind, actor.UserID)
		}

		if err := s.store.UpdateMessage(ctx, msg); err != nil {
			return err
		}

		result = model.ReactionEvent{
			MessageID: msg.ID,
			UserID:    actor.UserID,
			Kind:      kind,
			Action:    action,
			Counts:    msg.Reactions.Counts(),
			Total:     msg.Reactions.Total(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, roomID, result)
	return &result, nil
}

// Reconcile recomputes the reaction aggregate and reply count of every
// message in the room from the underlying rows and repairs any drift. It
// returns the number of messages it rewrote.
func (s *Service) Reconcile(ctx context.Context, roomID string) (int, error) {
	var ids []uuid.UUID
	err := s.read(ctx, "failed to list room messages", func(ctx context.Context) error {
		var err error
		ids, err = s.store.ListRoomMessageIDs(ctx, roomID)
		return err
	})
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range ids {
		fixed, err := s.reconcileMessage(ctx, roomID, id)
		if err != nil {
			s.logger.Error(fmt.Sprintf("failed to reconcile message %s: %v", id, err))
			continue
		}
		if fixed {
			repaired++
		}
	}
	if repaired > 0 {
		s.logger.Warn(fmt.Sprintf("repaired %d messages in room %s", repaired, roomID))
	}
	return repaired, nil
}

func (s *Service) reconcileMessage(ctx context.Context, roomID string, id uuid.UUID) (bool, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	fixed := false
	err := s.persist(ctx, "failed to reconcile message", func(ctx context.Context) error {
		msg, err := s.store.GetMessageForUpdate(ctx, roomID, id)
		if err != nil || msg == nil {
			return err
		}

		replies, err := s.store.CountReplies(ctx, id)
		if err != nil {
			return err
		}

		// Reaction rows of deleted messages may be compacted away; their
		// aggregate is frozen at deletion.
		want := msg.Reactions
		if !msg.IsDeleted() {
			rows, err := s.store.ListReactions(ctx, id)
			if err != nil {
				return err
			}
			want = model.Reactions{}
			for _, r := range rows {
				want.Add(r.Kind, r.UserID)
			}
		}
		if sameReactions(msg.Reactions, want) && msg.ReplyCount == replies {
			return nil
		}

		msg.Reactions = want
		msg.ReplyCount = replies
		fixed = true
		return s.store.UpdateMessage(ctx, msg)
	})
	return fixed, err
}

func sameReactions(a, b model.Reactions) bool {
	if len(a) != len(b) {
		return false
	}
	for kind, users := range a {
		other, ok := b[kind]
		if !ok || len(other) != len(users) {
			return false
		}
		x := append([]string(nil), users...)
		y := append([]string(nil), other...)
		sort.Strings(x)
		sort.Strings(y)
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
	}
	return true
}
