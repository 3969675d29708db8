package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/router"
)

// History pages backwards from the cursor, newest first. Keyset pagination on
// (created_at, id) keeps pages stable while new messages arrive.
func (s *Service) History(ctx context.Context, actor model.Identity, q model.HistoryQuery) (*model.MessagePage, error) {
	if _, err := s.member(ctx, actor, q.RoomID); err != nil {
		return nil, err
	}

	cursor, err := model.DecodeCursor(q.Cursor)
	if err != nil {
		return nil, apperr.Validation("invalid cursor")
	}
	limit := s.validator.PageLimit(q.Limit)

	var msgs model.MessageList
	err = s.read(ctx, "failed to load history", func(ctx context.Context) error {
		var err error
		msgs, err = s.store.ListMessages(ctx, q.RoomID, q.ThreadID, cursor, limit+1)
		if err != nil {
			return err
		}
		return s.withAttachments(ctx, msgs)
	})
	if err != nil {
		return nil, err
	}

	page := &model.MessagePage{Messages: model.MessageList{}}
	if len(msgs) > limit {
		last := msgs[limit-1]
		page.NextCursor = model.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		msgs = msgs[:limit]
	}
	for _, m := range msgs {
		page.Messages = append(page.Messages, m.Rendered())
	}
	return page, nil
}

// Search matches bodies in one room, most relevant first and newest first
// among equal ranks. The store never returns deleted messages, so every page
// but the last is full.
func (s *Service) Search(ctx context.Context, actor model.Identity, q model.SearchQuery) (*model.MessagePage, error) {
	if _, err := s.member(ctx, actor, q.RoomID); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateSearchQuery(q.Text); err != nil {
		return nil, err
	}

	cursor, err := model.DecodeCursor(q.Cursor)
	if err != nil || (cursor != nil && cursor.Rank == nil) {
		return nil, apperr.Validation("invalid cursor")
	}
	limit := s.validator.PageLimit(q.Limit)

	var hits []model.SearchHit
	msgs := model.MessageList{}
	err = s.read(ctx, "failed to search messages", func(ctx context.Context) error {
		var err error
		hits, err = s.store.SearchMessages(ctx, q.RoomID, q.Text, cursor, limit+1)
		if err != nil {
			return err
		}
		for _, h := range hits {
			msgs = append(msgs, h.Message)
		}
		return s.withAttachments(ctx, msgs)
	})
	if err != nil {
		return nil, err
	}

	page := &model.MessagePage{Messages: model.MessageList{}}
	if len(hits) > limit {
		last := hits[limit-1]
		rank := last.Rank
		page.NextCursor = model.Cursor{Rank: &rank, CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		msgs = msgs[:limit]
	}
	for _, m := range msgs {
		page.Messages = append(page.Messages, m.Rendered())
	}
	return page, nil
}

// Get returns one message. Deleted messages come back with the deletion
// marker and their id, author and thread linkage intact.
func (s *Service) Get(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error) {
	if _, err := s.member(ctx, actor, roomID); err != nil {
		return nil, err
	}

	var msg model.Message
	err := s.read(ctx, "failed to load message", func(ctx context.Context) error {
		found, err := s.store.GetMessage(ctx, roomID, messageID)
		if err != nil {
			return err
		}
		if found == nil {
			return apperr.NotFound("message")
		}
		list := model.MessageList{*found}
		if err := s.withAttachments(ctx, list); err != nil {
			return err
		}
		msg = list[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	rendered := msg.Rendered()
	return &rendered, nil
}

func (s *Service) PinnedList(ctx context.Context, actor model.Identity, roomID string) (model.MessageList, error) {
	if _, err := s.member(ctx, actor, roomID); err != nil {
		return nil, err
	}

	var msgs model.MessageList
	err := s.read(ctx, "failed to load pinned messages", func(ctx context.Context) error {
		var err error
		msgs, err = s.store.ListPinned(ctx, roomID)
		if err != nil {
			return err
		}
		return s.withAttachments(ctx, msgs)
	})
	if err != nil {
		return nil, err
	}

	out := make(model.MessageList, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Rendered())
	}
	return out, nil
}

// MarkRead moves the actor's read marker in the room and tells the room.
func (s *Service) MarkRead(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) error {
	if _, err := s.member(ctx, actor, roomID); err != nil {
		return err
	}

	err := s.persist(ctx, "failed to save read marker", func(ctx context.Context) error {
		if _, err := live(s.store.GetMessage(ctx, roomID, messageID)); err != nil {
			return err
		}
		return s.store.UpsertReadMarker(ctx, model.ReadMarker{
			RoomID:    roomID,
			UserID:    actor.UserID,
			MessageID: messageID,
			ReadAt:    s.now().UTC(),
		})
	})
	if err != nil {
		return err
	}

	s.broadcast(ctx, roomID, model.ReadEvent{UserID: actor.UserID, MessageID: messageID}, router.WithoutOffline())
	return nil
}
