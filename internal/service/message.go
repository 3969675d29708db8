package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
	"github.com/s21platform/group-chat-service/internal/router"
)

// Send commits a new message and fans it out. A repeated client message id
// from the same author returns the original message with duplicate set and
// broadcasts nothing.
func (s *Service) Send(ctx context.Context, actor model.Identity, in model.SendInput) (*model.Message, bool, error) {
	member, err := s.member(ctx, actor, in.RoomID)
	if err != nil {
		return nil, false, err
	}

	if err := s.allow(actor, ratelimit.ActionSend); err != nil {
		return nil, false, err
	}

	if err := s.validator.ValidateSendMessage(&in); err != nil {
		return nil, false, err
	}

	if in.Type == model.AnnouncementMessageType && !member.Role.Elevated() {
		return nil, false, apperr.ForbiddenAction("only moderators may post announcements")
	}

	unlock := s.locks.Lock(in.RoomID)
	defer unlock()

	if in.ClientMessageID != nil {
		original, err := s.findDuplicate(ctx, actor, in.RoomID, *in.ClientMessageID)
		if err != nil {
			return nil, false, err
		}
		if original != nil {
			s.logger.Info(fmt.Sprintf("duplicate client message id %s from %s", *in.ClientMessageID, actor.UserID))
			rendered := original.Rendered()
			return &rendered, true, nil
		}
	}

	var (
		members []string
		created model.Message
	)
	err = s.persist(ctx, "failed to save message", func(ctx context.Context) error {
		if in.ThreadID != nil {
			root, err := s.store.GetMessage(ctx, in.RoomID, *in.ThreadID)
			if err != nil {
				return err
			}
			if root == nil || root.IsDeleted() {
				return apperr.NotFound("thread")
			}
			if root.ThreadID != nil {
				return apperr.Validation("replies cannot start a thread")
			}
		}

		attachments, err := s.stagedAttachments(ctx, actor, in)
		if err != nil {
			return err
		}

		members, err = s.store.RoomMemberIDs(ctx, in.RoomID)
		if err != nil {
			return err
		}

		created = model.Message{
			ID:              uuid.New(),
			RoomID:          in.RoomID,
			ThreadID:        in.ThreadID,
			AuthorID:        actor.UserID,
			ClientMessageID: in.ClientMessageID,
			Type:            in.Type,
			Body:            in.Body,
			Attachments:     attachments,
			Mentions:        pq.StringArray(resolveMentions(in.Mentions, members, actor.UserID)),
			Status:          model.StatusActive,
			Reactions:       model.Reactions{},
			CreatedAt:       s.now().UTC(),
		}

		if err := s.store.SaveMessage(ctx, &created); err != nil {
			return err
		}
		if len(attachments) > 0 {
			if err := s.store.AttachMedia(ctx, created.ID, attachments); err != nil {
				return err
			}
		}
		if in.ThreadID != nil {
			return s.store.IncrementReplyCount(ctx, *in.ThreadID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to send message to room %s: %v", in.RoomID, err))
		return nil, false, err
	}

	rendered := created.Rendered()
	opts := []router.Option{router.ExcludeUser(actor.UserID)}
	if created.Type == model.AnnouncementMessageType {
		for _, id := range members {
			opts = append(opts, router.WithPriority(id, model.PriorityHigh))
		}
	}
	for _, id := range created.Mentions {
		opts = append(opts, router.WithPriority(id, model.PriorityHigh))
	}
	s.broadcast(ctx, created.RoomID, model.MessageEvent{Message: rendered}, opts...)

	// Offline mentioned members already hold a high priority record for the
	// message itself, so mention side events only go to live sessions.
	mention := s.event(created.RoomID, model.MentionEvent{
		MessageID: created.ID,
		ThreadID:  created.ThreadID,
		AuthorID:  created.AuthorID,
		Preview:   created.Preview(),
	})
	for _, id := range created.Mentions {
		s.router.SendToUser(id, mention)
	}

	return &rendered, false, nil
}

func (s *Service) findDuplicate(ctx context.Context, actor model.Identity, roomID, clientMessageID string) (*model.Message, error) {
	var original *model.Message
	err := s.read(ctx, "failed to look up client message id", func(ctx context.Context) error {
		msg, err := s.store.GetMessageByClientID(ctx, roomID, actor.UserID, clientMessageID)
		if err != nil || msg == nil {
			return err
		}
		list := model.MessageList{*msg}
		if err := s.withAttachments(ctx, list); err != nil {
			return err
		}
		original = &list[0]
		return nil
	})
	return original, err
}

// stagedAttachments resolves media ids to attachments the author staged
// earlier, in request order. Media messages only carry media of their kind.
func (s *Service) stagedAttachments(ctx context.Context, actor model.Identity, in model.SendInput) ([]model.Attachment, error) {
	if len(in.MediaIDs) == 0 {
		return nil, nil
	}

	refs, err := s.store.GetStagedMedia(ctx, actor.UserID, in.MediaIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.MediaRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	want := categoryFor(in.Type)
	seen := make(map[uuid.UUID]struct{}, len(in.MediaIDs))
	attachments := make([]model.Attachment, 0, len(in.MediaIDs))
	for _, id := range in.MediaIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		ref, ok := byID[id]
		if !ok {
			return nil, apperr.Validation("unknown media reference %s", id)
		}
		if want != "" && ref.Category != want {
			return nil, apperr.Validation("%s messages cannot carry %s media", in.Type, ref.Category)
		}
		attachments = append(attachments, ref.Attachment())
	}
	return attachments, nil
}

func categoryFor(t model.ContentType) model.MediaCategory {
	switch t {
	case model.ImageMessageType:
		return model.MediaImage
	case model.VoiceMessageType:
		return model.MediaVoice
	case model.VideoMessageType:
		return model.MediaVideo
	case model.FileMessageType:
		return model.MediaDocument
	}
	return ""
}

// Edit replaces the body of a message. Authors may edit within the edit
// window; elevated roles may edit any message at any time. Newly mentioned
// members are notified, removed mentions are left alone.
func (s *Service) Edit(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID, in model.EditInput) (*model.Message, error) {
	member, err := s.member(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateEditMessage(&in); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	var (
		edited      model.Message
		newMentions []string
	)
	err = s.persist(ctx, "failed to edit message", func(ctx context.Context) error {
		msg, err := live(s.store.GetMessageForUpdate(ctx, roomID, messageID))
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if !member.Role.Elevated() {
			if msg.AuthorID != actor.UserID {
				return apperr.ForbiddenAction("only the author may edit this message")
			}
			if now.Sub(msg.CreatedAt) > s.cfg.EditWindow {
				return apperr.ForbiddenAction("edit window has elapsed")
			}
		}

		members, err := s.store.RoomMemberIDs(ctx, roomID)
		if err != nil {
			return err
		}
		mentions := resolveMentions(in.Mentions, members, msg.AuthorID)

		previous := make(map[string]struct{}, len(msg.Mentions))
		for _, id := range msg.Mentions {
			previous[id] = struct{}{}
		}
		for _, id := range mentions {
			if _, ok := previous[id]; !ok {
				newMentions = append(newMentions, id)
			}
		}

		msg.Body = in.Body
		msg.Mentions = pq.StringArray(mentions)
		msg.Status = model.StatusEdited
		msg.EditedAt = &now
		if err := s.store.UpdateMessage(ctx, msg); err != nil {
			return err
		}

		list := model.MessageList{*msg}
		if err := s.withAttachments(ctx, list); err != nil {
			return err
		}
		edited = list[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	rendered := edited.Rendered()
	s.broadcast(ctx, roomID, model.MessageEditedEvent{Message: rendered})

	mention := s.event(roomID, model.MentionEvent{
		MessageID: edited.ID,
		ThreadID:  edited.ThreadID,
		AuthorID:  edited.AuthorID,
		Preview:   edited.Preview(),
	})
	for _, id := range newMentions {
		s.router.Notify(ctx, id, mention, model.PriorityHigh)
	}

	return &rendered, nil
}

// Delete soft-deletes a message. Reactions, reply count and thread linkage
// survive.
func (s *Service) Delete(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error) {
	member, err := s.member(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	var deleted model.Message
	err = s.persist(ctx, "failed to delete message", func(ctx context.Context) error {
		msg, err := live(s.store.GetMessageForUpdate(ctx, roomID, messageID))
		if err != nil {
			return err
		}
		if msg.AuthorID != actor.UserID && !member.Role.Elevated() {
			return apperr.ForbiddenAction("only the author or a moderator may delete this message")
		}

		msg.SoftDelete(s.now().UTC())
		if err := s.store.UpdateMessage(ctx, msg); err != nil {
			return err
		}
		if err := s.store.ClearAttachments(ctx, msg.ID); err != nil {
			return err
		}
		deleted = *msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, roomID, model.MessageDeletedEvent{
		MessageID: deleted.ID,
		ThreadID:  deleted.ThreadID,
		DeletedBy: actor.UserID,
		Marker:    model.DeletedMarker,
	})

	rendered := deleted.Rendered()
	return &rendered, nil
}

// Pin toggles the pinned flag. Pinning never changes message order.
func (s *Service) Pin(ctx context.Context, actor model.Identity, roomID string, messageID uuid.UUID) (*model.Message, error) {
	member, err := s.member(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if !member.Role.Elevated() {
		return nil, apperr.ForbiddenAction("only moderators may pin messages")
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	var pinned model.Message
	err = s.persist(ctx, "failed to pin message", func(ctx context.Context) error {
		msg, err := live(s.store.GetMessageForUpdate(ctx, roomID, messageID))
		if err != nil {
			return err
		}

		msg.Pinned = !msg.Pinned
		if msg.Pinned {
			by := actor.UserID
			msg.PinnedBy = &by
		} else {
			msg.PinnedBy = nil
		}
		if err := s.store.UpdateMessage(ctx, msg); err != nil {
			return err
		}
		pinned = *msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, roomID, model.MessagePinnedEvent{
		MessageID: pinned.ID,
		Pinned:    pinned.Pinned,
		By:        actor.UserID,
	})

	rendered := pinned.Rendered()
	return &rendered, nil
}
