package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
)

const (
	maxBodyLength         = 4000
	maxAttachments        = 10
	maxMentions           = 50
	maxClientMessageID    = 64
	maxReactionKindLength = 32
	minSearchQueryLength  = 2
	maxSearchQueryLength  = 200
	DefaultPageLimit      = 50
	maxPageLimit          = 200
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateSendMessage(req *model.SendInput) error {
	if strings.TrimSpace(req.RoomID) == "" {
		return apperr.Validation("room_id is required")
	}

	if req.Type == "" {
		req.Type = model.TextMessageType
	}

	if !req.Type.Valid() {
		return apperr.Validation("message type '%s' is not supported", req.Type)
	}

	if req.Type == model.SystemMessageType {
		return apperr.Validation("system messages cannot be sent by clients")
	}

	hasBody := strings.TrimSpace(req.Body) != ""
	if !hasBody && len(req.MediaIDs) == 0 {
		return apperr.Validation("message must have a body or at least one attachment")
	}

	if utf8.RuneCountInString(req.Body) > maxBodyLength {
		return apperr.Validation("body exceeds maximum length of %d characters", maxBodyLength)
	}

	switch req.Type {
	case model.ImageMessageType, model.VoiceMessageType, model.VideoMessageType, model.FileMessageType:
		if len(req.MediaIDs) == 0 {
			return apperr.Validation("%s messages require an attachment", req.Type)
		}
	}

	if len(req.MediaIDs) > maxAttachments {
		return apperr.Validation("at most %d attachments are allowed", maxAttachments)
	}

	if len(req.Mentions) > maxMentions {
		return apperr.Validation("at most %d mentions are allowed", maxMentions)
	}

	if req.ClientMessageID != nil {
		id := strings.TrimSpace(*req.ClientMessageID)
		if id == "" || len(id) > maxClientMessageID {
			return apperr.Validation("client_message_id must be 1..%d characters", maxClientMessageID)
		}
	}

	return nil
}

func (v *Validator) ValidateEditMessage(req *model.EditInput) error {
	if strings.TrimSpace(req.Body) == "" {
		return apperr.Validation("body cannot be empty")
	}

	if utf8.RuneCountInString(req.Body) > maxBodyLength {
		return apperr.Validation("body exceeds maximum length of %d characters", maxBodyLength)
	}

	if len(req.Mentions) > maxMentions {
		return apperr.Validation("at most %d mentions are allowed", maxMentions)
	}

	return nil
}

func (v *Validator) ValidateReaction(kind string) error {
	n := utf8.RuneCountInString(kind)
	if n == 0 || n > maxReactionKindLength {
		return apperr.Validation("reaction kind must be 1..%d characters", maxReactionKindLength)
	}

	if strings.IndexFunc(kind, unicode.IsSpace) >= 0 {
		return apperr.Validation("reaction kind cannot contain whitespace")
	}

	return nil
}

func (v *Validator) ValidateSearchQuery(q string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(q))
	if n < minSearchQueryLength || n > maxSearchQueryLength {
		return apperr.Validation("search query must be %d..%d characters", minSearchQueryLength, maxSearchQueryLength)
	}

	return nil
}

// PageLimit clamps a requested page size.
func (v *Validator) PageLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
