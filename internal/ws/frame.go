package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
)

const (
	FrameSendMessage   = "send_message"
	FrameEditMessage   = "edit_message"
	FrameDeleteMessage = "delete_message"
	FrameReact         = "react_to_message"
	FrameStartTyping   = "start_typing"
	FrameStopTyping    = "stop_typing"
	FrameMarkRead      = "mark_read"
	FrameSubscribe     = "subscribe"
	FrameUnsubscribe   = "unsubscribe"
)

// ClientFrame is the envelope of every client -> server frame.
type ClientFrame struct {
	Type            string          `json:"type"`
	RoomID          string          `json:"room_id"`
	ClientMessageID *string         `json:"client_message_id,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// Command is a decoded client frame.
type Command interface {
	Room() string
}

type base struct {
	RoomID string
}

func (b base) Room() string { return b.RoomID }

type SendCommand struct {
	base
	Input model.SendInput
}

type EditCommand struct {
	base
	MessageID uuid.UUID
	Input     model.EditInput
}

type DeleteCommand struct {
	base
	MessageID uuid.UUID
}

type ReactCommand struct {
	base
	MessageID uuid.UUID
	Kind      string
}

type TypingCommand struct {
	base
	ThreadID *uuid.UUID
	Typing   bool
}

type MarkReadCommand struct {
	base
	MessageID uuid.UUID
}

type SubscribeCommand struct {
	base
}

type UnsubscribeCommand struct {
	base
}

type sendData struct {
	ThreadID *uuid.UUID        `json:"thread_id,omitempty"`
	Type     model.ContentType `json:"type"`
	Body     string            `json:"body"`
	MediaIDs []uuid.UUID       `json:"media_ids,omitempty"`
	Mentions []string          `json:"mentions,omitempty"`
}

type messageRef struct {
	MessageID uuid.UUID `json:"message_id"`
}

type editData struct {
	messageRef
	Body     string   `json:"body"`
	Mentions []string `json:"mentions,omitempty"`
}

type reactData struct {
	messageRef
	Kind string `json:"kind"`
}

type typingData struct {
	ThreadID *uuid.UUID `json:"thread_id,omitempty"`
}

// Decode parses one client frame into its typed command.
func Decode(raw []byte) (ClientFrame, Command, error) {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return frame, nil, apperr.Validation("malformed frame")
	}
	if frame.RoomID == "" {
		return frame, nil, apperr.Validation("room_id is required")
	}
	b := base{RoomID: frame.RoomID}

	switch frame.Type {
	case FrameSubscribe:
		return frame, SubscribeCommand{base: b}, nil
	case FrameUnsubscribe:
		return frame, UnsubscribeCommand{base: b}, nil

	case FrameSendMessage:
		var d sendData
		if err := decodeData(frame, &d); err != nil {
			return frame, nil, err
		}
		if d.Type == "" {
			d.Type = model.TextMessageType
		}
		return frame, SendCommand{base: b, Input: model.SendInput{
			RoomID:          frame.RoomID,
			ThreadID:        d.ThreadID,
			ClientMessageID: frame.ClientMessageID,
			Type:            d.Type,
			Body:            d.Body,
			MediaIDs:        d.MediaIDs,
			Mentions:        d.Mentions,
		}}, nil

	case FrameEditMessage:
		var d editData
		if err := decodeRef(frame, &d, &d.messageRef); err != nil {
			return frame, nil, err
		}
		return frame, EditCommand{base: b, MessageID: d.MessageID, Input: model.EditInput{Body: d.Body, Mentions: d.Mentions}}, nil

	case FrameDeleteMessage:
		var d messageRef
		if err := decodeRef(frame, &d, &d); err != nil {
			return frame, nil, err
		}
		return frame, DeleteCommand{base: b, MessageID: d.MessageID}, nil

	case FrameReact:
		var d reactData
		if err := decodeRef(frame, &d, &d.messageRef); err != nil {
			return frame, nil, err
		}
		return frame, ReactCommand{base: b, MessageID: d.MessageID, Kind: d.Kind}, nil

	case FrameMarkRead:
		var d messageRef
		if err := decodeRef(frame, &d, &d); err != nil {
			return frame, nil, err
		}
		return frame, MarkReadCommand{base: b, MessageID: d.MessageID}, nil

	case FrameStartTyping, FrameStopTyping:
		var d typingData
		if len(frame.Data) > 0 {
			if err := decodeData(frame, &d); err != nil {
				return frame, nil, err
			}
		}
		return frame, TypingCommand{base: b, ThreadID: d.ThreadID, Typing: frame.Type == FrameStartTyping}, nil
	}

	return frame, nil, apperr.Validation("unknown frame type %q", frame.Type)
}

func decodeData(frame ClientFrame, dest any) error {
	if len(frame.Data) == 0 {
		return apperr.Validation("%s requires data", frame.Type)
	}
	if err := json.Unmarshal(frame.Data, dest); err != nil {
		return apperr.Validation("malformed %s data", frame.Type)
	}
	return nil
}

func decodeRef(frame ClientFrame, dest any, ref *messageRef) error {
	if err := decodeData(frame, dest); err != nil {
		return err
	}
	if ref.MessageID == uuid.Nil {
		return apperr.Validation("message_id is required")
	}
	return nil
}

// errorEvent turns a failure into the error frame sent to the originating
// session.
func errorEvent(roomID string, clientMessageID *string, err error, at time.Time) model.Event {
	ev := model.ErrorEvent{
		Code:            string(apperr.KindOf(err)),
		Message:         apperr.PublicMessage(err),
		RetryAfterMs:    apperr.RetryAfterOf(err).Milliseconds(),
		ClientMessageID: clientMessageID,
	}
	return model.NewEvent(roomID, ev, at)
}
