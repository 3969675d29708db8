// Package ws serves the live websocket surface: it authenticates the
// handshake, registers the connection and turns client frames into service
// calls.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/registry"
	"github.com/s21platform/group-chat-service/internal/service"
)

type Config struct {
	PingInterval     time.Duration
	HeartbeatTimeout time.Duration
	SendBuffer       int
	MaxFrameBytes    int64
	HandshakeRPS     float64
	HandshakeBurst   int
}

type Handler struct {
	chat     ChatService
	sessions Sessions
	tokens   TokenValidator
	observer Observer
	seen     SeenMarker
	logger   logger_lib.LoggerInterface
	limiter  *handshakeLimiter
	upgrader websocket.Upgrader
	cfg      Config
	now      func() time.Time
}

type Option func(*Handler)

func WithObserver(o Observer) Option {
	return func(h *Handler) {
		h.observer = o
	}
}

func WithSeenMarker(s SeenMarker) Option {
	return func(h *Handler) {
		h.seen = s
	}
}

func New(cfg Config, chat ChatService, sessions Sessions, tokens TokenValidator, logger logger_lib.LoggerInterface, opts ...Option) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 25 * time.Second
	}
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = 60 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = 64 << 10
	}
	h := &Handler{
		chat:     chat,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		limiter:  newHandshakeLimiter(cfg.HandshakeRPS, cfg.HandshakeBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cleanup drops idle handshake limiter state.
func (h *Handler) Cleanup() {
	h.limiter.Cleanup()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientAddr(r)) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		h.observe(apperr.KindRateLimited)
		return
	}

	identity, expiresAt, err := h.tokens.ValidateConnectToken(connectToken(r))
	if err != nil {
		http.Error(w, "invalid connect token", http.StatusUnauthorized)
		h.observe(apperr.KindAuth)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(fmt.Sprintf("failed to upgrade connection of %s: %v", identity.UserID, err))
		return
	}

	c := newConn(ws, h.cfg.SendBuffer)
	sid, err := h.sessions.Register(identity, c)
	if err != nil {
		reason := registry.CloseTooManyConnections
		if !apperr.Is(err, apperr.KindTooManyConnections) {
			reason = registry.CloseTransportError
		}
		msg := websocket.FormatCloseMessage(reason.Code, reason.Text)
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = ws.Close()
		h.observe(apperr.KindOf(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = service.WithOrigin(ctx, sid)

	go c.writePump(h.cfg.PingInterval, func(err error) {
		h.logger.Warn(fmt.Sprintf("failed to write to session %s: %v", sid, err))
		h.sessions.Unregister(sid, registry.CloseTransportError)
	})

	expiry := time.AfterFunc(time.Until(expiresAt), func() {
		h.sessions.Unregister(sid, registry.CloseAuthExpired)
	})
	defer expiry.Stop()

	h.markSeen(ctx, identity.UserID)
	defer h.markSeen(ctx, identity.UserID)

	h.readPump(ctx, sid, identity, c)
}

// readPump reads client frames until the socket fails or the session is
// closed. Frames are handled in arrival order.
func (h *Handler) readPump(ctx context.Context, sid string, identity model.Identity, c *conn) {
	defer h.sessions.Unregister(sid, registry.CloseNormal)

	c.ws.SetReadLimit(h.cfg.MaxFrameBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(h.cfg.HeartbeatTimeout))
	c.ws.SetPongHandler(func(string) error {
		h.sessions.Touch(sid)
		return c.ws.SetReadDeadline(time.Now().Add(h.cfg.HeartbeatTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn(fmt.Sprintf("session %s read failed: %v", sid, err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(h.cfg.HeartbeatTimeout))
		h.sessions.Touch(sid)

		h.handle(ctx, sid, identity, c, data)
	}
}

func (h *Handler) handle(ctx context.Context, sid string, identity model.Identity, c *conn, data []byte) {
	frame, cmd, err := Decode(data)
	if err == nil {
		err = h.dispatch(ctx, sid, identity, c, frame, cmd)
	}
	if err != nil {
		h.observe(apperr.KindOf(err))
		if apperr.KindOf(err) == apperr.KindFatal {
			h.logger.Error(fmt.Sprintf("session %s %s failed: %v", sid, frame.Type, err))
		}
		c.Send(errorEvent(frame.RoomID, frame.ClientMessageID, err, h.now()))
		return
	}
	h.observe("")
}

// dispatch runs one command. Broadcasts skip the originating session, so
// results the client needs are echoed to it directly.
func (h *Handler) dispatch(ctx context.Context, sid string, identity model.Identity, c *conn, frame ClientFrame, cmd Command) error {
	roomID := cmd.Room()
	reply := func(data model.EventData) {
		c.Send(model.NewEvent(roomID, data, h.now()))
	}

	switch cmd := cmd.(type) {
	case SubscribeCommand:
		if err := h.sessions.Subscribe(ctx, sid, roomID); err != nil {
			return err
		}
		reply(model.SubscribedEvent{Subscribed: true})
		for _, ev := range h.chat.ActiveTyping(ctx, roomID) {
			if ev.UserID != identity.UserID {
				reply(ev)
			}
		}

	case UnsubscribeCommand:
		h.sessions.Unsubscribe(sid, roomID)
		reply(model.SubscribedEvent{Subscribed: false})

	case SendCommand:
		msg, duplicate, err := h.chat.Send(ctx, identity, cmd.Input)
		if err != nil {
			return err
		}
		reply(model.AckEvent{
			ClientMessageID: frame.ClientMessageID,
			MessageID:       msg.ID,
			CreatedAt:       msg.CreatedAt,
			Duplicate:       duplicate,
		})

	case EditCommand:
		msg, err := h.chat.Edit(ctx, identity, roomID, cmd.MessageID, cmd.Input)
		if err != nil {
			return err
		}
		reply(model.MessageEditedEvent{Message: *msg})

	case DeleteCommand:
		msg, err := h.chat.Delete(ctx, identity, roomID, cmd.MessageID)
		if err != nil {
			return err
		}
		reply(model.MessageDeletedEvent{
			MessageID: msg.ID,
			ThreadID:  msg.ThreadID,
			DeletedBy: identity.UserID,
			Marker:    model.DeletedMarker,
		})

	case ReactCommand:
		ev, err := h.chat.React(ctx, identity, roomID, cmd.MessageID, cmd.Kind)
		if err != nil {
			return err
		}
		reply(*ev)

	case MarkReadCommand:
		if err := h.chat.MarkRead(ctx, identity, roomID, cmd.MessageID); err != nil {
			return err
		}
		reply(model.ReadEvent{UserID: identity.UserID, MessageID: cmd.MessageID})

	case TypingCommand:
		return h.chat.Typing(ctx, identity, roomID, cmd.ThreadID, cmd.Typing)

	default:
		return apperr.Validation("unsupported frame type %q", frame.Type)
	}
	return nil
}

func (h *Handler) observe(kind apperr.Kind) {
	if h.observer != nil {
		h.observer.Observe("ws", kind)
	}
}

func (h *Handler) markSeen(ctx context.Context, userID string) {
	if h.seen == nil {
		return
	}
	if err := h.seen.MarkSeen(ctx, userID, h.now()); err != nil {
		h.logger.Warn(fmt.Sprintf("failed to mark %s as seen: %v", userID, err))
	}
}

func connectToken(r *http.Request) string {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
