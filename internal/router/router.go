// Package router fans committed room events out to live sessions and hands
// queueable events for offline members to the delivery queue.
package router

import (
	"context"
	"fmt"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/registry"
)

type Router struct {
	sessions SessionSource
	members  MemberSource
	queue    OfflineQueue
	logger   logger_lib.LoggerInterface
}

func New(sessions SessionSource, members MemberSource, queue OfflineQueue, logger logger_lib.LoggerInterface) *Router {
	return &Router{
		sessions: sessions,
		members:  members,
		queue:    queue,
		logger:   logger,
	}
}

type broadcastOptions struct {
	excludeSession string
	excludeUsers   map[string]struct{}
	priorities     map[string]model.Priority
	noOffline      bool
}

type Option func(*broadcastOptions)

// ExcludeSession skips one session, typically the originating connection.
func ExcludeSession(sessionID string) Option {
	return func(o *broadcastOptions) {
		o.excludeSession = sessionID
	}
}

// ExcludeUser keeps a user out of the offline hand-off; live sessions of
// that user still receive the event.
func ExcludeUser(userID string) Option {
	return func(o *broadcastOptions) {
		if o.excludeUsers == nil {
			o.excludeUsers = make(map[string]struct{})
		}
		o.excludeUsers[userID] = struct{}{}
	}
}

// WithPriority overrides the offline priority for one recipient.
func WithPriority(userID string, p model.Priority) Option {
	return func(o *broadcastOptions) {
		if o.priorities == nil {
			o.priorities = make(map[string]model.Priority)
		}
		o.priorities[userID] = p
	}
}

// WithoutOffline marks an ephemeral event that is never queued.
func WithoutOffline() Option {
	return func(o *broadcastOptions) {
		o.noOffline = true
	}
}

type Result struct {
	Delivered int
	Dropped   int
	Queued    int
}

// Broadcast pushes ev to every session subscribed to roomID. A failed push
// drops that session only. Members with no live subscribed session get a
// Delivery Record when the event is queueable.
func (r *Router) Broadcast(ctx context.Context, roomID string, ev model.Event, opts ...Option) Result {
	var o broadcastOptions
	for _, opt := range opts {
		opt(&o)
	}

	var res Result
	reached := make(map[string]struct{})
	for _, s := range r.sessions.Subscribers(roomID) {
		userID := s.Identity().UserID
		reached[userID] = struct{}{}
		if s.ID() == o.excludeSession {
			continue
		}
		if !s.Send(ev) {
			res.Dropped++
			r.logger.Warn(fmt.Sprintf("dropping session %s: push to room %s failed", s.ID(), roomID))
			r.sessions.Unregister(s.ID(), registry.CloseSlowConsumer)
			continue
		}
		res.Delivered++
	}

	if o.noOffline || !ev.Type.Queueable() || r.queue == nil {
		return res
	}

	members, err := r.members.RoomMemberIDs(ctx, roomID)
	if err != nil {
		r.logger.Error(fmt.Sprintf("failed to list members of room %s for offline delivery: %v", roomID, err))
		return res
	}

	payload, ok := payloadOf(roomID, ev)
	if !ok {
		return res
	}

	for _, userID := range members {
		if _, ok := reached[userID]; ok {
			continue
		}
		if _, ok := o.excludeUsers[userID]; ok {
			continue
		}
		priority := model.PriorityNormal
		if p, ok := o.priorities[userID]; ok {
			priority = p
		}
		if err := r.queue.Enqueue(ctx, userID, payload, priority); err != nil {
			r.logger.Error(fmt.Sprintf("failed to enqueue offline delivery for %s: %v", userID, err))
			continue
		}
		res.Queued++
	}
	return res
}

// SendToUser pushes ev to every live session of userID regardless of room
// subscriptions. It reports whether at least one session took the event.
func (r *Router) SendToUser(userID string, ev model.Event) bool {
	delivered := false
	for _, s := range r.sessions.SessionsOf(userID) {
		if !s.Send(ev) {
			r.sessions.Unregister(s.ID(), registry.CloseSlowConsumer)
			continue
		}
		delivered = true
	}
	return delivered
}

// Notify pushes a targeted event to userID and falls back to a Delivery
// Record when no session took it.
func (r *Router) Notify(ctx context.Context, userID string, ev model.Event, priority model.Priority) bool {
	if r.SendToUser(userID, ev) {
		return true
	}
	if !ev.Type.Queueable() || r.queue == nil {
		return false
	}
	payload, ok := payloadOf(ev.RoomID, ev)
	if !ok {
		return false
	}
	if err := r.queue.Enqueue(ctx, userID, payload, priority); err != nil {
		r.logger.Error(fmt.Sprintf("failed to enqueue offline delivery for %s: %v", userID, err))
	}
	return false
}

// SendToSession answers the originating connection only.
func (r *Router) SendToSession(sessionID string, ev model.Event) bool {
	s := r.sessions.Session(sessionID)
	if s == nil {
		return false
	}
	if !s.Send(ev) {
		r.sessions.Unregister(sessionID, registry.CloseSlowConsumer)
		return false
	}
	return true
}

func payloadOf(roomID string, ev model.Event) (model.DeliveryPayload, bool) {
	switch d := ev.Data.(type) {
	case model.MessageEvent:
		return model.DeliveryPayload{RoomID: roomID, MessageID: d.Message.ID, EventKind: model.EventMessage}, true
	case model.MentionEvent:
		return model.DeliveryPayload{RoomID: roomID, MessageID: d.MessageID, EventKind: model.EventMention}, true
	}
	return model.DeliveryPayload{}, false
}
