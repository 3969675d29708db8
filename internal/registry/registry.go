package registry

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
)

const shardCount = 64

type Config struct {
	MaxSessionsPerUser int
	HeartbeatTimeout   time.Duration
}

type sessionShard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

type userEntry struct {
	sessions      map[string]*Session
	lastConnected time.Time
}

type userShard struct {
	mu    sync.RWMutex
	users map[string]*userEntry
}

type roomEntry struct {
	sessions map[string]*Session
	presence bool
}

type roomShard struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

// Registry tracks live sessions and their room subscriptions. Sessions,
// users and rooms each live in independently locked shards.
type Registry struct {
	cfg    Config
	access AccessChecker
	logger logger_lib.LoggerInterface
	now    func() time.Time

	sessions [shardCount]*sessionShard
	users    [shardCount]*userShard
	rooms    [shardCount]*roomShard

	janitors []func()
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithJanitor registers housekeeping run on every reaper tick.
func WithJanitor(fn func()) Option {
	return func(r *Registry) {
		r.janitors = append(r.janitors, fn)
	}
}

func New(cfg Config, access AccessChecker, logger logger_lib.LoggerInterface, opts ...Option) *Registry {
	if cfg.MaxSessionsPerUser <= 0 {
		cfg.MaxSessionsPerUser = 5
	}
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = 60 * time.Second
	}
	r := &Registry{
		cfg:    cfg,
		access: access,
		logger: logger,
		now:    time.Now,
	}
	for i := 0; i < shardCount; i++ {
		r.sessions[i] = &sessionShard{sessions: make(map[string]*Session)}
		r.users[i] = &userShard{users: make(map[string]*userEntry)}
		r.rooms[i] = &roomShard{rooms: make(map[string]*roomEntry)}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an authenticated connection. An identity may hold at most
// MaxSessionsPerUser sessions at once.
func (r *Registry) Register(identity model.Identity, transport Transport) (string, error) {
	if identity.UserID == "" {
		return "", apperr.Auth("identity is empty", nil)
	}

	now := r.now()
	s := &Session{
		id:        uuid.NewString(),
		identity:  identity,
		transport: transport,
		createdAt: now,
		rooms:     make(map[string]struct{}),
	}
	s.touch(now)

	us := r.userShard(identity.UserID)
	us.mu.Lock()
	entry, ok := us.users[identity.UserID]
	if !ok {
		entry = &userEntry{sessions: make(map[string]*Session)}
		us.users[identity.UserID] = entry
	}
	if len(entry.sessions) >= r.cfg.MaxSessionsPerUser {
		us.mu.Unlock()
		return "", apperr.TooManyConnections(r.cfg.MaxSessionsPerUser)
	}
	entry.sessions[s.id] = s
	entry.lastConnected = now
	us.mu.Unlock()

	ss := r.sessionShard(s.id)
	ss.mu.Lock()
	ss.sessions[s.id] = s
	ss.mu.Unlock()

	r.logger.Info(fmt.Sprintf("session %s registered for user %s", s.id, identity.UserID))
	return s.id, nil
}

// Subscribe joins a session to a room. Non-members and non-premium
// identities in premium rooms get the same Forbidden error.
func (r *Registry) Subscribe(ctx context.Context, sessionID, roomID string) error {
	s := r.Session(sessionID)
	if s == nil {
		return apperr.NotFound("session")
	}

	access, err := r.access.RoomAccess(ctx, roomID, s.identity.UserID)
	if err != nil {
		return apperr.FromStore("failed to check room access", err)
	}
	if access == nil || !access.Member.Active() {
		return apperr.Forbidden()
	}
	if access.PremiumOnly && !s.identity.Premium {
		return apperr.Forbidden()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperr.NotFound("session")
	}
	if _, ok := s.rooms[roomID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.rooms[roomID] = struct{}{}

	rs := r.roomShard(roomID)
	rs.mu.Lock()
	room, ok := rs.rooms[roomID]
	if !ok {
		room = &roomEntry{sessions: make(map[string]*Session)}
		rs.rooms[roomID] = room
	}
	room.presence = access.Presence
	firstForUser := true
	for _, other := range room.sessions {
		if other.identity.UserID == s.identity.UserID {
			firstForUser = false
			break
		}
	}
	room.sessions[s.id] = s
	rs.mu.Unlock()
	s.mu.Unlock()

	if access.Presence && firstForUser {
		r.pushPresence(roomID, s.identity.UserID, model.PresenceOnline, s.id)
	}
	return nil
}

func (r *Registry) Unsubscribe(sessionID, roomID string) {
	s := r.Session(sessionID)
	if s == nil {
		return
	}
	s.mu.Lock()
	_, joined := s.rooms[roomID]
	delete(s.rooms, roomID)
	s.mu.Unlock()
	if !joined {
		return
	}
	if r.removeFromRoom(roomID, s) {
		r.pushPresence(roomID, s.identity.UserID, model.PresenceOffline, "")
	}
}

// Unregister removes a session and all of its subscriptions. It is safe to
// call more than once.
func (r *Registry) Unregister(sessionID string, reason CloseReason) {
	ss := r.sessionShard(sessionID)
	ss.mu.Lock()
	s, ok := ss.sessions[sessionID]
	if ok {
		delete(ss.sessions, sessionID)
	}
	ss.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.closed = true
	rooms := make([]string, 0, len(s.rooms))
	for roomID := range s.rooms {
		rooms = append(rooms, roomID)
	}
	s.rooms = make(map[string]struct{})
	s.mu.Unlock()

	offlineRooms := make([]string, 0, len(rooms))
	for _, roomID := range rooms {
		if r.removeFromRoom(roomID, s) {
			offlineRooms = append(offlineRooms, roomID)
		}
	}

	us := r.userShard(s.identity.UserID)
	us.mu.Lock()
	if entry, ok := us.users[s.identity.UserID]; ok {
		delete(entry.sessions, sessionID)
	}
	us.mu.Unlock()

	s.transport.Close(reason)

	for _, roomID := range offlineRooms {
		r.pushPresence(roomID, s.identity.UserID, model.PresenceOffline, "")
	}

	r.logger.Info(fmt.Sprintf("session %s unregistered for user %s: %s", sessionID, s.identity.UserID, reason.Text))
}

// Touch records activity on a session.
func (r *Registry) Touch(sessionID string) {
	if s := r.Session(sessionID); s != nil {
		s.touch(r.now())
	}
}

// Reap unregisters sessions silent for longer than the heartbeat timeout
// and returns how many were dropped.
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.cfg.HeartbeatTimeout)
	var stale []string
	for _, ss := range r.sessions {
		ss.mu.RLock()
		for id, s := range ss.sessions {
			if s.LastActivity().Before(cutoff) {
				stale = append(stale, id)
			}
		}
		ss.mu.RUnlock()
	}
	for _, id := range stale {
		r.Unregister(id, CloseHeartbeatTimeout)
	}
	r.pruneUsers()
	return len(stale)
}

// Run reaps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(); n > 0 {
				r.logger.Warn(fmt.Sprintf("reaped %d silent sessions", n))
			}
			for _, fn := range r.janitors {
				fn()
			}
		}
	}
}

// Shutdown closes every live session.
func (r *Registry) Shutdown() {
	var ids []string
	for _, ss := range r.sessions {
		ss.mu.RLock()
		for id := range ss.sessions {
			ids = append(ids, id)
		}
		ss.mu.RUnlock()
	}
	for _, id := range ids {
		r.Unregister(id, CloseShutdown)
	}
}

func (r *Registry) Session(sessionID string) *Session {
	ss := r.sessionShard(sessionID)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.sessions[sessionID]
}

// Subscribers returns a snapshot of the sessions subscribed to roomID.
func (r *Registry) Subscribers(roomID string) []*Session {
	rs := r.roomShard(roomID)
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	room, ok := rs.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Session, 0, len(room.sessions))
	for _, s := range room.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) SessionsOf(userID string) []*Session {
	us := r.userShard(userID)
	us.mu.RLock()
	defer us.mu.RUnlock()
	entry, ok := us.users[userID]
	if !ok {
		return nil
	}
	out := make([]*Session, 0, len(entry.sessions))
	for _, s := range entry.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) IsOnline(userID string) bool {
	us := r.userShard(userID)
	us.mu.RLock()
	defer us.mu.RUnlock()
	entry, ok := us.users[userID]
	return ok && len(entry.sessions) > 0
}

// LastConnectedAt is when userID last opened a session in this process.
func (r *Registry) LastConnectedAt(userID string) (time.Time, bool) {
	us := r.userShard(userID)
	us.mu.RLock()
	defer us.mu.RUnlock()
	entry, ok := us.users[userID]
	if !ok {
		return time.Time{}, false
	}
	return entry.lastConnected, true
}

type Stats struct {
	Connections int            `json:"connections"`
	Users       int            `json:"users"`
	Rooms       map[string]int `json:"rooms"`
}

func (r *Registry) Stats() Stats {
	st := Stats{Rooms: make(map[string]int)}
	for _, ss := range r.sessions {
		ss.mu.RLock()
		st.Connections += len(ss.sessions)
		ss.mu.RUnlock()
	}
	for _, us := range r.users {
		us.mu.RLock()
		for _, entry := range us.users {
			if len(entry.sessions) > 0 {
				st.Users++
			}
		}
		us.mu.RUnlock()
	}
	for _, rs := range r.rooms {
		rs.mu.RLock()
		for id, room := range rs.rooms {
			st.Rooms[id] = len(room.sessions)
		}
		rs.mu.RUnlock()
	}
	return st
}

// removeFromRoom drops s from roomID and reports whether an offline presence
// is due: the room tracks presence and s was its user's last session there.
func (r *Registry) removeFromRoom(roomID string, s *Session) bool {
	rs := r.roomShard(roomID)
	rs.mu.Lock()
	defer rs.mu.Unlock()
	room, ok := rs.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := room.sessions[s.id]; !ok {
		return false
	}
	delete(room.sessions, s.id)
	if len(room.sessions) == 0 {
		delete(rs.rooms, roomID)
	}
	if !room.presence {
		return false
	}
	for _, other := range room.sessions {
		if other.identity.UserID == s.identity.UserID {
			return false
		}
	}
	return true
}

func (r *Registry) pushPresence(roomID, userID string, status model.PresenceStatus, excludeSession string) {
	ev := model.NewEvent(roomID, model.PresenceEvent{UserID: userID, Status: status}, r.now())
	for _, s := range r.Subscribers(roomID) {
		if s.id == excludeSession {
			continue
		}
		if !s.Send(ev) {
			go r.Unregister(s.id, CloseSlowConsumer)
		}
	}
}

func (r *Registry) pruneUsers() {
	cutoff := r.now().Add(-24 * time.Hour)
	for _, us := range r.users {
		us.mu.Lock()
		for id, entry := range us.users {
			if len(entry.sessions) == 0 && entry.lastConnected.Before(cutoff) {
				delete(us.users, id)
			}
		}
		us.mu.Unlock()
	}
}

func (r *Registry) sessionShard(id string) *sessionShard {
	return r.sessions[shardOf(id)]
}

func (r *Registry) userShard(id string) *userShard {
	return r.users[shardOf(id)]
}

func (r *Registry) roomShard(id string) *roomShard {
	return r.rooms[shardOf(id)]
}

func shardOf(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}
