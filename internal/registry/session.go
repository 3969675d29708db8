package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/s21platform/group-chat-service/internal/model"
)

// Transport is the outbound half of a live connection.
type Transport interface {
	// Send queues ev without blocking; false means the connection cannot
	// take more frames and should be dropped.
	Send(ev model.Event) bool
	Close(reason CloseReason)
}

type CloseReason struct {
	Code int
	Text string
}

var (
	CloseNormal             = CloseReason{Code: 1000, Text: "closed"}
	CloseShutdown           = CloseReason{Code: 1001, Text: "server shutting down"}
	CloseHeartbeatTimeout   = CloseReason{Code: 4002, Text: "heartbeat_timeout"}
	CloseAuthExpired        = CloseReason{Code: 4001, Text: "auth_expired"}
	CloseSlowConsumer       = CloseReason{Code: 4003, Text: "slow_consumer"}
	CloseTransportError     = CloseReason{Code: 4004, Text: "transport_error"}
	CloseTooManyConnections = CloseReason{Code: 4008, Text: "too_many_connections"}
)

type Session struct {
	id        string
	identity  model.Identity
	transport Transport
	createdAt time.Time
	lastSeen  atomic.Int64

	mu     sync.Mutex
	closed bool
	rooms  map[string]struct{}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Identity() model.Identity {
	return s.identity
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) Send(ev model.Event) bool {
	return s.transport.Send(ev)
}

func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

func (s *Session) InRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[roomID]
	return ok
}

func (s *Session) touch(at time.Time) {
	s.lastSeen.Store(at.UnixNano())
}
