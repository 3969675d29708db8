package model

import (
	"time"
)

type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// Elevated reports whether the role may moderate other members' content.
func (r Role) Elevated() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleModerator
}

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleModerator || r == RoleMember
}

type Room struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	PremiumOnly    bool      `db:"premium_only" json:"premium_only"`
	TracksPresence bool      `db:"tracks_presence" json:"tracks_presence"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type RoomMember struct {
	RoomID   string     `db:"room_id" json:"room_id"`
	UserID   string     `db:"user_id" json:"user_id"`
	Role     Role       `db:"role" json:"role"`
	JoinedAt time.Time  `db:"joined_at" json:"joined_at"`
	LeftAt   *time.Time `db:"left_at" json:"left_at,omitempty"`
}

func (m *RoomMember) Active() bool {
	return m != nil && m.LeftAt == nil
}

// Access is what the registry needs to decide a subscription.
type Access struct {
	Member      *RoomMember
	PremiumOnly bool
	Presence    bool
}

// Identity is an authenticated user as vouched for by the identity provider.
type Identity struct {
	UserID  string
	Premium bool
}
