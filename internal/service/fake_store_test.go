package service

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/s21platform/group-chat-service/internal/model"
)

// memStore is an in-memory Store. Every read returns a deep copy so the
// service cannot mutate state outside UpdateMessage.
type memStore struct {
	mu          sync.Mutex
	members     map[string]map[string]model.Role
	premium     map[string]bool
	messages    map[uuid.UUID]model.Message
	committed   []uuid.UUID
	reactions   map[uuid.UUID]map[string]model.Reaction
	media       map[uuid.UUID]model.MediaRef
	attachments map[uuid.UUID][]model.Attachment
	markers     map[string]model.ReadMarker
	saveDelay   time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		members:     make(map[string]map[string]model.Role),
		premium:     make(map[string]bool),
		messages:    make(map[uuid.UUID]model.Message),
		reactions:   make(map[uuid.UUID]map[string]model.Reaction),
		media:       make(map[uuid.UUID]model.MediaRef),
		attachments: make(map[uuid.UUID][]model.Attachment),
		markers:     make(map[string]model.ReadMarker),
	}
}

func (m *memStore) addMember(roomID, userID string, role model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[roomID] == nil {
		m.members[roomID] = make(map[string]model.Role)
	}
	m.members[roomID][userID] = role
}

func clone(msg model.Message) model.Message {
	out := msg
	if msg.Mentions != nil {
		out.Mentions = append(pq.StringArray(nil), msg.Mentions...)
	}
	if msg.Reactions != nil {
		out.Reactions = make(model.Reactions, len(msg.Reactions))
		for kind, users := range msg.Reactions {
			out.Reactions[kind] = append([]string(nil), users...)
		}
	}
	out.Attachments = nil
	return out
}

func (m *memStore) RoomAccess(_ context.Context, roomID, userID string) (*model.Access, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.members[roomID]
	if !ok {
		return nil, nil
	}
	access := &model.Access{PremiumOnly: m.premium[roomID]}
	if role, ok := room[userID]; ok {
		access.Member = &model.RoomMember{RoomID: roomID, UserID: userID, Role: role}
	}
	return access, nil
}

func (m *memStore) RoomMemberIDs(_ context.Context, roomID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.members[roomID]))
	for id := range m.members[roomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) SaveMessage(ctx context.Context, msg *model.Message) error {
	if m.saveDelay > 0 {
		select {
		case <-time.After(m.saveDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID] = clone(*msg)
	m.committed = append(m.committed, msg.ID)
	return nil
}

func (m *memStore) GetMessage(_ context.Context, roomID string, id uuid.UUID) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok || msg.RoomID != roomID {
		return nil, nil
	}
	out := clone(msg)
	return &out, nil
}

func (m *memStore) GetMessageForUpdate(ctx context.Context, roomID string, id uuid.UUID) (*model.Message, error) {
	return m.GetMessage(ctx, roomID, id)
}

func (m *memStore) GetMessageByClientID(_ context.Context, roomID, authorID, clientMessageID string) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.RoomID == roomID && msg.AuthorID == authorID && msg.ClientMessageID != nil && *msg.ClientMessageID == clientMessageID {
			out := clone(msg)
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateMessage(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID] = clone(*msg)
	return nil
}

func (m *memStore) IncrementReplyCount(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := m.messages[id]
	msg.ReplyCount++
	m.messages[id] = msg
	return nil
}

func (m *memStore) CountReplies(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if msg.ThreadID != nil && *msg.ThreadID == id {
			n++
		}
	}
	return n, nil
}

func newerFirst(a, b model.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

func before(msg model.Message, c *model.Cursor) bool {
	if c == nil {
		return true
	}
	if !msg.CreatedAt.Equal(c.CreatedAt) {
		return msg.CreatedAt.Before(c.CreatedAt)
	}
	return bytes.Compare(msg.ID[:], c.ID[:]) < 0
}

func (m *memStore) ListMessages(_ context.Context, roomID string, threadID *uuid.UUID, after *model.Cursor, limit int) (model.MessageList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out model.MessageList
	for _, msg := range m.messages {
		if msg.RoomID != roomID {
			continue
		}
		if threadID == nil && msg.ThreadID != nil {
			continue
		}
		if threadID != nil && (msg.ThreadID == nil || *msg.ThreadID != *threadID) {
			continue
		}
		if !before(msg, after) {
			continue
		}
		out = append(out, clone(msg))
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SearchMessages(_ context.Context, roomID, text string, after *model.Cursor, limit int) ([]model.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(text)
	var out []model.SearchHit
	for _, msg := range m.messages {
		if msg.RoomID != roomID || msg.IsDeleted() {
			continue
		}
		rank := float64(strings.Count(strings.ToLower(msg.Body), needle))
		if rank == 0 {
			continue
		}
		if after != nil && after.Rank != nil {
			if rank > *after.Rank || (rank == *after.Rank && !before(msg, after)) {
				continue
			}
		}
		out = append(out, model.SearchHit{Message: clone(msg), Rank: rank})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return newerFirst(out[i].Message, out[j].Message)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListPinned(_ context.Context, roomID string) (model.MessageList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out model.MessageList
	for _, msg := range m.messages {
		if msg.RoomID == roomID && msg.Pinned && !msg.IsDeleted() {
			out = append(out, clone(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i], out[j]) })
	return out, nil
}

func (m *memStore) ListRoomMessageIDs(_ context.Context, roomID string) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, id := range m.committed {
		if m.messages[id].RoomID == roomID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) UpsertReaction(_ context.Context, r model.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reactions[r.MessageID] == nil {
		m.reactions[r.MessageID] = make(map[string]model.Reaction)
	}
	m.reactions[r.MessageID][r.UserID] = r
	return nil
}

func (m *memStore) DeleteReaction(_ context.Context, messageID uuid.UUID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reactions[messageID], userID)
	return nil
}

func (m *memStore) ListReactions(_ context.Context, messageID uuid.UUID) ([]model.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Reaction, 0, len(m.reactions[messageID]))
	for _, r := range m.reactions[messageID] {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) GetStagedMedia(_ context.Context, ownerID string, ids []uuid.UUID) ([]model.MediaRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.MediaRef
	for _, id := range ids {
		if ref, ok := m.media[id]; ok && ref.OwnerID == ownerID {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (m *memStore) AttachMedia(_ context.Context, messageID uuid.UUID, attachments []model.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachments[messageID] = append([]model.Attachment(nil), attachments...)
	return nil
}

func (m *memStore) ClearAttachments(_ context.Context, messageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attachments, messageID)
	return nil
}

func (m *memStore) ListAttachments(_ context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID][]model.Attachment)
	for _, id := range messageIDs {
		if list, ok := m.attachments[id]; ok {
			out[id] = append([]model.Attachment(nil), list...)
		}
	}
	return out, nil
}

func (m *memStore) UpsertReadMarker(_ context.Context, marker model.ReadMarker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[marker.RoomID+"/"+marker.UserID] = marker
	return nil
}

func (m *memStore) WithTx(ctx context.Context, cb func(ctx context.Context) error) error {
	return cb(ctx)
}
