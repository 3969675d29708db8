package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
	"github.com/s21platform/group-chat-service/internal/pkg/validator"
	"github.com/s21platform/group-chat-service/internal/registry"
	"github.com/s21platform/group-chat-service/internal/router"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeTransport struct {
	mu     sync.Mutex
	events []model.Event
}

func (f *fakeTransport) Send(ev model.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return true
}

func (f *fakeTransport) Close(registry.CloseReason) {}

func (f *fakeTransport) Events() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Event(nil), f.events...)
}

func (f *fakeTransport) OfType(t model.EventType) []model.Event {
	var out []model.Event
	for _, ev := range f.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type queued struct {
	recipient string
	payload   model.DeliveryPayload
	priority  model.Priority
}

type fakeQueue struct {
	mu      sync.Mutex
	entries []queued
}

func (q *fakeQueue) Enqueue(_ context.Context, recipient string, payload model.DeliveryPayload, priority model.Priority) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, queued{recipient: recipient, payload: payload, priority: priority})
	return nil
}

func (q *fakeQueue) For(recipient string) []queued {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []queued
	for _, e := range q.entries {
		if e.recipient == recipient {
			out = append(out, e)
		}
	}
	return out
}

func newTestLogger(t *testing.T) logger_lib.LoggerInterface {
	ctrl := gomock.NewController(t)
	l := logger_lib.NewMockLoggerInterface(ctrl)
	l.EXPECT().Info(gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any()).AnyTimes()
	l.EXPECT().Error(gomock.Any()).AnyTimes()
	return l
}

type harness struct {
	store    *memStore
	registry *registry.Registry
	queue    *fakeQueue
	clock    *testClock
	svc      *Service
}

func newHarness(t *testing.T, cfg Config) *harness {
	logger := newTestLogger(t)
	store := newMemStore()
	clock := &testClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}

	reg := registry.New(registry.Config{}, registry.AccessCheckerFunc(store.RoomAccess), logger, registry.WithClock(clock.Now))
	queue := &fakeQueue{}
	limiter := ratelimit.New(map[ratelimit.Action]ratelimit.Budget{
		ratelimit.ActionSend:     {Limit: 30, Window: time.Minute},
		ratelimit.ActionTyping:   {Limit: 60, Window: time.Minute},
		ratelimit.ActionReaction: {Limit: 60, Window: time.Minute},
	}, ratelimit.WithClock(clock.Now))

	svc := New(cfg, store, router.New(reg, store, queue, logger), limiter, nil, validator.New(), logger, WithClock(clock.Now))
	return &harness{store: store, registry: reg, queue: queue, clock: clock, svc: svc}
}

func (h *harness) connect(t *testing.T, userID string, rooms ...string) (string, *fakeTransport) {
	tr := &fakeTransport{}
	id, err := h.registry.Register(model.Identity{UserID: userID}, tr)
	require.NoError(t, err)
	for _, room := range rooms {
		require.NoError(t, h.registry.Subscribe(context.Background(), id, room))
	}
	return id, tr
}

func (h *harness) send(t *testing.T, userID, roomID, body string) *model.Message {
	msg, _, err := h.svc.Send(context.Background(), model.Identity{UserID: userID}, model.SendInput{RoomID: roomID, Body: body})
	require.NoError(t, err)
	return msg
}

var (
	alice = model.Identity{UserID: "alice"}
	bob   = model.Identity{UserID: "bob"}
	mod   = model.Identity{UserID: "mod"}
)

func groupHarness(t *testing.T) *harness {
	h := newHarness(t, Config{})
	h.store.addMember("g", "alice", model.RoleMember)
	h.store.addMember("g", "bob", model.RoleMember)
	h.store.addMember("g", "mod", model.RoleModerator)
	return h
}

func TestService_Send(t *testing.T) {
	t.Parallel()

	t.Run("offline_member_gets_one_record", func(t *testing.T) {
		h := newHarness(t, Config{})
		h.store.addMember("g", "alice", model.RoleMember)
		h.store.addMember("g", "bob", model.RoleMember)

		origin, originT := h.connect(t, "alice", "g")
		_, otherT := h.connect(t, "alice", "g")

		ctx := WithOrigin(context.Background(), origin)
		msg, dup, err := h.svc.Send(ctx, alice, model.SendInput{RoomID: "g", Body: "hello"})
		require.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, "hello", msg.Body)
		assert.Equal(t, model.TextMessageType, msg.Type)

		assert.Empty(t, originT.Events())
		require.Len(t, otherT.OfType(model.EventMessage), 1)

		records := h.queue.For("bob")
		require.Len(t, records, 1)
		assert.Equal(t, model.PriorityNormal, records[0].priority)
		assert.Equal(t, msg.ID, records[0].payload.MessageID)
		assert.Empty(t, h.queue.For("alice"))

		stored, err := h.svc.Get(context.Background(), bob, "g", msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", stored.Body)
	})

	t.Run("non_member", func(t *testing.T) {
		h := groupHarness(t)
		_, _, err := h.svc.Send(context.Background(), model.Identity{UserID: "eve"}, model.SendInput{RoomID: "g", Body: "hi"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))

		_, _, err = h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "nowhere", Body: "hi"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("premium_room", func(t *testing.T) {
		h := groupHarness(t)
		h.store.premium["g"] = true

		_, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "hi"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))

		_, _, err = h.svc.Send(context.Background(), model.Identity{UserID: "alice", Premium: true}, model.SendInput{RoomID: "g", Body: "hi"})
		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		h := groupHarness(t)
		_, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "  "})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, _, err = h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Type: model.SystemMessageType, Body: "x"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("duplicate_client_message_id", func(t *testing.T) {
		h := groupHarness(t)
		_, bobT := h.connect(t, "bob", "g")

		cid := "c-1"
		first, dup, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "once", ClientMessageID: &cid})
		require.NoError(t, err)
		assert.False(t, dup)

		again, dup, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "once", ClientMessageID: &cid})
		require.NoError(t, err)
		assert.True(t, dup)
		assert.Equal(t, first.ID, again.ID)

		assert.Len(t, bobT.OfType(model.EventMessage), 1)
		assert.Len(t, h.store.committed, 1)
	})

	t.Run("client_message_id_is_scoped_to_room", func(t *testing.T) {
		h := groupHarness(t)
		h.store.addMember("side", "alice", model.RoleMember)

		cid := "c-1"
		first, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "in g", ClientMessageID: &cid})
		require.NoError(t, err)

		other, dup, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "side", Body: "in side", ClientMessageID: &cid})
		require.NoError(t, err)
		assert.False(t, dup)
		assert.NotEqual(t, first.ID, other.ID)
		assert.Equal(t, "side", other.RoomID)
		assert.Len(t, h.store.committed, 2)
	})

	t.Run("rate_limited_on_31st", func(t *testing.T) {
		h := groupHarness(t)
		for i := 0; i < 30; i++ {
			h.send(t, "alice", "g", fmt.Sprintf("m%d", i))
		}

		_, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "too many"})
		require.True(t, apperr.Is(err, apperr.KindRateLimited))
		assert.Greater(t, apperr.RetryAfterOf(err), time.Duration(0))
		assert.Len(t, h.store.committed, 30)

		_, _, err = h.svc.Send(context.Background(), bob, model.SendInput{RoomID: "g", Body: "other identity"})
		assert.NoError(t, err)

		h.clock.Advance(61 * time.Second)
		_, _, err = h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "window rolled"})
		assert.NoError(t, err)
	})

	t.Run("mentions", func(t *testing.T) {
		h := groupHarness(t)
		h.store.addMember("g", "carol", model.RoleMember)
		_, bobT := h.connect(t, "bob")

		msg, _, err := h.svc.Send(context.Background(), alice, model.SendInput{
			RoomID:   "g",
			Body:     "@bob @carol @eve",
			Mentions: []string{"bob", "carol", "eve", "carol", "alice"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"bob", "carol"}, []string(msg.Mentions))

		mentions := bobT.OfType(model.EventMention)
		require.Len(t, mentions, 1)
		assert.Equal(t, msg.ID, mentions[0].Data.(model.MentionEvent).MessageID)

		carol := h.queue.For("carol")
		require.Len(t, carol, 1, "one record per recipient")
		assert.Equal(t, model.PriorityHigh, carol[0].priority)
		assert.Equal(t, model.PriorityNormal, h.queue.For("mod")[0].priority)
		assert.Empty(t, h.queue.For("eve"))
	})

	t.Run("announcement", func(t *testing.T) {
		h := groupHarness(t)
		_, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Type: model.AnnouncementMessageType, Body: "hear ye"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))

		_, _, err = h.svc.Send(context.Background(), mod, model.SendInput{RoomID: "g", Type: model.AnnouncementMessageType, Body: "hear ye"})
		require.NoError(t, err)
		require.Len(t, h.queue.For("alice"), 1)
		assert.Equal(t, model.PriorityHigh, h.queue.For("alice")[0].priority)
	})

	t.Run("thread_reply", func(t *testing.T) {
		h := groupHarness(t)
		root := h.send(t, "alice", "g", "root")

		reply, _, err := h.svc.Send(context.Background(), bob, model.SendInput{RoomID: "g", ThreadID: &root.ID, Body: "reply"})
		require.NoError(t, err)
		assert.Equal(t, root.ID, *reply.ThreadID)

		got, err := h.svc.Get(context.Background(), alice, "g", root.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ReplyCount)

		_, _, err = h.svc.Send(context.Background(), bob, model.SendInput{RoomID: "g", ThreadID: &reply.ID, Body: "nested"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		missing := uuid.New()
		_, _, err = h.svc.Send(context.Background(), bob, model.SendInput{RoomID: "g", ThreadID: &missing, Body: "lost"})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("attachments", func(t *testing.T) {
		h := groupHarness(t)
		mine := model.MediaRef{ID: uuid.New(), OwnerID: "alice", Category: model.MediaImage, ContentType: "image/png", URL: "https://cdn/a.png"}
		theirs := model.MediaRef{ID: uuid.New(), OwnerID: "bob", Category: model.MediaImage, ContentType: "image/png"}
		voice := model.MediaRef{ID: uuid.New(), OwnerID: "alice", Category: model.MediaVoice, ContentType: "audio/ogg"}
		h.store.media[mine.ID] = mine
		h.store.media[theirs.ID] = theirs
		h.store.media[voice.ID] = voice

		msg, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Type: model.ImageMessageType, MediaIDs: []uuid.UUID{mine.ID}})
		require.NoError(t, err)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, mine.URL, msg.Attachments[0].URL)

		got, err := h.svc.Get(context.Background(), bob, "g", msg.ID)
		require.NoError(t, err)
		require.Len(t, got.Attachments, 1)

		_, _, err = h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Type: model.ImageMessageType, MediaIDs: []uuid.UUID{theirs.ID}})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, _, err = h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Type: model.ImageMessageType, MediaIDs: []uuid.UUID{voice.ID}})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("persist_timeout_is_transient", func(t *testing.T) {
		h := newHarness(t, Config{PersistTimeout: 20 * time.Millisecond})
		h.store.addMember("g", "alice", model.RoleMember)
		h.store.saveDelay = time.Second

		_, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "slow"})
		assert.True(t, apperr.Is(err, apperr.KindTransient))
		assert.Empty(t, h.store.committed)
	})
}

func TestService_CommitOrder(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	_, bobT := h.connect(t, "bob", "g")
	_, modT := h.connect(t, "mod", "g")

	var wg sync.WaitGroup
	for _, author := range []string{"alice", "bob", "mod"} {
		wg.Add(1)
		go func(author string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, _, err := h.svc.Send(context.Background(), model.Identity{UserID: author}, model.SendInput{RoomID: "g", Body: fmt.Sprintf("%s-%d", author, i)})
				assert.NoError(t, err)
			}
		}(author)
	}
	wg.Wait()

	for _, tr := range []*fakeTransport{bobT, modT} {
		events := tr.OfType(model.EventMessage)
		require.Len(t, events, 30)
		for i, ev := range events {
			assert.Equal(t, h.store.committed[i], ev.Data.(model.MessageEvent).Message.ID)
		}
	}
}

func TestService_Edit(t *testing.T) {
	t.Parallel()

	t.Run("window_boundaries", func(t *testing.T) {
		h := groupHarness(t)

		early := h.send(t, "alice", "g", "first")
		h.clock.Advance(14*time.Minute + 59*time.Second)
		edited, err := h.svc.Edit(context.Background(), alice, "g", early.ID, model.EditInput{Body: "first, fixed"})
		require.NoError(t, err)
		assert.Equal(t, "first, fixed", edited.Body)

		late := h.send(t, "alice", "g", "second")
		h.clock.Advance(15*time.Minute + time.Second)
		_, err = h.svc.Edit(context.Background(), alice, "g", late.ID, model.EditInput{Body: "too late"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))

		_, err = h.svc.Edit(context.Background(), mod, "g", late.ID, model.EditInput{Body: "moderated"})
		assert.NoError(t, err)
	})

	t.Run("round_trip", func(t *testing.T) {
		h := groupHarness(t)
		_, bobT := h.connect(t, "bob", "g")

		msg := h.send(t, "alice", "g", "draft")
		_, err := h.svc.Edit(context.Background(), alice, "g", msg.ID, model.EditInput{Body: "final"})
		require.NoError(t, err)

		got, err := h.svc.Get(context.Background(), bob, "g", msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Body)
		assert.Equal(t, model.StatusEdited, got.Status)
		require.NotNil(t, got.EditedAt)

		edits := bobT.OfType(model.EventMessageEdited)
		require.Len(t, edits, 1)
		assert.Equal(t, "final", edits[0].Data.(model.MessageEditedEvent).Message.Body)
	})

	t.Run("only_author", func(t *testing.T) {
		h := groupHarness(t)
		msg := h.send(t, "alice", "g", "mine")
		_, err := h.svc.Edit(context.Background(), bob, "g", msg.ID, model.EditInput{Body: "yours"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("new_mentions_notified", func(t *testing.T) {
		h := groupHarness(t)
		msg, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", Body: "hi @bob", Mentions: []string{"bob"}})
		require.NoError(t, err)
		before := len(h.queue.For("mod"))

		_, err = h.svc.Edit(context.Background(), alice, "g", msg.ID, model.EditInput{Body: "hi @mod", Mentions: []string{"mod"}})
		require.NoError(t, err)

		records := h.queue.For("mod")
		require.Len(t, records, before+1)
		last := records[len(records)-1]
		assert.Equal(t, model.EventMention, last.payload.EventKind)
		assert.Equal(t, model.PriorityHigh, last.priority)
		assert.Len(t, h.queue.For("bob"), 1, "removed mention is not retracted or re-notified")
	})

	t.Run("deleted_message", func(t *testing.T) {
		h := groupHarness(t)
		msg := h.send(t, "alice", "g", "gone")
		_, err := h.svc.Delete(context.Background(), alice, "g", msg.ID)
		require.NoError(t, err)

		_, err = h.svc.Edit(context.Background(), alice, "g", msg.ID, model.EditInput{Body: "back"})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	_, bobT := h.connect(t, "bob", "g")

	root := h.send(t, "alice", "g", "root")
	reply, _, err := h.svc.Send(context.Background(), alice, model.SendInput{RoomID: "g", ThreadID: &root.ID, Body: "secret"})
	require.NoError(t, err)
	_, err = h.svc.React(context.Background(), bob, "g", reply.ID, "👍")
	require.NoError(t, err)

	_, err = h.svc.Delete(context.Background(), bob, "g", reply.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "members cannot delete other members' messages")

	_, err = h.svc.Delete(context.Background(), alice, "g", reply.ID)
	require.NoError(t, err)

	got, err := h.svc.Get(context.Background(), bob, "g", reply.ID)
	require.NoError(t, err)
	assert.Equal(t, reply.ID, got.ID)
	assert.Equal(t, "alice", got.AuthorID)
	require.NotNil(t, got.ThreadID)
	assert.Equal(t, root.ID, *got.ThreadID)
	assert.Equal(t, model.DeletedMarker, got.Body)
	assert.Empty(t, got.Attachments)
	assert.Equal(t, model.StatusDeleted, got.Status)
	assert.Equal(t, 1, got.Reactions.Total(), "reactions survive deletion")

	rootNow, err := h.svc.Get(context.Background(), bob, "g", root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rootNow.ReplyCount)

	deletions := bobT.OfType(model.EventMessageDeleted)
	require.Len(t, deletions, 1)
	assert.Equal(t, model.DeletedMarker, deletions[0].Data.(model.MessageDeletedEvent).Marker)

	_, err = h.svc.Delete(context.Background(), alice, "g", reply.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	other := h.send(t, "bob", "g", "rude")
	_, err = h.svc.Delete(context.Background(), mod, "g", other.ID)
	assert.NoError(t, err)
}

func TestService_React(t *testing.T) {
	t.Parallel()

	t.Run("toggle", func(t *testing.T) {
		h := groupHarness(t)
		msg := h.send(t, "alice", "g", "react to me")

		ev, err := h.svc.React(context.Background(), bob, "g", msg.ID, "👍")
		require.NoError(t, err)
		assert.Equal(t, model.ReactionAdded, ev.Action)
		assert.Equal(t, 1, ev.Total)

		ev, err = h.svc.React(context.Background(), bob, "g", msg.ID, "👍")
		require.NoError(t, err)
		assert.Equal(t, model.ReactionRemoved, ev.Action)
		assert.Equal(t, 0, ev.Total)

		ev, err = h.svc.React(context.Background(), bob, "g", msg.ID, "👍")
		require.NoError(t, err)
		assert.Equal(t, model.ReactionAdded, ev.Action)
		assert.Equal(t, 1, ev.Total)

		ev, err = h.svc.React(context.Background(), bob, "g", msg.ID, "🎉")
		require.NoError(t, err)
		assert.Equal(t, model.ReactionReplaced, ev.Action)
		assert.Equal(t, map[string]int{"🎉": 1}, ev.Counts)

		rows, _ := h.store.ListReactions(context.Background(), msg.ID)
		require.Len(t, rows, 1)
		assert.Equal(t, "🎉", rows[0].Kind)
	})

	t.Run("concurrent_identities", func(t *testing.T) {
		h := newHarness(t, Config{})
		kinds := map[string]string{"u1": "👍", "u2": "❤️", "u3": "😂", "u4": "🎉", "u5": "🔥"}
		h.store.addMember("g", "author", model.RoleMember)
		for user := range kinds {
			h.store.addMember("g", user, model.RoleMember)
		}
		msg := h.send(t, "author", "g", "pile on")

		var wg sync.WaitGroup
		for user, kind := range kinds {
			wg.Add(1)
			go func(user, kind string) {
				defer wg.Done()
				_, err := h.svc.React(context.Background(), model.Identity{UserID: user}, "g", msg.ID, kind)
				assert.NoError(t, err)
			}(user, kind)
		}
		wg.Wait()

		got, err := h.svc.Get(context.Background(), model.Identity{UserID: "author"}, "g", msg.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Reactions.Total())
		for user, kind := range kinds {
			k, ok := got.Reactions.KindOf(user)
			assert.True(t, ok)
			assert.Equal(t, kind, k)
		}
	})

	t.Run("deleted_message", func(t *testing.T) {
		h := groupHarness(t)
		msg := h.send(t, "alice", "g", "bye")
		_, err := h.svc.Delete(context.Background(), alice, "g", msg.ID)
		require.NoError(t, err)

		_, err = h.svc.React(context.Background(), bob, "g", msg.ID, "👍")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestService_Pin(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	msg := h.send(t, "alice", "g", "important")

	_, err := h.svc.Pin(context.Background(), alice, "g", msg.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	pinned, err := h.svc.Pin(context.Background(), mod, "g", msg.ID)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)

	list, err := h.svc.PinnedList(context.Background(), bob, "g")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, msg.ID, list[0].ID)

	unpinned, err := h.svc.Pin(context.Background(), mod, "g", msg.ID)
	require.NoError(t, err)
	assert.False(t, unpinned.Pinned)

	list, err = h.svc.PinnedList(context.Background(), bob, "g")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_History(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	var sent []uuid.UUID
	for i := 0; i < 5; i++ {
		sent = append(sent, h.send(t, "alice", "g", fmt.Sprintf("m%d", i)).ID)
		h.clock.Advance(time.Second)
	}

	page, err := h.svc.History(context.Background(), bob, model.HistoryQuery{RoomID: "g", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, sent[4], page.Messages[0].ID)
	assert.Equal(t, sent[3], page.Messages[1].ID)
	require.NotEmpty(t, page.NextCursor)

	// a message arriving between page fetches does not shift older pages
	h.send(t, "bob", "g", "late arrival")

	page, err = h.svc.History(context.Background(), bob, model.HistoryQuery{RoomID: "g", Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, sent[2], page.Messages[0].ID)
	assert.Equal(t, sent[1], page.Messages[1].ID)

	page, err = h.svc.History(context.Background(), bob, model.HistoryQuery{RoomID: "g", Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, sent[0], page.Messages[0].ID)
	assert.Empty(t, page.NextCursor)

	_, err = h.svc.History(context.Background(), bob, model.HistoryQuery{RoomID: "g", Cursor: "%%%"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = h.svc.History(context.Background(), model.Identity{UserID: "eve"}, model.HistoryQuery{RoomID: "g"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestService_Search(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	h.send(t, "alice", "g", "hello world")
	h.clock.Advance(time.Second)
	twice := h.send(t, "alice", "g", "hello hello")
	h.clock.Advance(time.Second)
	gone := h.send(t, "alice", "g", "hello from the past")
	h.send(t, "alice", "g", "unrelated")

	_, err := h.svc.Delete(context.Background(), alice, "g", gone.ID)
	require.NoError(t, err)

	page, err := h.svc.Search(context.Background(), bob, model.SearchQuery{RoomID: "g", Text: "hello", Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, twice.ID, page.Messages[0].ID, "most relevant first")
	require.NotEmpty(t, page.NextCursor)

	page, err = h.svc.Search(context.Background(), bob, model.SearchQuery{RoomID: "g", Text: "hello", Limit: 5, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "hello world", page.Messages[0].Body)
	assert.Empty(t, page.NextCursor)

	_, err = h.svc.Search(context.Background(), bob, model.SearchQuery{RoomID: "g", Text: "h"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	page, err = h.svc.Search(context.Background(), bob, model.SearchQuery{RoomID: "g", Text: "hello", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Messages, 2, "a deleted match does not shorten the page")
	assert.Empty(t, page.NextCursor)
	for _, m := range page.Messages {
		assert.NotEqual(t, gone.ID, m.ID)
	}
}

func TestService_MarkRead(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	_, aliceT := h.connect(t, "alice", "g")
	msg := h.send(t, "alice", "g", "read me")

	require.NoError(t, h.svc.MarkRead(context.Background(), bob, "g", msg.ID))
	assert.Equal(t, msg.ID, h.store.markers["g/bob"].MessageID)
	assert.Len(t, aliceT.OfType(model.EventRead), 1)

	err := h.svc.MarkRead(context.Background(), bob, "g", uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_Typing(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	_, bobT := h.connect(t, "bob", "g")

	require.NoError(t, h.svc.Typing(context.Background(), alice, "g", nil, true))
	require.NoError(t, h.svc.Typing(context.Background(), alice, "g", nil, false))

	events := bobT.OfType(model.EventTyping)
	require.Len(t, events, 2)
	start := events[0].Data.(model.TypingEvent)
	assert.True(t, start.Typing)
	require.NotNil(t, start.ExpiresAt)
	assert.Equal(t, h.clock.Now().Add(10*time.Second), *start.ExpiresAt)
	assert.False(t, events[1].Data.(model.TypingEvent).Typing)
	assert.Empty(t, h.queue.entries, "typing is never queued")
}

func TestService_Reconcile(t *testing.T) {
	t.Parallel()

	h := groupHarness(t)
	msg := h.send(t, "alice", "g", "count me")
	_, err := h.svc.React(context.Background(), bob, "g", msg.ID, "👍")
	require.NoError(t, err)

	// simulate drift between the aggregate and the reaction rows
	h.store.mu.Lock()
	drifted := h.store.messages[msg.ID]
	drifted.Reactions = model.Reactions{"👍": {"bob", "ghost"}}
	drifted.ReplyCount = 7
	h.store.messages[msg.ID] = drifted
	h.store.mu.Unlock()

	repaired, err := h.svc.Reconcile(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	got, err := h.svc.Get(context.Background(), alice, "g", msg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Reactions{"👍": {"bob"}}, got.Reactions)
	assert.Equal(t, 0, got.ReplyCount)

	repaired, err = h.svc.Reconcile(context.Background(), "g")
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
