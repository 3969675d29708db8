// Package ratelimit implements per-identity sliding-window budgets for
// client actions.
package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

type Action string

const (
	ActionSend     Action = "send"
	ActionTyping   Action = "typing"
	ActionReaction Action = "reaction"
)

type Budget struct {
	Limit  int
	Window time.Duration
}

const shardCount = 32

type Limiter struct {
	budgets map[Action]Budget
	now     func() time.Time
	shards  [shardCount]*shard
}

type shard struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func New(budgets map[Action]Budget, opts ...Option) *Limiter {
	l := &Limiter{
		budgets: budgets,
		now:     time.Now,
	}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string][]time.Time)}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Allow(identity string, action Action) bool {
	_, ok := l.Check(identity, action)
	return ok
}

// Check records a hit when the budget allows it. On rejection nothing is
// recorded and the time until the oldest hit leaves the window is returned.
func (l *Limiter) Check(identity string, action Action) (time.Duration, bool) {
	budget, ok := l.budgets[action]
	if !ok || budget.Limit <= 0 {
		return 0, true
	}

	key := string(action) + ":" + identity
	s := l.shard(key)
	now := l.now()
	cutoff := now.Add(-budget.Window)

	s.mu.Lock()
	defer s.mu.Unlock()

	hits := live(s.windows[key], cutoff)
	if len(hits) >= budget.Limit {
		s.windows[key] = hits
		return hits[0].Add(budget.Window).Sub(now), false
	}
	s.windows[key] = append(hits, now)
	return 0, true
}

// Cleanup drops keys with no hits inside their window.
func (l *Limiter) Cleanup() {
	now := l.now()
	var longest time.Duration
	for _, b := range l.budgets {
		if b.Window > longest {
			longest = b.Window
		}
	}
	cutoff := now.Add(-longest)
	for _, s := range l.shards {
		s.mu.Lock()
		for key, hits := range s.windows {
			if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
				delete(s.windows, key)
			}
		}
		s.mu.Unlock()
	}
}

func (l *Limiter) shard(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return l.shards[h.Sum32()%shardCount]
}

// live returns the suffix of hits newer than cutoff; hits are in time order.
func live(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
