// Package cache provides the query-cache invalidation bus. The UI keeps
// per-key read caches (streak, today's check-in, reading stats); writers
// and the realtime subscriber publish invalidations here so those caches
// refetch from remote truth. Refetching is idempotent, so redundant
// invalidations — including echoes of our own writes — are harmless.
package cache

import (
	"strings"
	"sync"

	"github.com/fandyandika/miqra/pkg/logger"

	"go.uber.org/zap"
)

type Bus struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]*Subscription
}

// Subscription is a live listener on the bus. Holders must call
// Unsubscribe when the owning session ends or the listener leaks across
// login/logout cycles.
type Subscription struct {
	id  int64
	key string
	fn  func(key string)
	bus *Bus
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int64]*Subscription)}
}

// Subscribe registers fn for a cache key. Invalidating a key notifies
// subscribers of that exact key and of any key nested under it, so
// Invalidate("checkin") reaches a subscriber of "checkin/today".
func (b *Bus) Subscribe(key string, fn func(key string)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, key: key, fn: fn, bus: b}
	b.subs[sub.id] = sub
	return sub
}

func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subs, s.id)
}

func (b *Bus) Invalidate(keys ...string) {
	b.mu.Lock()
	var matched []*Subscription
	for _, key := range keys {
		for _, sub := range b.subs {
			if sub.key == key || strings.HasPrefix(sub.key, key+"/") {
				matched = append(matched, sub)
			}
		}
	}
	b.mu.Unlock()

	logger.Logger().Debug("invalidating cache keys",
		zap.Strings("keys", keys), zap.Int("listeners", len(matched)))

	for _, sub := range matched {
		sub.fn(sub.key)
	}
}
