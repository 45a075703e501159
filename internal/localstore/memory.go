package localstore

import (
	"context"
	"sort"
	"sync"

	"github.com/fandyandika/miqra/internal/model"
)

type cacheKey struct {
	userID string
	date   string
}

// MemoryStore is the fallback for platforms without a usable local
// database. It honors the same contract as SQLiteStore minus
// durability: queued entries do not survive a restart, so callers treat
// offline capture as best-effort in this mode.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	pending []model.PendingCheckin
	recent  map[cacheKey]int
	now     func() int64
}

func NewMemory(now func() int64) *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		recent: make(map[cacheKey]int),
		now:    now,
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Enqueue(_ context.Context, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := make([]byte, len(payload))
	copy(p, payload)
	s.pending = append(s.pending, model.PendingCheckin{
		ID:        s.nextID,
		Payload:   p,
		CreatedAt: s.now(),
	})
	s.nextID++
}

func (s *MemoryStore) PeekPending(_ context.Context, limit int) []model.PendingCheckin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oldest(limit)
}

func (s *MemoryStore) PopPending(_ context.Context, limit int) []model.PendingCheckin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oldest(limit)
}

func (s *MemoryStore) oldest(limit int) []model.PendingCheckin {
	n := limit
	if n > len(s.pending) {
		n = len(s.pending)
	}
	out := make([]model.PendingCheckin, n)
	copy(out, s.pending[:n])
	return out
}

func (s *MemoryStore) DeletePending(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.pending {
		if p.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

func (s *MemoryStore) CountPending(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *MemoryStore) CacheCheckin(_ context.Context, userID, date string, ayatCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent[cacheKey{userID: userID, date: date}] = ayatCount
}

func (s *MemoryStore) RecentCheckins(_ context.Context, userID string, days int) []model.RecentCheckin {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []model.RecentCheckin
	for k, count := range s.recent {
		if k.userID != userID {
			continue
		}
		rows = append(rows, model.RecentCheckin{
			UserID:    k.userID,
			Date:      k.date,
			AyatCount: count,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })
	if len(rows) > days {
		rows = rows[:days]
	}
	return rows
}
