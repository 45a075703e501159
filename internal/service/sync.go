package service

import (
	"context"
	"sync"
	"time"

	"github.com/fandyandika/miqra/internal/cache"
	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/internal/remote"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	syncBatchSize       = 10
	defaultSyncInterval = 2 * time.Minute
)

// Cache keys dirtied when queued check-ins reach the backend.
var syncedInvalidations = []string{"checkin", "streak", "reading"}

type SyncResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

type SyncStatus struct {
	IsSyncing    bool       `json:"is_syncing"`
	LastSyncAt   *time.Time `json:"last_sync_at"`
	PendingCount int        `json:"pending_count"`
}

// StreakRecomputer is what the sync manager needs from the streak side:
// a full recompute after queued check-ins land remotely.
type StreakRecomputer interface {
	Recompute(ctx context.Context, userID string) (*model.Streak, error)
}

// SyncManager drains the local queue against the backend. Triggers —
// app foreground, network restore, the periodic ticker, explicit calls —
// all funnel into SyncNow; at most one pass runs at a time and triggers
// arriving mid-pass coalesce into a single follow-up pass, so two
// readers never drain the same entries.
type SyncManager struct {
	store    LocalQueue
	remote   Remote
	streaks  StreakRecomputer
	bus      *cache.Bus
	interval time.Duration

	mu      sync.Mutex
	running bool
	rerun   bool

	stateMu    sync.Mutex
	syncing    bool
	lastSyncAt *time.Time

	stopOnce sync.Once
	done     chan struct{}
}

func NewSyncManager(store LocalQueue, r Remote, streaks StreakRecomputer, bus *cache.Bus, interval time.Duration) *SyncManager {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &SyncManager{
		store:    store,
		remote:   r,
		streaks:  streaks,
		bus:      bus,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start kicks an initial pass and runs the periodic one until Close.
func (m *SyncManager) Start() {
	go func() {
		m.SyncNow(context.Background())

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Logger().Debug("interval sync")
				m.SyncNow(context.Background())
			case <-m.done:
				return
			}
		}
	}()
}

// Close stops the periodic sync. An in-flight pass finishes on its own.
func (m *SyncManager) Close() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *SyncManager) NotifyForeground(ctx context.Context) SyncResult {
	logger.Logger().Debug("app foregrounded, syncing")
	return m.SyncNow(ctx)
}

func (m *SyncManager) NotifyNetworkUp(ctx context.Context) SyncResult {
	logger.Logger().Debug("network restored, syncing")
	return m.SyncNow(ctx)
}

// SyncNow runs a sync pass. If a pass is already in flight the call
// returns immediately with a zero result and the in-flight pass runs one
// more time after it finishes.
func (m *SyncManager) SyncNow(ctx context.Context) SyncResult {
	m.mu.Lock()
	if m.running {
		m.rerun = true
		m.mu.Unlock()
		return SyncResult{}
	}
	m.running = true
	m.mu.Unlock()

	var total SyncResult
	for {
		r := m.pass(ctx)
		total.Synced += r.Synced
		total.Failed += r.Failed

		m.mu.Lock()
		if !m.rerun {
			m.running = false
			m.mu.Unlock()
			break
		}
		m.rerun = false
		m.mu.Unlock()
	}

	if total.Synced > 0 {
		m.bus.Invalidate(syncedInvalidations...)
	}
	return total
}

func (m *SyncManager) pass(ctx context.Context) SyncResult {
	m.setSyncing(true)
	defer m.setSyncing(false)

	batch := m.store.PopPending(ctx, syncBatchSize)
	if len(batch) == 0 {
		return SyncResult{}
	}

	log := logger.Logger()
	log.Info("processing pending check-ins", zap.Int("count", len(batch)))

	var result SyncResult
	users := make(map[string]struct{})

	for _, row := range batch {
		var payload model.CheckinPayload
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			// Malformed payloads can never sync; drop them so they
			// do not poison the queue.
			log.Error("dropping malformed pending check-in",
				zap.Int64("id", row.ID), zap.Error(err))
			m.store.DeletePending(ctx, row.ID)
			result.Failed++
			continue
		}

		res, err := m.remote.UpsertCheckin(ctx, payload)
		if err != nil {
			result.Failed++
			if remote.IsPermanent(err) {
				log.Error("dropping rejected check-in",
					zap.Int64("id", row.ID),
					zap.String("date", payload.Date),
					zap.Error(err))
				m.store.DeletePending(ctx, row.ID)
			} else {
				log.Warn("check-in sync failed, will retry",
					zap.Int64("id", row.ID),
					zap.String("date", payload.Date),
					zap.Error(err))
			}
			continue
		}

		m.store.CacheCheckin(ctx, res.UserID, res.Date, res.AyatCount)
		m.store.DeletePending(ctx, row.ID)
		users[res.UserID] = struct{}{}
		result.Synced++
		log.Info("check-in synced", zap.String("date", payload.Date))
	}

	for userID := range users {
		if _, err := m.streaks.Recompute(ctx, userID); err != nil {
			log.Warn("streak recompute after sync failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	now := time.Now()
	m.stateMu.Lock()
	m.lastSyncAt = &now
	m.stateMu.Unlock()

	log.Info("sync pass complete",
		zap.Int("synced", result.Synced), zap.Int("failed", result.Failed))
	return result
}

func (m *SyncManager) setSyncing(v bool) {
	m.stateMu.Lock()
	m.syncing = v
	m.stateMu.Unlock()
}

// Status backs the "N pending sync" indicator.
func (m *SyncManager) Status(ctx context.Context) SyncStatus {
	m.stateMu.Lock()
	syncing := m.syncing
	last := m.lastSyncAt
	m.stateMu.Unlock()

	return SyncStatus{
		IsSyncing:    syncing,
		LastSyncAt:   last,
		PendingCount: m.store.CountPending(ctx),
	}
}
