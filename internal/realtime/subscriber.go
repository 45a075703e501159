// Package realtime wires the backend's row-change notifications into
// local cache invalidation. A notification is only a trigger to refetch;
// its payload is never trusted as data.
package realtime

import (
	"fmt"
	"sync"

	"github.com/fandyandika/miqra/internal/cache"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Tables we watch per user session.
var watchedTables = []string{"checkins", "reading_sessions", "streaks"}

// invalidationKeys maps a changed table to the cache keys it dirties.
// Mirrors what each table feeds on the client: check-ins drive streak
// and family views, reading sessions drive nearly everything.
func invalidationKeys(table string) []string {
	switch table {
	case "checkins":
		return []string{"checkin", "streak", "families"}
	case "reading_sessions":
		return []string{"reading", "khatam", "streak", "checkin", "hasanat"}
	case "streaks":
		return []string{"streak"}
	default:
		return nil
	}
}

type subscribeFrame struct {
	Event  string `json:"event"`
	Table  string `json:"table"`
	Filter string `json:"filter"`
}

type changeFrame struct {
	Event string `json:"event"`
	Table string `json:"table"`
	Type  string `json:"type"`
}

// Subscriber opens one websocket per active user session and turns
// change frames into cache invalidations.
type Subscriber struct {
	url string
	bus *cache.Bus

	mu      sync.Mutex
	handles map[string]*Handle
}

func New(url string, bus *cache.Bus) *Subscriber {
	return &Subscriber{
		url:     url,
		bus:     bus,
		handles: make(map[string]*Handle),
	}
}

// Handle is a live per-user subscription. Unsubscribe must be called on
// session end; a second subscription for the same user replaces the
// first.
type Handle struct {
	userID string
	conn   *websocket.Conn
	once   sync.Once
	sub    *Subscriber
}

func (s *Subscriber) Subscribe(userID string) (*Handle, error) {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	for _, table := range watchedTables {
		frame := subscribeFrame{
			Event:  "subscribe",
			Table:  table,
			Filter: "user_id=eq." + userID,
		}
		msg, err := json.Marshal(frame)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to subscribe to %s changes: %w", table, err)
		}
	}

	h := &Handle{userID: userID, conn: conn, sub: s}

	s.mu.Lock()
	if prev, ok := s.handles[userID]; ok {
		prev.close()
	}
	s.handles[userID] = h
	s.mu.Unlock()

	go s.readLoop(h)

	logger.Logger().Info("realtime subscription established",
		zap.String("user_id", userID))
	return h, nil
}

func (s *Subscriber) readLoop(h *Handle) {
	for {
		_, p, err := h.conn.ReadMessage()
		if err != nil {
			// Normal on unsubscribe; otherwise the next session
			// re-establishes the subscription.
			logger.Logger().Debug("realtime read loop ended",
				zap.String("user_id", h.userID), zap.Error(err))
			return
		}

		var frame changeFrame
		if err := json.Unmarshal(p, &frame); err != nil {
			logger.Logger().Warn("failed to decode realtime frame", zap.Error(err))
			continue
		}

		keys := invalidationKeys(frame.Table)
		if len(keys) == 0 {
			continue
		}

		logger.Logger().Debug("remote change received",
			zap.String("table", frame.Table), zap.String("type", frame.Type))
		s.bus.Invalidate(keys...)
	}
}

// Unsubscribe tears the session's subscription down and deregisters it.
func (h *Handle) Unsubscribe() {
	h.sub.mu.Lock()
	if h.sub.handles[h.userID] == h {
		delete(h.sub.handles, h.userID)
	}
	h.sub.mu.Unlock()
	h.close()
}

func (h *Handle) close() {
	h.once.Do(func() {
		h.conn.Close()
	})
}

// UnsubscribeUser ends the given user's subscription if one is live.
func (s *Subscriber) UnsubscribeUser(userID string) {
	s.mu.Lock()
	h, ok := s.handles[userID]
	if ok {
		delete(s.handles, userID)
	}
	s.mu.Unlock()

	if ok {
		h.close()
		logger.Logger().Info("realtime subscription closed",
			zap.String("user_id", userID))
	}
}

// Close tears down every live subscription, for process shutdown.
func (s *Subscriber) Close() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.handles = make(map[string]*Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.close()
	}
}
