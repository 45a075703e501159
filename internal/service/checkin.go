package service

import (
	"context"
	"time"

	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultRecentDays = 30

// CheckinService records daily reading. Submission is write-ahead: the
// check-in lands in the local queue and recent cache first, then a sync
// pass pushes it remotely. Transport failures never surface here — the
// entry just stays queued.
type CheckinService struct {
	store  LocalQueue
	remote Remote
	sync   *SyncManager
	loc    *time.Location
	now    func() time.Time
}

func NewCheckinService(store LocalQueue, r Remote, sync *SyncManager, loc *time.Location) *CheckinService {
	return &CheckinService{
		store:  store,
		remote: r,
		sync:   sync,
		loc:    loc,
		now:    time.Now,
	}
}

// Submit records ayatCount for the given date ("" means today in the
// user's timezone). Future dates are rejected; everything else succeeds
// locally and syncs when it can.
func (s *CheckinService) Submit(ctx context.Context, userID, date string, ayatCount int) (*model.Checkin, error) {
	now := s.now().In(s.loc)
	today := now.Format(model.DateLayout)
	if date == "" {
		date = today
	}
	if date > today {
		return nil, ErrFutureDate
	}

	payload := model.CheckinPayload{UserID: userID, Date: date, AyatCount: ayatCount}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	s.store.Enqueue(ctx, body)
	s.store.CacheCheckin(ctx, userID, date, ayatCount)

	logger.Logger().Info("check-in recorded",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("ayat_count", ayatCount))

	// Best effort: push immediately when the backend is reachable. A
	// failure leaves the entry queued for the next trigger.
	s.sync.SyncNow(ctx)

	return &model.Checkin{
		UserID:    userID,
		Date:      date,
		AyatCount: ayatCount,
		CreatedAt: now,
	}, nil
}

// Today answers "did I already check in today?" from the local cache,
// falling back to the remote row. Returns nil without error when there
// is no check-in yet or the backend is unreachable.
func (s *CheckinService) Today(ctx context.Context, userID string) (*model.Checkin, error) {
	today := s.now().In(s.loc).Format(model.DateLayout)

	for _, row := range s.store.RecentCheckins(ctx, userID, 1) {
		if row.Date == today {
			return &model.Checkin{
				UserID:    row.UserID,
				Date:      row.Date,
				AyatCount: row.AyatCount,
			}, nil
		}
	}

	c, err := s.remote.GetTodayCheckin(ctx, userID, today)
	if err != nil {
		logger.Logger().Warn("failed to fetch today's check-in",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return c, nil
}

func (s *CheckinService) Recent(ctx context.Context, userID string, days int) []model.RecentCheckin {
	if days <= 0 {
		days = defaultRecentDays
	}
	return s.store.RecentCheckins(ctx, userID, days)
}
