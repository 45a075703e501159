package service

import (
	"context"
	"errors"

	"github.com/fandyandika/miqra/internal/model"
)

var (
	ErrFutureDate   = errors.New("cannot record a check-in for a future date")
	ErrInvalidRange = errors.New("ayah range is invalid")
)

type Service struct {
	*CheckinService
	*StreakService
	*HasanatService
	*SyncManager
}

func NewService(checkins *CheckinService, streaks *StreakService, hasanat *HasanatService, sync *SyncManager) *Service {
	return &Service{
		CheckinService: checkins,
		StreakService:  streaks,
		HasanatService: hasanat,
		SyncManager:    sync,
	}
}

type CheckinServiceI interface {
	Submit(ctx context.Context, userID, date string, ayatCount int) (*model.Checkin, error)
	Today(ctx context.Context, userID string) (*model.Checkin, error)
	Recent(ctx context.Context, userID string, days int) []model.RecentCheckin
}

type StreakServiceI interface {
	Status(ctx context.Context, userID string) (*model.StreakStatus, error)
	Recompute(ctx context.Context, userID string) (*model.Streak, error)
}

type HasanatServiceI interface {
	PreviewRange(surah, ayahStart, ayahEnd int) (*model.HasanatPreview, error)
}

type SyncManagerI interface {
	SyncNow(ctx context.Context) SyncResult
	NotifyForeground(ctx context.Context) SyncResult
	NotifyNetworkUp(ctx context.Context) SyncResult
	Status(ctx context.Context) SyncStatus
}

// LocalQueue is the on-device queue + recent cache. Implementations fail
// soft: operations log and return zero values instead of erroring, since
// they back optimistic UI paths that must never crash.
type LocalQueue interface {
	Enqueue(ctx context.Context, payload []byte)
	PeekPending(ctx context.Context, limit int) []model.PendingCheckin
	PopPending(ctx context.Context, limit int) []model.PendingCheckin
	DeletePending(ctx context.Context, id int64)
	CountPending(ctx context.Context) int
	CacheCheckin(ctx context.Context, userID, date string, ayatCount int)
	RecentCheckins(ctx context.Context, userID string, days int) []model.RecentCheckin
	Close() error
}

// Remote is the backend system of record. Both upserts are idempotent;
// queue replay relies on that.
type Remote interface {
	UpsertCheckin(ctx context.Context, p model.CheckinPayload) (*model.Checkin, error)
	GetTodayCheckin(ctx context.Context, userID, date string) (*model.Checkin, error)
	ListCheckins(ctx context.Context, userID string) ([]model.Checkin, error)
	GetStreak(ctx context.Context, userID string) (*model.Streak, error)
	UpsertStreak(ctx context.Context, s *model.Streak) error
}
