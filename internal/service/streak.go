package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/pkg/logger"

	"go.uber.org/zap"
)

// Tree stage thresholds by current streak days:
//
//	sprout: 0–2, sapling: 3–9, young: 10–29, mature: 30–99, ancient: >=100
//
// Lower bounds are inclusive, so a streak sitting exactly on a boundary
// takes the higher stage.
func StageForStreak(days int) model.TreeStage {
	switch {
	case days >= 100:
		return model.StageAncient
	case days >= 30:
		return model.StageMature
	case days >= 10:
		return model.StageYoung
	case days >= 3:
		return model.StageSapling
	default:
		return model.StageSprout
	}
}

// BrokeYesterday reports whether the user missed yesterday: the whole
// calendar-day gap between today and the last completed date, both in
// the given timezone, is 2 or more. No last date means nothing to break.
func BrokeYesterday(lastCompletedDate string, loc *time.Location) bool {
	return brokeYesterdayAt(lastCompletedDate, loc, time.Now())
}

func brokeYesterdayAt(lastCompletedDate string, loc *time.Location, now time.Time) bool {
	if lastCompletedDate == "" {
		return false
	}
	last, err := time.ParseInLocation(model.DateLayout, lastCompletedDate, loc)
	if err != nil {
		logger.Logger().Warn("unparseable last completed date",
			zap.String("date", lastCompletedDate), zap.Error(err))
		return false
	}
	return calendarDaysBetween(last, now.In(loc)) >= 2
}

// calendarDaysBetween counts whole calendar days from a to b. Both are
// collapsed to UTC midnights first so DST transitions in the user's
// timezone cannot skew the division.
func calendarDaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

func VariantForBreak(broke bool) model.TreeVariant {
	if broke {
		return model.VariantWilting
	}
	return model.VariantHealthy
}

func TreeVisualFor(streakDays int, brokeYesterday bool) model.TreeVisual {
	return model.TreeVisual{
		Stage:   StageForStreak(streakDays),
		Variant: VariantForBreak(brokeYesterday),
	}
}

// TreeLabel is the screen-reader description of the tree.
func TreeLabel(stage model.TreeStage, variant model.TreeVariant, days int) string {
	var stageLabel string
	switch stage {
	case model.StageSprout:
		stageLabel = "Tunas kecil"
	case model.StageSapling:
		stageLabel = "Pohon muda"
	case model.StageYoung:
		stageLabel = "Pohon remaja"
	case model.StageMature:
		stageLabel = "Pohon dewasa"
	default:
		stageLabel = "Pohon kuno yang legendaris dengan mahkota emas"
	}

	variantLabel := fmt.Sprintf("Sehat. Streak %d hari.", days)
	if variant == model.VariantWilting {
		variantLabel = "Memerlukan perhatian. Bacalah hari ini."
	}

	return fmt.Sprintf("Pohon Qur'an kamu: %s. %s", stageLabel, variantLabel)
}

type StreakService struct {
	remote Remote
	loc    *time.Location
	now    func() time.Time
}

func NewStreakService(remote Remote, loc *time.Location) *StreakService {
	return &StreakService{
		remote: remote,
		loc:    loc,
		now:    time.Now,
	}
}

// Status returns the user's streak together with its tree visual.
func (s *StreakService) Status(ctx context.Context, userID string) (*model.StreakStatus, error) {
	streak, err := s.remote.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	lastDate := ""
	if streak.LastDate != nil {
		lastDate = *streak.LastDate
	}
	broke := brokeYesterdayAt(lastDate, s.loc, s.now())
	visual := TreeVisualFor(streak.Current, broke)

	return &model.StreakStatus{
		Streak:         *streak,
		Tree:           visual,
		BrokeYesterday: broke,
		Label:          TreeLabel(visual.Stage, visual.Variant, streak.Current),
	}, nil
}

// Recompute rebuilds the streak from the user's complete check-in
// history and upserts the result. Always the full walk — incremental
// patching drifts. Empty history writes a zero streak with no last date.
func (s *StreakService) Recompute(ctx context.Context, userID string) (*model.Streak, error) {
	checkins, err := s.remote.ListCheckins(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	streak := &model.Streak{UserID: userID}

	if len(checkins) > 0 {
		sort.Slice(checkins, func(i, j int) bool {
			return checkins[i].Date > checkins[j].Date
		})

		current := 1
		cursor, err := time.ParseInLocation(model.DateLayout, checkins[0].Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("bad check-in date %q: %w", checkins[0].Date, err)
		}

		for _, c := range checkins[1:] {
			day, err := time.ParseInLocation(model.DateLayout, c.Date, s.loc)
			if err != nil {
				logger.Logger().Warn("skipping check-in with bad date",
					zap.String("date", c.Date), zap.Error(err))
				continue
			}
			gap := calendarDaysBetween(day, cursor)
			if gap == 0 {
				continue
			}
			if gap != 1 {
				break
			}
			current++
			cursor = day
		}

		last := checkins[0].Date
		streak.Current = current
		streak.LastDate = &last
	}

	prev, err := s.remote.GetStreak(ctx, userID)
	if err != nil {
		logger.Logger().Warn("failed to read previous streak, longest may regress",
			zap.String("user_id", userID), zap.Error(err))
	} else if prev.Longest > streak.Current {
		streak.Longest = prev.Longest
	}
	if streak.Longest < streak.Current {
		streak.Longest = streak.Current
	}

	if err := s.remote.UpsertStreak(ctx, streak); err != nil {
		return nil, fmt.Errorf("failed to upsert streak: %w", err)
	}

	logger.Logger().Info("streak recomputed",
		zap.String("user_id", userID),
		zap.Int("current", streak.Current),
		zap.Int("longest", streak.Longest))
	return streak, nil
}
