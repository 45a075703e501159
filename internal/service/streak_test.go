package service

import (
	"context"
	"testing"
	"time"

	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStageForStreak(t *testing.T) {
	tests := []struct {
		days     int
		expected model.TreeStage
	}{
		{0, model.StageSprout},
		{1, model.StageSprout},
		{2, model.StageSprout},
		{3, model.StageSapling},
		{9, model.StageSapling},
		{10, model.StageYoung},
		{29, model.StageYoung},
		{30, model.StageMature},
		{99, model.StageMature},
		{100, model.StageAncient},
		{365, model.StageAncient},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StageForStreak(tt.days), "days=%d", tt.days)
	}
}

func TestStageForStreak_Monotonic(t *testing.T) {
	rank := map[model.TreeStage]int{
		model.StageSprout:  0,
		model.StageSapling: 1,
		model.StageYoung:   2,
		model.StageMature:  3,
		model.StageAncient: 4,
	}

	prev := 0
	for d := 0; d <= 150; d++ {
		r := rank[StageForStreak(d)]
		assert.GreaterOrEqual(t, r, prev, "stage rank regressed at %d days", d)
		prev = r
	}
}

func TestBrokeYesterday(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	assert.NoError(t, err)

	now := time.Date(2025, time.March, 10, 9, 30, 0, 0, jakarta)

	tests := []struct {
		name     string
		lastDate string
		expected bool
	}{
		{"no last date", "", false},
		{"checked in today", "2025-03-10", false},
		{"checked in yesterday", "2025-03-09", false},
		{"missed yesterday", "2025-03-08", true},
		{"missed a week", "2025-03-03", true},
		{"unparseable date", "not-a-date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, brokeYesterdayAt(tt.lastDate, jakarta, now))
		})
	}
}

func TestBrokeYesterday_LateNight(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	assert.NoError(t, err)

	// 23:59 local: yesterday's check-in still counts as a gap of 1.
	now := time.Date(2025, time.March, 10, 23, 59, 0, 0, jakarta)
	assert.False(t, brokeYesterdayAt("2025-03-09", jakarta, now))
	assert.True(t, brokeYesterdayAt("2025-03-08", jakarta, now))
}

func TestTreeVisualFor(t *testing.T) {
	visual := TreeVisualFor(0, false)
	assert.Equal(t, model.StageSprout, visual.Stage)
	assert.Equal(t, model.VariantHealthy, visual.Variant)

	visual = TreeVisualFor(45, true)
	assert.Equal(t, model.StageMature, visual.Stage)
	assert.Equal(t, model.VariantWilting, visual.Variant)
}

func TestStreakService_Status(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	assert.NoError(t, err)

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, jakarta)

	tests := []struct {
		name            string
		streak          *model.Streak
		expectedStage   model.TreeStage
		expectedVariant model.TreeVariant
		expectedBroke   bool
	}{
		{
			name:            "fresh user, no history",
			streak:          &model.Streak{UserID: "u1"},
			expectedStage:   model.StageSprout,
			expectedVariant: model.VariantHealthy,
			expectedBroke:   false,
		},
		{
			name: "active streak",
			streak: &model.Streak{
				UserID: "u1", Current: 12, Longest: 20,
				LastDate: strPtr("2025-03-10"),
			},
			expectedStage:   model.StageYoung,
			expectedVariant: model.VariantHealthy,
			expectedBroke:   false,
		},
		{
			name: "missed yesterday",
			streak: &model.Streak{
				UserID: "u1", Current: 5, Longest: 5,
				LastDate: strPtr("2025-03-08"),
			},
			expectedStage:   model.StageSapling,
			expectedVariant: model.VariantWilting,
			expectedBroke:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRemote := &mocks.MockRemote{}
			mockRemote.On("GetStreak", mock.Anything, "u1").Return(tt.streak, nil)

			s := NewStreakService(mockRemote, jakarta)
			s.now = func() time.Time { return now }

			status, err := s.Status(context.Background(), "u1")
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStage, status.Tree.Stage)
			assert.Equal(t, tt.expectedVariant, status.Tree.Variant)
			assert.Equal(t, tt.expectedBroke, status.BrokeYesterday)
			assert.NotEmpty(t, status.Label)
			mockRemote.AssertExpectations(t)
		})
	}
}

func TestStreakService_Recompute(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	assert.NoError(t, err)

	tests := []struct {
		name            string
		checkins        []model.Checkin
		storedLongest   int
		expectedCurrent int
		expectedLongest int
		expectedLast    *string
	}{
		{
			name:            "empty history yields zero streak",
			checkins:        nil,
			expectedCurrent: 0,
			expectedLongest: 0,
			expectedLast:    nil,
		},
		{
			name: "single check-in",
			checkins: []model.Checkin{
				{UserID: "u1", Date: "2025-03-10"},
			},
			expectedCurrent: 1,
			expectedLongest: 1,
			expectedLast:    strPtr("2025-03-10"),
		},
		{
			name: "three consecutive days",
			checkins: []model.Checkin{
				{UserID: "u1", Date: "2025-03-10"},
				{UserID: "u1", Date: "2025-03-09"},
				{UserID: "u1", Date: "2025-03-08"},
			},
			expectedCurrent: 3,
			expectedLongest: 3,
			expectedLast:    strPtr("2025-03-10"),
		},
		{
			name: "gap stops the walk",
			checkins: []model.Checkin{
				{UserID: "u1", Date: "2025-03-10"},
				{UserID: "u1", Date: "2025-03-09"},
				{UserID: "u1", Date: "2025-03-06"},
				{UserID: "u1", Date: "2025-03-05"},
			},
			expectedCurrent: 2,
			expectedLongest: 2,
			expectedLast:    strPtr("2025-03-10"),
		},
		{
			name: "stored longest is preserved",
			checkins: []model.Checkin{
				{UserID: "u1", Date: "2025-03-10"},
			},
			storedLongest:   14,
			expectedCurrent: 1,
			expectedLongest: 14,
			expectedLast:    strPtr("2025-03-10"),
		},
		{
			name: "unsorted history is sorted before the walk",
			checkins: []model.Checkin{
				{UserID: "u1", Date: "2025-03-08"},
				{UserID: "u1", Date: "2025-03-10"},
				{UserID: "u1", Date: "2025-03-09"},
			},
			expectedCurrent: 3,
			expectedLongest: 3,
			expectedLast:    strPtr("2025-03-10"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRemote := &mocks.MockRemote{}
			mockRemote.On("ListCheckins", mock.Anything, "u1").Return(tt.checkins, nil)
			mockRemote.On("GetStreak", mock.Anything, "u1").
				Return(&model.Streak{UserID: "u1", Longest: tt.storedLongest}, nil)
			mockRemote.On("UpsertStreak", mock.Anything, mock.MatchedBy(func(s *model.Streak) bool {
				if s.Current != tt.expectedCurrent || s.Longest != tt.expectedLongest {
					return false
				}
				if tt.expectedLast == nil {
					return s.LastDate == nil
				}
				return s.LastDate != nil && *s.LastDate == *tt.expectedLast
			})).Return(nil)

			s := NewStreakService(mockRemote, jakarta)

			streak, err := s.Recompute(context.Background(), "u1")
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCurrent, streak.Current)
			assert.Equal(t, tt.expectedLongest, streak.Longest)
			mockRemote.AssertExpectations(t)
		})
	}
}

func strPtr(s string) *string { return &s }
