package mocks

import (
	"context"

	"github.com/fandyandika/miqra/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) UpsertCheckin(ctx context.Context, p model.CheckinPayload) (*model.Checkin, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkin), args.Error(1)
}

func (m *MockRemote) GetTodayCheckin(ctx context.Context, userID, date string) (*model.Checkin, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkin), args.Error(1)
}

func (m *MockRemote) ListCheckins(ctx context.Context, userID string) ([]model.Checkin, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Checkin), args.Error(1)
}

func (m *MockRemote) GetStreak(ctx context.Context, userID string) (*model.Streak, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Streak), args.Error(1)
}

func (m *MockRemote) UpsertStreak(ctx context.Context, s *model.Streak) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
