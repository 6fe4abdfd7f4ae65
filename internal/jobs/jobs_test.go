package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/service"
)

type MockComparer struct {
	mock.Mock
}

func (m *MockComparer) CompareAll(ctx context.Context, day time.Time, trigger string) ([]*service.Comparison, error) {
	args := m.Called(ctx, day, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.Comparison), args.Error(1)
}

type MockCleaner struct {
	mock.Mock
}

func (m *MockCleaner) CleanupOldEntries(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}

func TestRunner_CompareYesterday(t *testing.T) {
	now := time.Date(2026, 4, 2, 0, 30, 0, 0, time.UTC)
	comparer := new(MockComparer)
	r := NewRunner(comparer, new(MockCleaner), RunnerConfig{}, zerolog.Nop())
	r.now = func() time.Time { return now }

	comparer.On("CompareAll", mock.Anything, now.AddDate(0, 0, -1), "schedule").Return([]*service.Comparison{{
		LocationID: uuid.New(),
		Date:       "2026-04-01",
		Warnings:   []ticket.ReconciliationWarning{{Kind: ticket.WarningUnmatchedAuto, Message: "no ticket"}},
	}}, nil).Once()

	r.CompareYesterday()
	comparer.AssertExpectations(t)
}

func TestRunner_RecoversFromPanicAndErrors(t *testing.T) {
	comparer := new(MockComparer)
	r := NewRunner(comparer, new(MockCleaner), RunnerConfig{}, zerolog.Nop())

	comparer.On("CompareAll", mock.Anything, mock.Anything, "schedule").Return(nil, errors.New("db down")).Once()
	assert.NotPanics(t, r.CompareYesterday)

	r.runWithRecovery("boom", func(ctx context.Context) { panic("boom") })
}

func TestRunner_CleanupCaptures(t *testing.T) {
	cleaner := new(MockCleaner)
	r := NewRunner(new(MockComparer), cleaner, RunnerConfig{RetentionDays: 90}, zerolog.Nop())
	cleaner.On("CleanupOldEntries", mock.Anything, 90).Return(int64(3), nil).Once()

	r.CleanupCaptures()
	cleaner.AssertExpectations(t)

	disabled := NewRunner(new(MockComparer), cleaner, RunnerConfig{}, zerolog.Nop())
	disabled.CleanupCaptures()
	cleaner.AssertNumberOfCalls(t, "CleanupOldEntries", 1)
}

func TestNewScheduler(t *testing.T) {
	r := NewRunner(new(MockComparer), new(MockCleaner), RunnerConfig{}, zerolog.Nop())

	s, err := NewScheduler(r, Schedules{Compare: "0 30 0 * * *", Cleanup: "0 0 3 * * *"}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	_, err = NewScheduler(r, Schedules{Compare: "every day"}, nil, zerolog.Nop())
	assert.Error(t, err)
}
