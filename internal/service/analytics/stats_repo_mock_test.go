package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

var _ statsRepo = &statsRepoMock{}

type statsRepoMock struct {
	AggregateFunc func(ctx context.Context, f domain.TraceFilter) ([]domain.TraceBucket, error)
	UserStatsFunc func(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*domain.UserTraceStats, error)

	calls struct {
		Aggregate []struct {
			Ctx context.Context
			F   domain.TraceFilter
		}
		UserStats []struct {
			Ctx    context.Context
			UserID uuid.UUID
			From   *time.Time
			To     *time.Time
		}
	}
	lockAggregate sync.RWMutex
	lockUserStats sync.RWMutex
}

func (mock *statsRepoMock) Aggregate(ctx context.Context, f domain.TraceFilter) ([]domain.TraceBucket, error) {
	if mock.AggregateFunc == nil {
		panic("statsRepoMock.AggregateFunc: method is nil but statsRepo.Aggregate was just called")
	}
	callInfo := struct {
		Ctx context.Context
		F   domain.TraceFilter
	}{Ctx: ctx, F: f}
	mock.lockAggregate.Lock()
	mock.calls.Aggregate = append(mock.calls.Aggregate, callInfo)
	mock.lockAggregate.Unlock()
	return mock.AggregateFunc(ctx, f)
}

func (mock *statsRepoMock) AggregateCalls() []struct {
	Ctx context.Context
	F   domain.TraceFilter
} {
	mock.lockAggregate.RLock()
	calls := mock.calls.Aggregate
	mock.lockAggregate.RUnlock()
	return calls
}

func (mock *statsRepoMock) UserStats(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*domain.UserTraceStats, error) {
	if mock.UserStatsFunc == nil {
		panic("statsRepoMock.UserStatsFunc: method is nil but statsRepo.UserStats was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		From   *time.Time
		To     *time.Time
	}{Ctx: ctx, UserID: userID, From: from, To: to}
	mock.lockUserStats.Lock()
	mock.calls.UserStats = append(mock.calls.UserStats, callInfo)
	mock.lockUserStats.Unlock()
	return mock.UserStatsFunc(ctx, userID, from, to)
}

func (mock *statsRepoMock) UserStatsCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	From   *time.Time
	To     *time.Time
} {
	mock.lockUserStats.RLock()
	calls := mock.calls.UserStats
	mock.lockUserStats.RUnlock()
	return calls
}
