package agentstats

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

var _ agentRepo = &agentRepoMock{}

type agentRepoMock struct {
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Agent, error)
	RecordInvocationFunc func(ctx context.Context, id uuid.UUID, latencyMs float64, success bool) (*domain.Agent, error)
	UpsertReviewFunc     func(ctx context.Context, review *domain.Review) error
	DeleteReviewFunc     func(ctx context.Context, agentID, userID uuid.UUID) (bool, error)
	RecomputeRatingFunc  func(ctx context.Context, agentID uuid.UUID) (*domain.Agent, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		RecordInvocation []struct {
			Ctx       context.Context
			ID        uuid.UUID
			LatencyMs float64
			Success   bool
		}
		UpsertReview []struct {
			Ctx    context.Context
			Review *domain.Review
		}
		DeleteReview []struct {
			Ctx     context.Context
			AgentID uuid.UUID
			UserID  uuid.UUID
		}
		RecomputeRating []struct {
			Ctx     context.Context
			AgentID uuid.UUID
		}
	}
	lockGetByID          sync.RWMutex
	lockRecordInvocation sync.RWMutex
	lockUpsertReview     sync.RWMutex
	lockDeleteReview     sync.RWMutex
	lockRecomputeRating  sync.RWMutex
}

func (mock *agentRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	if mock.GetByIDFunc == nil {
		panic("agentRepoMock.GetByIDFunc: method is nil but agentRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *agentRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *agentRepoMock) RecordInvocation(ctx context.Context, id uuid.UUID, latencyMs float64, success bool) (*domain.Agent, error) {
	if mock.RecordInvocationFunc == nil {
		panic("agentRepoMock.RecordInvocationFunc: method is nil but agentRepo.RecordInvocation was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		ID        uuid.UUID
		LatencyMs float64
		Success   bool
	}{Ctx: ctx, ID: id, LatencyMs: latencyMs, Success: success}
	mock.lockRecordInvocation.Lock()
	mock.calls.RecordInvocation = append(mock.calls.RecordInvocation, callInfo)
	mock.lockRecordInvocation.Unlock()
	return mock.RecordInvocationFunc(ctx, id, latencyMs, success)
}

func (mock *agentRepoMock) RecordInvocationCalls() []struct {
	Ctx       context.Context
	ID        uuid.UUID
	LatencyMs float64
	Success   bool
} {
	mock.lockRecordInvocation.RLock()
	calls := mock.calls.RecordInvocation
	mock.lockRecordInvocation.RUnlock()
	return calls
}

func (mock *agentRepoMock) UpsertReview(ctx context.Context, review *domain.Review) error {
	if mock.UpsertReviewFunc == nil {
		panic("agentRepoMock.UpsertReviewFunc: method is nil but agentRepo.UpsertReview was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Review *domain.Review
	}{Ctx: ctx, Review: review}
	mock.lockUpsertReview.Lock()
	mock.calls.UpsertReview = append(mock.calls.UpsertReview, callInfo)
	mock.lockUpsertReview.Unlock()
	return mock.UpsertReviewFunc(ctx, review)
}

func (mock *agentRepoMock) UpsertReviewCalls() []struct {
	Ctx    context.Context
	Review *domain.Review
} {
	mock.lockUpsertReview.RLock()
	calls := mock.calls.UpsertReview
	mock.lockUpsertReview.RUnlock()
	return calls
}

func (mock *agentRepoMock) DeleteReview(ctx context.Context, agentID, userID uuid.UUID) (bool, error) {
	if mock.DeleteReviewFunc == nil {
		panic("agentRepoMock.DeleteReviewFunc: method is nil but agentRepo.DeleteReview was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		AgentID uuid.UUID
		UserID  uuid.UUID
	}{Ctx: ctx, AgentID: agentID, UserID: userID}
	mock.lockDeleteReview.Lock()
	mock.calls.DeleteReview = append(mock.calls.DeleteReview, callInfo)
	mock.lockDeleteReview.Unlock()
	return mock.DeleteReviewFunc(ctx, agentID, userID)
}

func (mock *agentRepoMock) DeleteReviewCalls() []struct {
	Ctx     context.Context
	AgentID uuid.UUID
	UserID  uuid.UUID
} {
	mock.lockDeleteReview.RLock()
	calls := mock.calls.DeleteReview
	mock.lockDeleteReview.RUnlock()
	return calls
}

func (mock *agentRepoMock) RecomputeRating(ctx context.Context, agentID uuid.UUID) (*domain.Agent, error) {
	if mock.RecomputeRatingFunc == nil {
		panic("agentRepoMock.RecomputeRatingFunc: method is nil but agentRepo.RecomputeRating was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		AgentID uuid.UUID
	}{Ctx: ctx, AgentID: agentID}
	mock.lockRecomputeRating.Lock()
	mock.calls.RecomputeRating = append(mock.calls.RecomputeRating, callInfo)
	mock.lockRecomputeRating.Unlock()
	return mock.RecomputeRatingFunc(ctx, agentID)
}

func (mock *agentRepoMock) RecomputeRatingCalls() []struct {
	Ctx     context.Context
	AgentID uuid.UUID
} {
	mock.lockRecomputeRating.RLock()
	calls := mock.calls.RecomputeRating
	mock.lockRecomputeRating.RUnlock()
	return calls
}
