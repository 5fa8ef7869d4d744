package quota

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

var _ userRepo = &userRepoMock{}

type userRepoMock struct {
	GetByIDFunc                  func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ConsumeAgentCreationFunc     func(ctx context.Context, id uuid.UUID, amount, limit int) (int, error)
	ConsumeAPICallFunc           func(ctx context.Context, id uuid.UUID, calls int, tokens int64) (int, error)
	IncrementTracesGeneratedFunc func(ctx context.Context, id uuid.UUID) error
	ResetMonthlyUsageFunc        func(ctx context.Context, id uuid.UUID) error
	ResetAllMonthlyUsageFunc     func(ctx context.Context) (int64, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ConsumeAgentCreation []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Amount int
			Limit  int
		}
		ConsumeAPICall []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Calls  int
			Tokens int64
		}
		IncrementTracesGenerated []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ResetMonthlyUsage []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ResetAllMonthlyUsage []struct {
			Ctx context.Context
		}
	}
	lockGetByID                  sync.RWMutex
	lockConsumeAgentCreation     sync.RWMutex
	lockConsumeAPICall           sync.RWMutex
	lockIncrementTracesGenerated sync.RWMutex
	lockResetMonthlyUsage        sync.RWMutex
	lockResetAllMonthlyUsage     sync.RWMutex
}

func (mock *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if mock.GetByIDFunc == nil {
		panic("userRepoMock.GetByIDFunc: method is nil but userRepo.GetByID was just called")
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

func (mock *userRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *userRepoMock) ConsumeAgentCreation(ctx context.Context, id uuid.UUID, amount, limit int) (int, error) {
	if mock.ConsumeAgentCreationFunc == nil {
		panic("userRepoMock.ConsumeAgentCreationFunc: method is nil but userRepo.ConsumeAgentCreation was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Amount int
		Limit  int
	}{Ctx: ctx, ID: id, Amount: amount, Limit: limit}
	mock.lockConsumeAgentCreation.Lock()
	mock.calls.ConsumeAgentCreation = append(mock.calls.ConsumeAgentCreation, callInfo)
	mock.lockConsumeAgentCreation.Unlock()
	return mock.ConsumeAgentCreationFunc(ctx, id, amount, limit)
}

func (mock *userRepoMock) ConsumeAgentCreationCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Amount int
	Limit  int
} {
	mock.lockConsumeAgentCreation.RLock()
	calls := mock.calls.ConsumeAgentCreation
	mock.lockConsumeAgentCreation.RUnlock()
	return calls
}

func (mock *userRepoMock) ConsumeAPICall(ctx context.Context, id uuid.UUID, calls int, tokens int64) (int, error) {
	if mock.ConsumeAPICallFunc == nil {
		panic("userRepoMock.ConsumeAPICallFunc: method is nil but userRepo.ConsumeAPICall was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Calls  int
		Tokens int64
	}{Ctx: ctx, ID: id, Calls: calls, Tokens: tokens}
	mock.lockConsumeAPICall.Lock()
	mock.calls.ConsumeAPICall = append(mock.calls.ConsumeAPICall, callInfo)
	mock.lockConsumeAPICall.Unlock()
	return mock.ConsumeAPICallFunc(ctx, id, calls, tokens)
}

func (mock *userRepoMock) ConsumeAPICallCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Calls  int
	Tokens int64
} {
	mock.lockConsumeAPICall.RLock()
	calls := mock.calls.ConsumeAPICall
	mock.lockConsumeAPICall.RUnlock()
	return calls
}

func (mock *userRepoMock) IncrementTracesGenerated(ctx context.Context, id uuid.UUID) error {
	if mock.IncrementTracesGeneratedFunc == nil {
		panic("userRepoMock.IncrementTracesGeneratedFunc: method is nil but userRepo.IncrementTracesGenerated was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockIncrementTracesGenerated.Lock()
	mock.calls.IncrementTracesGenerated = append(mock.calls.IncrementTracesGenerated, callInfo)
	mock.lockIncrementTracesGenerated.Unlock()
	return mock.IncrementTracesGeneratedFunc(ctx, id)
}

func (mock *userRepoMock) IncrementTracesGeneratedCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockIncrementTracesGenerated.RLock()
	calls := mock.calls.IncrementTracesGenerated
	mock.lockIncrementTracesGenerated.RUnlock()
	return calls
}

func (mock *userRepoMock) ResetMonthlyUsage(ctx context.Context, id uuid.UUID) error {
	if mock.ResetMonthlyUsageFunc == nil {
		panic("userRepoMock.ResetMonthlyUsageFunc: method is nil but userRepo.ResetMonthlyUsage was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockResetMonthlyUsage.Lock()
	mock.calls.ResetMonthlyUsage = append(mock.calls.ResetMonthlyUsage, callInfo)
	mock.lockResetMonthlyUsage.Unlock()
	return mock.ResetMonthlyUsageFunc(ctx, id)
}

func (mock *userRepoMock) ResetMonthlyUsageCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockResetMonthlyUsage.RLock()
	calls := mock.calls.ResetMonthlyUsage
	mock.lockResetMonthlyUsage.RUnlock()
	return calls
}

func (mock *userRepoMock) ResetAllMonthlyUsage(ctx context.Context) (int64, error) {
	if mock.ResetAllMonthlyUsageFunc == nil {
		panic("userRepoMock.ResetAllMonthlyUsageFunc: method is nil but userRepo.ResetAllMonthlyUsage was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockResetAllMonthlyUsage.Lock()
	mock.calls.ResetAllMonthlyUsage = append(mock.calls.ResetAllMonthlyUsage, callInfo)
	mock.lockResetAllMonthlyUsage.Unlock()
	return mock.ResetAllMonthlyUsageFunc(ctx)
}

func (mock *userRepoMock) ResetAllMonthlyUsageCalls() []struct {
	Ctx context.Context
} {
	mock.lockResetAllMonthlyUsage.RLock()
	calls := mock.calls.ResetAllMonthlyUsage
	mock.lockResetAllMonthlyUsage.RUnlock()
	return calls
}
