package tracelife

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

var _ traceRepo = &traceRepoMock{}

type traceRepoMock struct {
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Trace, error)
	CreateFunc         func(ctx context.Context, t *domain.Trace) (*domain.Trace, error)
	MarkProcessingFunc func(ctx context.Context, id uuid.UUID) (*domain.Trace, error)
	CompleteFunc       func(ctx context.Context, id uuid.UUID, output []byte, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error)
	FailFunc           func(ctx context.Context, id uuid.UUID, status domain.TraceStatus, traceErr *domain.TraceError) (*domain.Trace, error)
	UpdateMetricsFunc  func(ctx context.Context, id uuid.UUID, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error)
	SetFeedbackFunc    func(ctx context.Context, id uuid.UUID, fb domain.Feedback) (*domain.Trace, error)
	AnonymizeFunc      func(ctx context.Context, id uuid.UUID) (*domain.Trace, error)
	PurgeExpiredFunc   func(ctx context.Context, now time.Time, batchSize int) (int64, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Create []struct {
			Ctx   context.Context
			Trace *domain.Trace
		}
		MarkProcessing []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Complete []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Output []byte
			Usage  domain.TokenUsage
			Timing domain.Timing
		}
		Fail []struct {
			Ctx      context.Context
			ID       uuid.UUID
			Status   domain.TraceStatus
			TraceErr *domain.TraceError
		}
		UpdateMetrics []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Usage  domain.TokenUsage
			Timing domain.Timing
		}
		SetFeedback []struct {
			Ctx context.Context
			ID  uuid.UUID
			Fb  domain.Feedback
		}
		Anonymize []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		PurgeExpired []struct {
			Ctx       context.Context
			Now       time.Time
			BatchSize int
		}
	}
	lockGetByID        sync.RWMutex
	lockCreate         sync.RWMutex
	lockMarkProcessing sync.RWMutex
	lockComplete       sync.RWMutex
	lockFail           sync.RWMutex
	lockUpdateMetrics  sync.RWMutex
	lockSetFeedback    sync.RWMutex
	lockAnonymize      sync.RWMutex
	lockPurgeExpired   sync.RWMutex
}

func (mock *traceRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trace, error) {
	if mock.GetByIDFunc == nil {
		panic("traceRepoMock.GetByIDFunc: method is nil but traceRepo.GetByID was just called")
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

func (mock *traceRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *traceRepoMock) Create(ctx context.Context, t *domain.Trace) (*domain.Trace, error) {
	if mock.CreateFunc == nil {
		panic("traceRepoMock.CreateFunc: method is nil but traceRepo.Create was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Trace *domain.Trace
	}{Ctx: ctx, Trace: t}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, t)
}

func (mock *traceRepoMock) CreateCalls() []struct {
	Ctx   context.Context
	Trace *domain.Trace
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *traceRepoMock) MarkProcessing(ctx context.Context, id uuid.UUID) (*domain.Trace, error) {
	if mock.MarkProcessingFunc == nil {
		panic("traceRepoMock.MarkProcessingFunc: method is nil but traceRepo.MarkProcessing was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockMarkProcessing.Lock()
	mock.calls.MarkProcessing = append(mock.calls.MarkProcessing, callInfo)
	mock.lockMarkProcessing.Unlock()
	return mock.MarkProcessingFunc(ctx, id)
}

func (mock *traceRepoMock) MarkProcessingCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockMarkProcessing.RLock()
	calls := mock.calls.MarkProcessing
	mock.lockMarkProcessing.RUnlock()
	return calls
}

func (mock *traceRepoMock) Complete(ctx context.Context, id uuid.UUID, output []byte, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error) {
	if mock.CompleteFunc == nil {
		panic("traceRepoMock.CompleteFunc: method is nil but traceRepo.Complete was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Output []byte
		Usage  domain.TokenUsage
		Timing domain.Timing
	}{Ctx: ctx, ID: id, Output: output, Usage: usage, Timing: timing}
	mock.lockComplete.Lock()
	mock.calls.Complete = append(mock.calls.Complete, callInfo)
	mock.lockComplete.Unlock()
	return mock.CompleteFunc(ctx, id, output, usage, timing)
}

func (mock *traceRepoMock) CompleteCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Output []byte
	Usage  domain.TokenUsage
	Timing domain.Timing
} {
	mock.lockComplete.RLock()
	calls := mock.calls.Complete
	mock.lockComplete.RUnlock()
	return calls
}

func (mock *traceRepoMock) Fail(ctx context.Context, id uuid.UUID, status domain.TraceStatus, traceErr *domain.TraceError) (*domain.Trace, error) {
	if mock.FailFunc == nil {
		panic("traceRepoMock.FailFunc: method is nil but traceRepo.Fail was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ID       uuid.UUID
		Status   domain.TraceStatus
		TraceErr *domain.TraceError
	}{Ctx: ctx, ID: id, Status: status, TraceErr: traceErr}
	mock.lockFail.Lock()
	mock.calls.Fail = append(mock.calls.Fail, callInfo)
	mock.lockFail.Unlock()
	return mock.FailFunc(ctx, id, status, traceErr)
}

func (mock *traceRepoMock) FailCalls() []struct {
	Ctx      context.Context
	ID       uuid.UUID
	Status   domain.TraceStatus
	TraceErr *domain.TraceError
} {
	mock.lockFail.RLock()
	calls := mock.calls.Fail
	mock.lockFail.RUnlock()
	return calls
}

func (mock *traceRepoMock) UpdateMetrics(ctx context.Context, id uuid.UUID, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error) {
	if mock.UpdateMetricsFunc == nil {
		panic("traceRepoMock.UpdateMetricsFunc: method is nil but traceRepo.UpdateMetrics was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Usage  domain.TokenUsage
		Timing domain.Timing
	}{Ctx: ctx, ID: id, Usage: usage, Timing: timing}
	mock.lockUpdateMetrics.Lock()
	mock.calls.UpdateMetrics = append(mock.calls.UpdateMetrics, callInfo)
	mock.lockUpdateMetrics.Unlock()
	return mock.UpdateMetricsFunc(ctx, id, usage, timing)
}

func (mock *traceRepoMock) UpdateMetricsCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Usage  domain.TokenUsage
	Timing domain.Timing
} {
	mock.lockUpdateMetrics.RLock()
	calls := mock.calls.UpdateMetrics
	mock.lockUpdateMetrics.RUnlock()
	return calls
}

func (mock *traceRepoMock) SetFeedback(ctx context.Context, id uuid.UUID, fb domain.Feedback) (*domain.Trace, error) {
	if mock.SetFeedbackFunc == nil {
		panic("traceRepoMock.SetFeedbackFunc: method is nil but traceRepo.SetFeedback was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
		Fb  domain.Feedback
	}{Ctx: ctx, ID: id, Fb: fb}
	mock.lockSetFeedback.Lock()
	mock.calls.SetFeedback = append(mock.calls.SetFeedback, callInfo)
	mock.lockSetFeedback.Unlock()
	return mock.SetFeedbackFunc(ctx, id, fb)
}

func (mock *traceRepoMock) SetFeedbackCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
	Fb  domain.Feedback
} {
	mock.lockSetFeedback.RLock()
	calls := mock.calls.SetFeedback
	mock.lockSetFeedback.RUnlock()
	return calls
}

func (mock *traceRepoMock) Anonymize(ctx context.Context, id uuid.UUID) (*domain.Trace, error) {
	if mock.AnonymizeFunc == nil {
		panic("traceRepoMock.AnonymizeFunc: method is nil but traceRepo.Anonymize was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockAnonymize.Lock()
	mock.calls.Anonymize = append(mock.calls.Anonymize, callInfo)
	mock.lockAnonymize.Unlock()
	return mock.AnonymizeFunc(ctx, id)
}

func (mock *traceRepoMock) AnonymizeCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockAnonymize.RLock()
	calls := mock.calls.Anonymize
	mock.lockAnonymize.RUnlock()
	return calls
}

func (mock *traceRepoMock) PurgeExpired(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	if mock.PurgeExpiredFunc == nil {
		panic("traceRepoMock.PurgeExpiredFunc: method is nil but traceRepo.PurgeExpired was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		Now       time.Time
		BatchSize int
	}{Ctx: ctx, Now: now, BatchSize: batchSize}
	mock.lockPurgeExpired.Lock()
	mock.calls.PurgeExpired = append(mock.calls.PurgeExpired, callInfo)
	mock.lockPurgeExpired.Unlock()
	return mock.PurgeExpiredFunc(ctx, now, batchSize)
}

func (mock *traceRepoMock) PurgeExpiredCalls() []struct {
	Ctx       context.Context
	Now       time.Time
	BatchSize int
} {
	mock.lockPurgeExpired.RLock()
	calls := mock.calls.PurgeExpired
	mock.lockPurgeExpired.RUnlock()
	return calls
}
