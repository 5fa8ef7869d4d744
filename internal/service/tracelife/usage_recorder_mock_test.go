package tracelife

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ usageRecorder = &usageRecorderMock{}

type usageRecorderMock struct {
	RecordTraceGeneratedFunc func(ctx context.Context, userID uuid.UUID) error

	calls struct {
		RecordTraceGenerated []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockRecordTraceGenerated sync.RWMutex
}

func (mock *usageRecorderMock) RecordTraceGenerated(ctx context.Context, userID uuid.UUID) error {
	if mock.RecordTraceGeneratedFunc == nil {
		panic("usageRecorderMock.RecordTraceGeneratedFunc: method is nil but usageRecorder.RecordTraceGenerated was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockRecordTraceGenerated.Lock()
	mock.calls.RecordTraceGenerated = append(mock.calls.RecordTraceGenerated, callInfo)
	mock.lockRecordTraceGenerated.Unlock()
	return mock.RecordTraceGeneratedFunc(ctx, userID)
}

func (mock *usageRecorderMock) RecordTraceGeneratedCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockRecordTraceGenerated.RLock()
	calls := mock.calls.RecordTraceGenerated
	mock.lockRecordTraceGenerated.RUnlock()
	return calls
}
