package identity

import (
	"context"
	"sync"

	"github.com/agentmart/agentmart-backend/internal/auth"
)

var _ sessionVerifier = &sessionVerifierMock{}

type sessionVerifierMock struct {
	VerifySessionFunc func(ctx context.Context, sessionToken string) (*auth.ExternalIdentity, error)
	FetchProfileFunc  func(ctx context.Context, externalUserID string) (*auth.ExternalIdentity, error)

	calls struct {
		VerifySession []struct {
			Ctx          context.Context
			SessionToken string
		}
		FetchProfile []struct {
			Ctx            context.Context
			ExternalUserID string
		}
	}
	lockVerifySession sync.RWMutex
	lockFetchProfile  sync.RWMutex
}

func (mock *sessionVerifierMock) VerifySession(ctx context.Context, sessionToken string) (*auth.ExternalIdentity, error) {
	if mock.VerifySessionFunc == nil {
		panic("sessionVerifierMock.VerifySessionFunc: method is nil but sessionVerifier.VerifySession was just called")
	}
	callInfo := struct {
		Ctx          context.Context
		SessionToken string
	}{Ctx: ctx, SessionToken: sessionToken}
	mock.lockVerifySession.Lock()
	mock.calls.VerifySession = append(mock.calls.VerifySession, callInfo)
	mock.lockVerifySession.Unlock()
	return mock.VerifySessionFunc(ctx, sessionToken)
}

func (mock *sessionVerifierMock) VerifySessionCalls() []struct {
	Ctx          context.Context
	SessionToken string
} {
	mock.lockVerifySession.RLock()
	calls := mock.calls.VerifySession
	mock.lockVerifySession.RUnlock()
	return calls
}

func (mock *sessionVerifierMock) FetchProfile(ctx context.Context, externalUserID string) (*auth.ExternalIdentity, error) {
	if mock.FetchProfileFunc == nil {
		panic("sessionVerifierMock.FetchProfileFunc: method is nil but sessionVerifier.FetchProfile was just called")
	}
	callInfo := struct {
		Ctx            context.Context
		ExternalUserID string
	}{Ctx: ctx, ExternalUserID: externalUserID}
	mock.lockFetchProfile.Lock()
	mock.calls.FetchProfile = append(mock.calls.FetchProfile, callInfo)
	mock.lockFetchProfile.Unlock()
	return mock.FetchProfileFunc(ctx, externalUserID)
}

func (mock *sessionVerifierMock) FetchProfileCalls() []struct {
	Ctx            context.Context
	ExternalUserID string
} {
	mock.lockFetchProfile.RLock()
	calls := mock.calls.FetchProfile
	mock.lockFetchProfile.RUnlock()
	return calls
}
