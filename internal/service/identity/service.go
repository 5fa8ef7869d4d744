// Package identity reconciles externally authenticated sessions with the
// locally owned user records. The external identity provider is the source of
// truth for who the caller is; this service owns the find-or-create logic and
// the login bookkeeping.
package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/auth"
	"github.com/agentmart/agentmart-backend/internal/domain"
)

// userRepo defines the user repository interface needed by the identity service.
type userRepo interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, email, name string, avatarURL *string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// sessionVerifier defines the identity provider interface needed by the
// identity service.
type sessionVerifier interface {
	VerifySession(ctx context.Context, sessionToken string) (*auth.ExternalIdentity, error)
	FetchProfile(ctx context.Context, externalUserID string) (*auth.ExternalIdentity, error)
}

// Service implements identity reconciliation.
type Service struct {
	log   *slog.Logger
	users userRepo
	idp   sessionVerifier
	now   func() time.Time
}

// NewService creates a new identity service instance.
func NewService(logger *slog.Logger, users userRepo, idp sessionVerifier) *Service {
	return &Service{
		log:   logger.With("service", "identity"),
		users: users,
		idp:   idp,
		now:   time.Now,
	}
}

// derefOrEmpty returns the dereferenced value or empty string if nil.
func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
