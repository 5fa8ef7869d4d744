package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/auth"
	"github.com/agentmart/agentmart-backend/internal/domain"
)

// ReconcileOpts tweaks a reconciliation.
type ReconcileOpts struct {
	// ForceSync overwrites the stored profile fields (email, name, avatar)
	// with the provider's current values even for existing users.
	ForceSync bool
}

// Reconcile maps an identity-provider session onto exactly one local user,
// creating the user on first login. The session token is verified before any
// store access; an invalid or expired session yields ErrUnauthenticated.
//
// Concurrent first logins for the same external user converge on one record:
// creation is attempted optimistically and a unique violation means another
// request won the race, in which case the winner's record is returned.
func (s *Service) Reconcile(ctx context.Context, sessionToken string, opts ReconcileOpts) (*domain.User, error) {
	identity, err := s.idp.VerifySession(ctx, sessionToken)
	if err != nil {
		return nil, fmt.Errorf("identity.Reconcile verify session: %w", err)
	}

	user, err := s.users.GetByExternalID(ctx, identity.ExternalUserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("identity.Reconcile get user: %w", err)
	}

	if user != nil {
		if !user.IsActive {
			return nil, fmt.Errorf("identity.Reconcile account closed: %w", domain.ErrForbidden)
		}

		if opts.ForceSync {
			user, err = s.syncProfile(ctx, user)
			if err != nil {
				return nil, err
			}
		}

		touched, err := s.users.TouchLastLogin(ctx, user.ID, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("identity.Reconcile touch last login: %w", err)
		}
		if touched {
			s.log.InfoContext(ctx, "user logged in",
				slog.String("user_id", user.ID.String()))
		}

		return user, nil
	}

	return s.provision(ctx, identity)
}

// syncProfile overwrites the stored mutable profile fields from the
// provider's current profile.
func (s *Service) syncProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	profile, err := s.idp.FetchProfile(ctx, user.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("identity.Reconcile fetch profile: %w", err)
	}

	email := normalizeEmail(profile.Email)
	updated, err := s.users.UpdateProfile(ctx, user.ID, email, derefOrEmpty(profile.Name), profile.AvatarURL)
	if err != nil {
		return nil, fmt.Errorf("identity.Reconcile sync profile: %w", err)
	}

	s.log.InfoContext(ctx, "profile synced from provider",
		slog.String("user_id", user.ID.String()))

	return updated, nil
}

// provision creates the local record for a first login. The session claims
// alone are not trusted for profile data, so the full profile is fetched
// from the provider first; a fetch failure leaves no partial record.
func (s *Service) provision(ctx context.Context, identity *auth.ExternalIdentity) (*domain.User, error) {
	profile, err := s.idp.FetchProfile(ctx, identity.ExternalUserID)
	if err != nil {
		return nil, fmt.Errorf("identity.Reconcile fetch profile: %w", err)
	}

	now := s.now().UTC()
	newUser := domain.NewUser(
		identity.ExternalUserID,
		normalizeEmail(profile.Email),
		derefOrEmpty(profile.Name),
		profile.AvatarURL,
		now,
	)

	user, err := s.users.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the first-login race. The winner's row is the record.
			winner, retryErr := s.users.GetByExternalID(ctx, identity.ExternalUserID)
			if retryErr != nil {
				return nil, fmt.Errorf("identity.Reconcile retry after race: %w", retryErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("identity.Reconcile create user: %w", err)
	}

	if _, err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("identity.Reconcile touch last login: %w", err)
	}

	s.log.InfoContext(ctx, "user provisioned on first login",
		slog.String("user_id", user.ID.String()),
		slog.String("external_id", user.ExternalID))

	return user, nil
}

// Deactivate soft-closes an account. User rows are never hard-deleted.
// Repeated calls are no-ops.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("identity.Deactivate: %w", err)
	}

	s.log.InfoContext(ctx, "account deactivated",
		slog.String("user_id", userID.String()))

	return nil
}

// normalizeEmail lowercases and trims an address before it is stored or
// compared.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
