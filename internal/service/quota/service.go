// Package quota enforces per-user consumption limits. Admission is decided by
// the store in a single conditional UPDATE per attempt, so concurrent
// requests can never over-admit past a limit.
package quota

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/config"
	"github.com/agentmart/agentmart-backend/internal/domain"
)

// userRepo defines the user repository interface needed by the quota service.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ConsumeAgentCreation(ctx context.Context, id uuid.UUID, amount, limit int) (int, error)
	ConsumeAPICall(ctx context.Context, id uuid.UUID, calls int, tokens int64) (int, error)
	IncrementTracesGenerated(ctx context.Context, id uuid.UUID) error
	ResetMonthlyUsage(ctx context.Context, id uuid.UUID) error
	ResetAllMonthlyUsage(ctx context.Context) (int64, error)
}

// Service implements quota accounting.
type Service struct {
	log   *slog.Logger
	users userRepo
	cfg   config.QuotaConfig
}

// NewService creates a new quota service instance.
func NewService(logger *slog.Logger, users userRepo, cfg config.QuotaConfig) *Service {
	return &Service{
		log:   logger.With("service", "quota"),
		users: users,
		cfg:   cfg,
	}
}

// TryConsume attempts to consume quota of the given kind. On success the
// counter has already been advanced; on exhaustion it returns a QuotaError
// and the counter is untouched. amount is the token cost for api_call
// consumption and ignored for agent_creation.
func (s *Service) TryConsume(ctx context.Context, userID uuid.UUID, kind domain.QuotaKind, amount int64) error {
	switch kind {
	case domain.QuotaAgentCreation:
		return s.consumeAgentCreation(ctx, userID)
	case domain.QuotaAPICall:
		return s.consumeAPICall(ctx, userID, amount)
	default:
		return domain.NewValidationError("kind", fmt.Sprintf("unknown quota kind %q", kind))
	}
}

func (s *Service) consumeAgentCreation(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("quota.TryConsume get user: %w", err)
	}

	limit := s.cfg.AgentLimitForTier(user.Subscription.Tier.String())
	created, err := s.users.ConsumeAgentCreation(ctx, userID, 1, limit)
	if err != nil {
		return fmt.Errorf("quota.TryConsume agent creation: %w", err)
	}

	s.log.InfoContext(ctx, "agent creation quota consumed",
		slog.String("user_id", userID.String()),
		slog.Int("agents_created", created),
		slog.Int("limit", limit))

	return nil
}

func (s *Service) consumeAPICall(ctx context.Context, userID uuid.UUID, tokens int64) error {
	calls, err := s.users.ConsumeAPICall(ctx, userID, 1, tokens)
	if err != nil {
		return fmt.Errorf("quota.TryConsume api call: %w", err)
	}

	s.log.DebugContext(ctx, "api call quota consumed",
		slog.String("user_id", userID.String()),
		slog.Int("calls_this_month", calls),
		slog.Int64("tokens", tokens))

	return nil
}

// RecordTraceGenerated bumps the unbounded traces_generated counter. It never
// rejects; trace generation is not quota-governed.
func (s *Service) RecordTraceGenerated(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.IncrementTracesGenerated(ctx, userID); err != nil {
		return fmt.Errorf("quota.RecordTraceGenerated: %w", err)
	}
	return nil
}

// ResetMonthly zeroes one user's monthly counters. A consume racing with the
// reset lands wholly before or wholly after it; row-level atomicity is the
// only coordination.
func (s *Service) ResetMonthly(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ResetMonthlyUsage(ctx, userID); err != nil {
		return fmt.Errorf("quota.ResetMonthly: %w", err)
	}

	s.log.InfoContext(ctx, "monthly usage reset",
		slog.String("user_id", userID.String()))

	return nil
}

// ResetAllMonthly zeroes the monthly counters for every user. Used by the
// scheduled reset job.
func (s *Service) ResetAllMonthly(ctx context.Context) (int64, error) {
	n, err := s.users.ResetAllMonthlyUsage(ctx)
	if err != nil {
		return 0, fmt.Errorf("quota.ResetAllMonthly: %w", err)
	}

	s.log.InfoContext(ctx, "monthly usage reset for all users",
		slog.Int64("users", n))

	return n, nil
}
