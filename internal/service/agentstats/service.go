// Package agentstats maintains the denormalized review and performance
// aggregates on agents. The stored rating is never mutated directly; it is
// always recomputed from the surviving review rows inside the same
// transaction that changed them.
package agentstats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

// agentRepo defines the agent repository interface needed by the stats service.
type agentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error)
	RecordInvocation(ctx context.Context, id uuid.UUID, latencyMs float64, success bool) (*domain.Agent, error)
	UpsertReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, agentID, userID uuid.UUID) (bool, error)
	RecomputeRating(ctx context.Context, agentID uuid.UUID) (*domain.Agent, error)
}

// txManager defines the transaction manager interface needed by the stats service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements agent review and performance aggregation.
type Service struct {
	log    *slog.Logger
	agents agentRepo
	tx     txManager
	now    func() time.Time
}

// NewService creates a new agentstats service instance.
func NewService(logger *slog.Logger, agents agentRepo, tx txManager) *Service {
	return &Service{
		log:    logger.With("service", "agentstats"),
		agents: agents,
		tx:     tx,
		now:    time.Now,
	}
}

// UpsertReview stores a user's review of an agent, replacing any earlier
// review by the same user, and recomputes the agent's rating from the
// resulting review set. Authors may not review their own agents.
func (s *Service) UpsertReview(ctx context.Context, agentID, reviewerID uuid.UUID, rating int, comment string) (*domain.Agent, error) {
	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}

	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("agentstats.UpsertReview get agent: %w", err)
	}
	if agent.AuthorID == reviewerID {
		return nil, fmt.Errorf("agentstats.UpsertReview self review: %w", domain.ErrForbidden)
	}

	review := &domain.Review{
		ID:        uuid.New(),
		AgentID:   agentID,
		UserID:    reviewerID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	}

	var updated *domain.Agent
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.agents.UpsertReview(txCtx, review); err != nil {
			return fmt.Errorf("upsert review: %w", err)
		}
		updated, err = s.agents.RecomputeRating(txCtx, agentID)
		if err != nil {
			return fmt.Errorf("recompute rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("agentstats.UpsertReview: %w", err)
	}

	s.log.InfoContext(ctx, "review upserted",
		slog.String("agent_id", agentID.String()),
		slog.String("user_id", reviewerID.String()),
		slog.Float64("rating", updated.Rating),
		slog.Int("review_count", updated.ReviewCount))

	return updated, nil
}

// RemoveReview deletes a user's review of an agent and recomputes the rating
// from the remaining rows. Removing the last review resets the rating to 0.
func (s *Service) RemoveReview(ctx context.Context, agentID, userID uuid.UUID) (*domain.Agent, error) {
	var updated *domain.Agent
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		deleted, err := s.agents.DeleteReview(txCtx, agentID, userID)
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if !deleted {
			return fmt.Errorf("review: %w", domain.ErrNotFound)
		}
		updated, err = s.agents.RecomputeRating(txCtx, agentID)
		if err != nil {
			return fmt.Errorf("recompute rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("agentstats.RemoveReview: %w", err)
	}

	s.log.InfoContext(ctx, "review removed",
		slog.String("agent_id", agentID.String()),
		slog.String("user_id", userID.String()))

	return updated, nil
}

// RecordInvocation folds one invocation sample into the agent's performance
// metrics using the two-sample merge, all within a single UPDATE.
func (s *Service) RecordInvocation(ctx context.Context, agentID uuid.UUID, latencyMs float64, success bool) (*domain.Agent, error) {
	if latencyMs < 0 {
		return nil, domain.NewValidationError("latencyMs", "must not be negative")
	}

	agent, err := s.agents.RecordInvocation(ctx, agentID, latencyMs, success)
	if err != nil {
		return nil, fmt.Errorf("agentstats.RecordInvocation: %w", err)
	}

	s.log.DebugContext(ctx, "invocation recorded",
		slog.String("agent_id", agentID.String()),
		slog.Bool("success", success),
		slog.Int64("total_calls", agent.Performance.TotalCalls))

	return agent, nil
}
