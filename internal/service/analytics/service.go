// Package analytics exposes the read-side aggregations over trace history.
// All heavy lifting happens in SQL; this layer validates filters and shapes
// the results.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

// statsRepo defines the aggregation repository interface needed by the
// analytics service.
type statsRepo interface {
	Aggregate(ctx context.Context, f domain.TraceFilter) ([]domain.TraceBucket, error)
	UserStats(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*domain.UserTraceStats, error)
}

// Service implements trace analytics.
type Service struct {
	log   *slog.Logger
	stats statsRepo
}

// NewService creates a new analytics service instance.
func NewService(logger *slog.Logger, stats statsRepo) *Service {
	return &Service{
		log:   logger.With("service", "analytics"),
		stats: stats,
	}
}

// Aggregate returns per-day, per-status trace buckets matching the filter,
// newest day first. An empty history yields an empty slice.
func (s *Service) Aggregate(ctx context.Context, f domain.TraceFilter) ([]domain.TraceBucket, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}

	buckets, err := s.stats.Aggregate(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("analytics.Aggregate: %w", err)
	}
	return buckets, nil
}

// UserStats returns the single rollup for one user's history, optionally
// bounded by a date range. A user with no traces gets all zeros.
func (s *Service) UserStats(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*domain.UserTraceStats, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	stats, err := s.stats.UserStats(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.UserStats: %w", err)
	}
	return stats, nil
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return domain.NewValidationError("to", "must not precede from")
	}
	return nil
}
