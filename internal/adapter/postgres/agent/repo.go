// Package agent implements the Agent repository using PostgreSQL.
//
// The denormalized rating/review_count pair is only ever written by
// RecomputeRating, which derives both from the surviving review rows; the
// review write and the recompute share one transaction at the service layer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/agentmart/agentmart-backend/internal/adapter/postgres"
	"github.com/agentmart/agentmart-backend/internal/domain"
)

// Repo provides agent and review persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new agent repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const agentColumns = `id, author_id, name, category, is_public, status,
rating, review_count,
avg_response_time_ms, uptime, success_rate, total_calls, perf_updated_at,
created_at, updated_at`

const getByIDSQL = `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`

const createSQL = `
INSERT INTO agents (
    id, author_id, name, category, is_public, status,
    rating, review_count,
    avg_response_time_ms, uptime, success_rate, total_calls, perf_updated_at,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + agentColumns

const updateStatusSQL = `
UPDATE agents SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + agentColumns

const upsertReviewSQL = `
INSERT INTO agent_reviews (id, agent_id, user_id, rating, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (agent_id, user_id)
DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = EXCLUDED.created_at`

const deleteReviewSQL = `DELETE FROM agent_reviews WHERE agent_id = $1 AND user_id = $2`

const listReviewsSQL = `
SELECT id, agent_id, user_id, rating, comment, created_at
FROM agent_reviews
WHERE agent_id = $1
ORDER BY created_at, id`

// recomputeRatingSQL rewrites the denormalized pair from the review rows.
// An empty review set resets the rating to 0.
const recomputeRatingSQL = `
UPDATE agents a
SET rating = COALESCE(
        (SELECT round(avg(r.rating)::numeric, 1) FROM agent_reviews r WHERE r.agent_id = a.id), 0),
    review_count = (SELECT count(*) FROM agent_reviews r WHERE r.agent_id = a.id),
    updated_at = now()
WHERE a.id = $1
RETURNING ` + agentColumns

// recordInvocationSQL folds one latency/outcome sample into the rolling
// metrics with the two-sample merge (old+new)/2. The first sample replaces
// the zero value instead of averaging with it. uptime is not touched here:
// an invocation carries no reachability signal distinct from success, so
// uptime stays at its seeded value until an external health probe owns it.
const recordInvocationSQL = `
UPDATE agents
SET avg_response_time_ms = CASE WHEN total_calls = 0 THEN $2
                                ELSE (avg_response_time_ms + $2) / 2 END,
    success_rate = CASE WHEN total_calls = 0 THEN $3
                        ELSE (success_rate + $3) / 2 END,
    total_calls = total_calls + 1,
    perf_updated_at = now(),
    updated_at = now()
WHERE id = $1
RETURNING ` + agentColumns

// ---------------------------------------------------------------------------
// Agent operations
// ---------------------------------------------------------------------------

// GetByID returns an agent by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanAgent(q.QueryRow(ctx, getByIDSQL, id), id)
}

// Create inserts a new agent and returns the persisted record.
func (r *Repo) Create(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, createSQL,
		a.ID, a.AuthorID, a.Name, a.Category, a.IsPublic, a.Status.String(),
		a.Rating, a.ReviewCount,
		a.Performance.AvgResponseTime, a.Performance.Uptime, a.Performance.SuccessRate,
		a.Performance.TotalCalls, ptrTimeToPgTimestamptz(a.Performance.LastUpdated),
		a.CreatedAt, a.UpdatedAt,
	)
	return scanAgent(row, a.ID)
}

// UpdateStatus moves the agent to a new publication status (soft retirement
// included; agents are never deleted).
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AgentStatus) (*domain.Agent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanAgent(q.QueryRow(ctx, updateStatusSQL, id, status.String()), id)
}

// RecordInvocation merges one performance sample into the rolling metrics.
func (r *Repo) RecordInvocation(ctx context.Context, id uuid.UUID, latencyMs float64, success bool) (*domain.Agent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	successSample := 0.0
	if success {
		successSample = 100.0
	}
	return scanAgent(q.QueryRow(ctx, recordInvocationSQL, id, latencyMs, successSample), id)
}

// ---------------------------------------------------------------------------
// Review operations
// ---------------------------------------------------------------------------

// UpsertReview inserts or replaces the reviewing user's review. The caller is
// responsible for running RecomputeRating in the same transaction.
func (r *Repo) UpsertReview(ctx context.Context, review *domain.Review) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, upsertReviewSQL,
		review.ID, review.AgentID, review.UserID, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return mapError(err, "agent_review", review.AgentID)
	}
	return nil
}

// DeleteReview removes the reviewing user's review if present.
// Returns true when a row was deleted.
func (r *Repo) DeleteReview(ctx context.Context, agentID, userID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteReviewSQL, agentID, userID)
	if err != nil {
		return false, mapError(err, "agent_review", agentID)
	}
	return tag.RowsAffected() > 0, nil
}

// ListReviews returns the agent's review set in insertion order.
func (r *Repo) ListReviews(ctx context.Context, agentID uuid.UUID) ([]domain.Review, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listReviewsSQL, agentID)
	if err != nil {
		return nil, mapError(err, "agent_review", agentID)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.AgentID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, mapError(err, "agent_review", agentID)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "agent_review", agentID)
	}

	return reviews, nil
}

// RecomputeRating rewrites rating and review_count from the review rows and
// returns the updated agent.
func (r *Repo) RecomputeRating(ctx context.Context, agentID uuid.UUID) (*domain.Agent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanAgent(q.QueryRow(ctx, recomputeRatingSQL, agentID), agentID)
}

// ---------------------------------------------------------------------------
// Scanning and error mapping
// ---------------------------------------------------------------------------

func scanAgent(row pgx.Row, id uuid.UUID) (*domain.Agent, error) {
	var (
		a             domain.Agent
		status        string
		perfUpdatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID, &a.AuthorID, &a.Name, &a.Category, &a.IsPublic, &status,
		&a.Rating, &a.ReviewCount,
		&a.Performance.AvgResponseTime, &a.Performance.Uptime, &a.Performance.SuccessRate,
		&a.Performance.TotalCalls, &perfUpdatedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "agent", id)
	}

	a.Status = domain.AgentStatus(status)
	a.Performance.LastUpdated = pgTimestamptzToPtr(perfUpdatedAt)

	return &a, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

func pgTimestamptzToPtr(t pgtype.Timestamptz) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}

func ptrTimeToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
