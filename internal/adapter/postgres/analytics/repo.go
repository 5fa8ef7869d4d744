// Package analytics implements read-only aggregation queries over the trace
// history. Filters are optional, so the WHERE clause is built dynamically
// with squirrel.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/agentmart/agentmart-backend/internal/adapter/postgres"
	"github.com/agentmart/agentmart-backend/internal/domain"
)

// Repo provides aggregation queries backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// applyFilter adds the optional trace constraints to a select builder.
func applyFilter(sb squirrel.SelectBuilder, f domain.TraceFilter) squirrel.SelectBuilder {
	if f.UserID != nil {
		sb = sb.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	if f.AgentID != nil {
		sb = sb.Where(squirrel.Eq{"agent_id": *f.AgentID})
	}
	if f.From != nil {
		sb = sb.Where(squirrel.GtOrEq{"started_at": *f.From})
	}
	if f.To != nil {
		sb = sb.Where(squirrel.LtOrEq{"started_at": *f.To})
	}
	return sb
}

// Aggregate groups the matching traces by (calendar day, status), newest day
// first. An empty history returns an empty slice, never an error.
func (r *Repo) Aggregate(ctx context.Context, f domain.TraceFilter) ([]domain.TraceBucket, error) {
	sb := builder.
		Select(
			"date_trunc('day', started_at)::date AS day",
			"status",
			"count(*)",
			"COALESCE(sum(total_tokens), 0)",
			"COALESCE(sum(estimated_cost), 0)::float8",
			"COALESCE(avg(processing_time_ms), 0)::float8",
		).
		From("traces").
		GroupBy("day", "status").
		OrderBy("day DESC", "status")
	sb = applyFilter(sb, f)

	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("analytics: build aggregate query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics: aggregate: %w", err)
	}
	defer rows.Close()

	buckets := []domain.TraceBucket{}
	for rows.Next() {
		var (
			b      domain.TraceBucket
			status string
		)
		if err := rows.Scan(&b.Date, &status, &b.Count, &b.TotalTokens, &b.TotalCost, &b.AvgProcessingTime); err != nil {
			return nil, fmt.Errorf("analytics: scan bucket: %w", err)
		}
		b.Status = domain.TraceStatus(status)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: aggregate rows: %w", err)
	}

	return buckets, nil
}

// UserStats computes a single rollup for one user, optionally bounded by a
// date range. A user with no traces yields an all-zero struct.
func (r *Repo) UserStats(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*domain.UserTraceStats, error) {
	sb := builder.
		Select(
			"count(*)",
			"count(*) FILTER (WHERE status = 'success')",
			"COALESCE(sum(total_tokens), 0)",
			"COALESCE(sum(estimated_cost), 0)::float8",
			"COALESCE(avg(processing_time_ms), 0)::float8",
			"count(DISTINCT agent_id)",
			"count(DISTINCT session_id)",
		).
		From("traces")
	sb = applyFilter(sb, domain.TraceFilter{UserID: &userID, From: from, To: to})

	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("analytics: build user stats query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.UserTraceStats
	err = q.QueryRow(ctx, sql, args...).Scan(
		&s.TotalTraces, &s.SuccessfulTraces,
		&s.TotalTokensUsed, &s.TotalCostSpent, &s.AvgProcessingTime,
		&s.UniqueAgentsCount, &s.UniqueSessionsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics: user stats: %w", err)
	}

	if s.TotalTraces > 0 {
		s.SuccessRate = float64(s.SuccessfulTraces) / float64(s.TotalTraces) * 100
	}

	return &s, nil
}
