// Package trace implements the Trace repository using PostgreSQL.
//
// Terminal transitions are single conditional UPDATEs guarded by
// status IN ('pending','processing'), with completed_at assigned via
// COALESCE so it is written exactly once no matter how often a terminal
// operation is retried.
package trace

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

// Repo provides trace persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new trace repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const traceColumns = `id, user_id, agent_id, session_id, parent_trace_id, conversation_id,
input, output,
prompt_tokens, completion_tokens, total_tokens, estimated_cost,
queue_time_ms, processing_time_ms, total_time_ms, tokens_per_second,
status, error_code, error_message, error_retryable,
feedback_rating, feedback_comment, feedback_helpful,
retention_days, is_anonymized, started_at, completed_at, created_at, updated_at`

const getByIDSQL = `SELECT ` + traceColumns + ` FROM traces WHERE id = $1`

const createSQL = `
INSERT INTO traces (
    id, user_id, agent_id, session_id, parent_trace_id, conversation_id,
    input, output,
    prompt_tokens, completion_tokens, total_tokens, estimated_cost,
    queue_time_ms, processing_time_ms, total_time_ms, tokens_per_second,
    status, error_code, error_message, error_retryable,
    feedback_rating, feedback_comment, feedback_helpful,
    retention_days, is_anonymized, started_at, completed_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
          $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
RETURNING ` + traceColumns

const markProcessingSQL = `
UPDATE traces SET status = 'processing', updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + traceColumns

// completeSQL enters the success terminal state, writing the final output
// and derived metrics in the same statement.
const completeSQL = `
UPDATE traces
SET status = 'success',
    output = $2,
    prompt_tokens = $3, completion_tokens = $4, total_tokens = $5, estimated_cost = $6,
    queue_time_ms = $7, processing_time_ms = $8, total_time_ms = $9, tokens_per_second = $10,
    completed_at = COALESCE(completed_at, now()),
    updated_at = now()
WHERE id = $1 AND status IN ('pending', 'processing')
RETURNING ` + traceColumns

// failSQL enters one of the failure terminal states (error/timeout/cancelled).
const failSQL = `
UPDATE traces
SET status = $2,
    error_code = $3, error_message = $4, error_retryable = $5,
    completed_at = COALESCE(completed_at, now()),
    updated_at = now()
WHERE id = $1 AND status IN ('pending', 'processing')
RETURNING ` + traceColumns

const updateMetricsSQL = `
UPDATE traces
SET prompt_tokens = $2, completion_tokens = $3, total_tokens = $4, estimated_cost = $5,
    queue_time_ms = $6, processing_time_ms = $7, total_time_ms = $8, tokens_per_second = $9,
    updated_at = now()
WHERE id = $1
RETURNING ` + traceColumns

const setFeedbackSQL = `
UPDATE traces
SET feedback_rating = $2, feedback_comment = $3, feedback_helpful = $4, updated_at = now()
WHERE id = $1
RETURNING ` + traceColumns

const anonymizeSQL = `
UPDATE traces
SET input = NULL, output = NULL, is_anonymized = true, updated_at = now()
WHERE id = $1
RETURNING ` + traceColumns

// purgeExpiredSQL deletes a batch of traces past their per-row retention
// horizon. Batched so the janitor never holds a giant delete.
const purgeExpiredSQL = `
DELETE FROM traces
WHERE id IN (
    SELECT id FROM traces
    WHERE created_at + make_interval(days => retention_days) < $1
    ORDER BY created_at
    LIMIT $2
)`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a trace by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanTrace(q.QueryRow(ctx, getByIDSQL, id), id)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new trace and returns the persisted record.
// Derived fields are computed by the caller (domain.Trace.Derive).
func (r *Repo) Create(ctx context.Context, t *domain.Trace) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		errCode, errMessage pgtype.Text
		errRetryable        pgtype.Bool
	)
	if t.Error != nil {
		errCode = pgtype.Text{String: t.Error.Code, Valid: true}
		errMessage = pgtype.Text{String: t.Error.Message, Valid: true}
		errRetryable = pgtype.Bool{Bool: t.Error.Retryable, Valid: true}
	}

	var fbRating pgtype.Int4
	var fbComment pgtype.Text
	var fbHelpful pgtype.Bool
	if t.Feedback != nil {
		fbRating = pgtype.Int4{Int32: int32(t.Feedback.Rating), Valid: true}
		fbComment = pgtype.Text{String: t.Feedback.Comment, Valid: true}
		fbHelpful = pgtype.Bool{Bool: t.Feedback.Helpful, Valid: true}
	}

	row := q.QueryRow(ctx, createSQL,
		t.ID, t.UserID, t.AgentID, t.SessionID, t.ParentTraceID, ptrStringToPgText(t.ConversationID),
		t.Input, t.Output,
		t.TokenUsage.Prompt, t.TokenUsage.Completion, t.TokenUsage.Total, t.TokenUsage.EstimatedCost,
		t.Timing.QueueTime, t.Timing.ProcessingTime, t.Timing.TotalTime, t.Timing.TokensPerSecond,
		t.Status.String(), errCode, errMessage, errRetryable,
		fbRating, fbComment, fbHelpful,
		t.RetentionDays, t.IsAnonymized, t.StartedAt, ptrTimeToPgTimestamptz(t.CompletedAt),
		t.CreatedAt, t.UpdatedAt,
	)
	return scanTrace(row, t.ID)
}

// MarkProcessing moves a pending trace to processing.
// Returns domain.ErrNotFound when no pending row matched; the service layer
// disambiguates against the current status.
func (r *Repo) MarkProcessing(ctx context.Context, id uuid.UUID) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanTrace(q.QueryRow(ctx, markProcessingSQL, id), id)
}

// Complete enters the success terminal state with final output and metrics.
// Returns domain.ErrNotFound when no non-terminal row matched.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID, output []byte, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, completeSQL, id, output,
		usage.Prompt, usage.Completion, usage.Total, usage.EstimatedCost,
		timing.QueueTime, timing.ProcessingTime, timing.TotalTime, timing.TokensPerSecond,
	)
	return scanTrace(row, id)
}

// Fail enters a failure terminal state (error, timeout or cancelled).
// Returns domain.ErrNotFound when no non-terminal row matched.
func (r *Repo) Fail(ctx context.Context, id uuid.UUID, status domain.TraceStatus, traceErr *domain.TraceError) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var code, message pgtype.Text
	var retryable pgtype.Bool
	if traceErr != nil {
		code = pgtype.Text{String: traceErr.Code, Valid: true}
		message = pgtype.Text{String: traceErr.Message, Valid: true}
		retryable = pgtype.Bool{Bool: traceErr.Retryable, Valid: true}
	}

	return scanTrace(q.QueryRow(ctx, failSQL, id, status.String(), code, message, retryable), id)
}

// UpdateMetrics rewrites the token usage and timing fields. It runs
// independently of status; derived fields come precomputed from the caller.
func (r *Repo) UpdateMetrics(ctx context.Context, id uuid.UUID, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, updateMetricsSQL, id,
		usage.Prompt, usage.Completion, usage.Total, usage.EstimatedCost,
		timing.QueueTime, timing.ProcessingTime, timing.TotalTime, timing.TokensPerSecond,
	)
	return scanTrace(row, id)
}

// SetFeedback attaches the single user feedback record.
func (r *Repo) SetFeedback(ctx context.Context, id uuid.UUID, fb domain.Feedback) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanTrace(q.QueryRow(ctx, setFeedbackSQL, id, fb.Rating, fb.Comment, fb.Helpful), id)
}

// Anonymize blanks the payloads and flags the trace as anonymized.
func (r *Repo) Anonymize(ctx context.Context, id uuid.UUID) (*domain.Trace, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanTrace(q.QueryRow(ctx, anonymizeSQL, id), id)
}

// PurgeExpired deletes up to batchSize traces whose retention period elapsed
// before now. Returns the number of rows deleted.
func (r *Repo) PurgeExpired(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, purgeExpiredSQL, now, batchSize)
	if err != nil {
		return 0, mapError(err, "trace", uuid.Nil)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Scanning and error mapping
// ---------------------------------------------------------------------------

func scanTrace(row pgx.Row, id uuid.UUID) (*domain.Trace, error) {
	var (
		t              domain.Trace
		status         string
		parentTraceID  pgtype.UUID
		conversationID pgtype.Text
		errCode        pgtype.Text
		errMessage     pgtype.Text
		errRetryable   pgtype.Bool
		fbRating       pgtype.Int4
		fbComment      pgtype.Text
		fbHelpful      pgtype.Bool
		completedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID, &t.UserID, &t.AgentID, &t.SessionID, &parentTraceID, &conversationID,
		&t.Input, &t.Output,
		&t.TokenUsage.Prompt, &t.TokenUsage.Completion, &t.TokenUsage.Total, &t.TokenUsage.EstimatedCost,
		&t.Timing.QueueTime, &t.Timing.ProcessingTime, &t.Timing.TotalTime, &t.Timing.TokensPerSecond,
		&status, &errCode, &errMessage, &errRetryable,
		&fbRating, &fbComment, &fbHelpful,
		&t.RetentionDays, &t.IsAnonymized, &t.StartedAt, &completedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "trace", id)
	}

	t.Status = domain.TraceStatus(status)
	if parentTraceID.Valid {
		parent := uuid.UUID(parentTraceID.Bytes)
		t.ParentTraceID = &parent
	}
	if conversationID.Valid {
		t.ConversationID = &conversationID.String
	}
	if errCode.Valid || errMessage.Valid {
		t.Error = &domain.TraceError{
			Code:      errCode.String,
			Message:   errMessage.String,
			Retryable: errRetryable.Bool,
		}
	}
	if fbRating.Valid {
		t.Feedback = &domain.Feedback{
			Rating:  int(fbRating.Int32),
			Comment: fbComment.String,
			Helpful: fbHelpful.Bool,
		}
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	return &t, nil
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

func ptrStringToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func ptrTimeToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
