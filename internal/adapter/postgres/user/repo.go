// Package user implements the User repository using PostgreSQL.
//
// All counter mutations are single conditional UPDATE statements so that the
// check and the increment are one atomic operation; no caller ever performs a
// read-decide-write sequence against a usage counter.
package user

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

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const userColumns = `id, external_id, email, name, avatar_url, role,
subscription_tier, subscription_status,
agents_created, traces_generated, api_calls_this_month, last_api_call,
total_tokens_used, monthly_token_limit,
is_active, last_login_at, created_at, updated_at`

const getByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

const getByExternalIDSQL = `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

const getByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

const createSQL = `
INSERT INTO users (
    id, external_id, email, name, avatar_url, role,
    subscription_tier, subscription_status,
    agents_created, traces_generated, api_calls_this_month, last_api_call,
    total_tokens_used, monthly_token_limit,
    is_active, last_login_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING ` + userColumns

const updateProfileSQL = `
UPDATE users
SET email = $2, name = $3, avatar_url = $4, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

// touchLastLoginSQL writes last_login_at at most once per UTC calendar day,
// so a busy user does not cost one UPDATE per request.
const touchLastLoginSQL = `
UPDATE users
SET last_login_at = $2, updated_at = now()
WHERE id = $1
  AND (last_login_at IS NULL OR last_login_at < date_trunc('day', $2::timestamptz))`

const consumeAgentCreationSQL = `
UPDATE users
SET agents_created = agents_created + $2, updated_at = now()
WHERE id = $1 AND ($3 < 0 OR agents_created + $2 <= $3)
RETURNING agents_created`

const consumeAPICallSQL = `
UPDATE users
SET api_calls_this_month = api_calls_this_month + $2,
    total_tokens_used = total_tokens_used + $3,
    last_api_call = now(),
    updated_at = now()
WHERE id = $1 AND api_calls_this_month < monthly_token_limit
RETURNING api_calls_this_month`

const incrementTracesGeneratedSQL = `
UPDATE users
SET traces_generated = traces_generated + 1, updated_at = now()
WHERE id = $1`

const resetMonthlyUsageSQL = `
UPDATE users
SET api_calls_this_month = 0, total_tokens_used = 0, updated_at = now()
WHERE id = $1`

const resetAllMonthlyUsageSQL = `
UPDATE users
SET api_calls_this_month = 0, total_tokens_used = 0, updated_at = now()
WHERE api_calls_this_month > 0 OR total_tokens_used > 0`

const deactivateSQL = `
UPDATE users
SET is_active = false, updated_at = now()
WHERE id = $1 AND is_active`

const monthlyLimitSQL = `SELECT monthly_token_limit FROM users WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return r.scanOne(q.QueryRow(ctx, getByIDSQL, id), "user", id.String())
}

// GetByExternalID returns a user by the identity provider's subject id.
func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return r.scanOne(q.QueryRow(ctx, getByExternalIDSQL, externalID), "user", externalID)
}

// GetByEmail returns a user by email address.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return r.scanOne(q.QueryRow(ctx, getByEmailSQL, email), "user", email)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new user and returns the persisted record.
// A concurrent insert of the same external_id or email surfaces as
// domain.ErrAlreadyExists; the reconciler re-reads on that signal.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, createSQL,
		u.ID, u.ExternalID, u.Email, u.Name, ptrStringToPgText(u.AvatarURL), u.Role.String(),
		u.Subscription.Tier.String(), u.Subscription.Status.String(),
		u.Usage.AgentsCreated, u.Usage.TracesGenerated, u.Usage.APICallsThisMonth,
		ptrTimeToPgTimestamptz(u.Usage.LastAPICall),
		u.Usage.TotalTokensUsed, u.Usage.MonthlyTokenLimit,
		u.IsActive, ptrTimeToPgTimestamptz(u.LastLoginAt), u.CreatedAt, u.UpdatedAt,
	)
	return r.scanOne(row, "user", u.ExternalID)
}

// UpdateProfile overwrites the mutable profile fields (force sync).
func (r *Repo) UpdateProfile(ctx context.Context, id uuid.UUID, email, name string, avatarURL *string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, updateProfileSQL, id, email, name, ptrStringToPgText(avatarURL))
	return r.scanOne(row, "user", id.String())
}

// TouchLastLogin records a login at most once per UTC calendar day.
// Returns true when the timestamp was written.
func (r *Repo) TouchLastLogin(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, touchLastLoginSQL, id, now.UTC())
	if err != nil {
		return false, mapError(err, "user", id.String())
	}
	return tag.RowsAffected() > 0, nil
}

// Deactivate soft-closes the account. Already-inactive users are a no-op.
func (r *Repo) Deactivate(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, deactivateSQL, id); err != nil {
		return mapError(err, "user", id.String())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Quota counters
// ---------------------------------------------------------------------------

// ConsumeAgentCreation atomically increments agents_created by amount if the
// result stays within limit (limit < 0 means unlimited). On a full counter it
// returns a QuotaError; on a missing user, domain.ErrNotFound.
func (r *Repo) ConsumeAgentCreation(ctx context.Context, id uuid.UUID, amount, limit int) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var counter int
	err := q.QueryRow(ctx, consumeAgentCreationSQL, id, amount, limit).Scan(&counter)
	if err == nil {
		return counter, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError(err, "user", id.String())
	}

	// Zero rows: either the ceiling held or the user does not exist.
	if err := r.exists(ctx, id); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("user %s: %w", id, domain.NewQuotaError(domain.QuotaAgentCreation, limit))
}

// ConsumeAPICall atomically admits one API call while the monthly counter is
// below monthly_token_limit, adding tokens to total_tokens_used and stamping
// last_api_call in the same statement.
func (r *Repo) ConsumeAPICall(ctx context.Context, id uuid.UUID, calls int, tokens int64) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var counter int
	err := q.QueryRow(ctx, consumeAPICallSQL, id, calls, tokens).Scan(&counter)
	if err == nil {
		return counter, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError(err, "user", id.String())
	}

	if err := r.exists(ctx, id); err != nil {
		return 0, err
	}

	var limit int
	if err := q.QueryRow(ctx, monthlyLimitSQL, id).Scan(&limit); err != nil {
		return 0, mapError(err, "user", id.String())
	}
	return 0, fmt.Errorf("user %s: %w", id, domain.NewQuotaError(domain.QuotaAPICall, limit))
}

// IncrementTracesGenerated bumps the unbounded trace counter.
func (r *Repo) IncrementTracesGenerated(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, incrementTracesGeneratedSQL, id)
	if err != nil {
		return mapError(err, "user", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ResetMonthlyUsage zeroes the monthly counters for one user. The reset is a
// single UPDATE, so it serializes against in-flight ConsumeAPICall calls at
// the row level without any extra synchronization.
func (r *Repo) ResetMonthlyUsage(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, resetMonthlyUsageSQL, id)
	if err != nil {
		return mapError(err, "user", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ResetAllMonthlyUsage zeroes the monthly counters for every user that has
// any. Returns the number of users reset.
func (r *Repo) ResetAllMonthlyUsage(ctx context.Context) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, resetAllMonthlyUsageSQL)
	if err != nil {
		return 0, mapError(err, "users", "")
	}
	return tag.RowsAffected(), nil
}

// exists returns nil when the user row is present, ErrNotFound otherwise.
func (r *Repo) exists(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var found bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&found); err != nil {
		return mapError(err, "user", id.String())
	}
	if !found {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func (r *Repo) scanOne(row pgx.Row, entity, key string) (*domain.User, error) {
	var (
		u           domain.User
		role        string
		tier        string
		status      string
		avatarURL   pgtype.Text
		lastAPICall pgtype.Timestamptz
		lastLoginAt pgtype.Timestamptz
	)

	err := row.Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.Name, &avatarURL, &role,
		&tier, &status,
		&u.Usage.AgentsCreated, &u.Usage.TracesGenerated, &u.Usage.APICallsThisMonth, &lastAPICall,
		&u.Usage.TotalTokensUsed, &u.Usage.MonthlyTokenLimit,
		&u.IsActive, &lastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, entity, key)
	}

	u.Role = domain.UserRole(role)
	u.Subscription = domain.Subscription{
		Tier:   domain.SubscriptionTier(tier),
		Status: domain.SubscriptionStatus(status),
	}
	u.AvatarURL = pgTextToPtr(avatarURL)
	u.Usage.LastAPICall = pgTimestamptzToPtr(lastAPICall)
	u.LastLoginAt = pgTimestamptzToPtr(lastLoginAt)

	return &u, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, key, err)
	}

	// pgx.ErrNoRows -> domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	// PgError codes
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrValidation)
		}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %s: %w", entity, key, err)
}

// ---------------------------------------------------------------------------
// pgtype helpers
// ---------------------------------------------------------------------------

// pgTextToPtr returns a *string (nil when NULL).
func pgTextToPtr(t pgtype.Text) *string {
	if t.Valid {
		return &t.String
	}
	return nil
}

// ptrStringToPgText converts a *string to pgtype.Text (nil → NULL).
func ptrStringToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// pgTimestamptzToPtr returns a *time.Time (nil when NULL).
func pgTimestamptzToPtr(t pgtype.Timestamptz) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}

// ptrTimeToPgTimestamptz converts a *time.Time to pgtype.Timestamptz (nil → NULL).
func ptrTimeToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
