package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates an active free-tier user with default quota seeds.
// Returns the filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:         uuid.New(),
		ExternalID: "ext-" + suffix,
		Email:      "testuser-" + suffix + "@example.com",
		Name:       "Test User " + suffix,
		Role:       domain.UserRoleUser,
		Subscription: domain.Subscription{
			Tier:   domain.TierFree,
			Status: domain.SubscriptionActive,
		},
		Usage: domain.Usage{
			MonthlyTokenLimit: domain.DefaultMonthlyTokenLimit,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, external_id, email, name, role, subscription_tier, subscription_status,
		                    monthly_token_limit, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.ExternalID, user.Email, user.Name, user.Role.String(),
		user.Subscription.Tier.String(), user.Subscription.Status.String(),
		user.Usage.MonthlyTokenLimit, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert: %v", err)
	}

	return user
}

// SeedAgent creates an active public agent owned by authorID.
func SeedAgent(t *testing.T, pool *pgxpool.Pool, authorID uuid.UUID) domain.Agent {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	agent := domain.Agent{
		ID:       uuid.New(),
		AuthorID: authorID,
		Name:     "Test Agent " + suffix,
		Category: "testing",
		IsPublic: true,
		Status:   domain.AgentStatusActive,
		Performance: domain.Performance{
			Uptime: 100,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO agents (id, author_id, name, category, is_public, status, uptime, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		agent.ID, agent.AuthorID, agent.Name, agent.Category, agent.IsPublic,
		agent.Status.String(), agent.Performance.Uptime, agent.CreatedAt, agent.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAgent insert: %v", err)
	}

	return agent
}

// TraceOpts tweaks a seeded trace. Zero values fall back to defaults.
type TraceOpts struct {
	Status     domain.TraceStatus
	StartedAt  time.Time
	SessionID  string
	Tokens     int
	Cost       float64
	Processing int
}

// SeedTrace creates a trace for (userID, agentID) with the given options.
func SeedTrace(t *testing.T, pool *pgxpool.Pool, userID, agentID uuid.UUID, opts TraceOpts) domain.Trace {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	if opts.Status == "" {
		opts.Status = domain.TraceStatusPending
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = now
	}
	if opts.SessionID == "" {
		opts.SessionID = "sess-" + uniqueSuffix()
	}

	trace := domain.Trace{
		ID:        uuid.New(),
		UserID:    userID,
		AgentID:   agentID,
		SessionID: opts.SessionID,
		TokenUsage: domain.TokenUsage{
			Total:         opts.Tokens,
			EstimatedCost: opts.Cost,
		},
		Timing: domain.Timing{
			ProcessingTime: opts.Processing,
			TotalTime:      opts.Processing,
		},
		Status:        opts.Status,
		RetentionDays: domain.DefaultRetentionDays,
		StartedAt:     opts.StartedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO traces (id, user_id, agent_id, session_id, total_tokens, estimated_cost,
		                     processing_time_ms, total_time_ms, status, retention_days,
		                     started_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		trace.ID, trace.UserID, trace.AgentID, trace.SessionID,
		trace.TokenUsage.Total, trace.TokenUsage.EstimatedCost,
		trace.Timing.ProcessingTime, trace.Timing.TotalTime,
		trace.Status.String(), trace.RetentionDays,
		trace.StartedAt, trace.CreatedAt, trace.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTrace insert: %v", err)
	}

	return trace
}
