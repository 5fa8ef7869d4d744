package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription holds the billing tier and its state for a user.
// Both fields are owned by the billing webhook (an external collaborator);
// this core only reads them.
type Subscription struct {
	Tier   SubscriptionTier
	Status SubscriptionStatus
}

// Usage holds the monotonic per-user consumption counters.
// AgentsCreated and APICallsThisMonth only ever grow, except through the
// explicit monthly reset.
type Usage struct {
	AgentsCreated     int
	TracesGenerated   int
	APICallsThisMonth int
	LastAPICall       *time.Time
	TotalTokensUsed   int64
	MonthlyTokenLimit int
}

// User represents a locally owned user record reconciled from an external
// identity provider. ExternalID is the provider's stable subject identifier.
type User struct {
	ID           uuid.UUID
	ExternalID   string
	Email        string
	Name         string
	AvatarURL    *string
	Role         UserRole
	Subscription Subscription
	Usage        Usage
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultMonthlyTokenLimit seeds MonthlyTokenLimit for newly provisioned users.
const DefaultMonthlyTokenLimit = 100000

// NewUser constructs a first-login user with tier-seeded defaults.
// The caller persists it; uniqueness on ExternalID is enforced by the store.
func NewUser(externalID, email, name string, avatarURL *string, now time.Time) *User {
	return &User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      email,
		Name:       name,
		AvatarURL:  avatarURL,
		Role:       UserRoleUser,
		Subscription: Subscription{
			Tier:   TierFree,
			Status: SubscriptionActive,
		},
		Usage: Usage{
			MonthlyTokenLimit: DefaultMonthlyTokenLimit,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanCreateAgent reports whether the user is below the tier's agent limit.
// limit < 0 means unlimited.
func (u *User) CanCreateAgent(limit int) bool {
	if limit < 0 {
		return true
	}
	return u.Usage.AgentsCreated < limit
}

// CanMakeAPICall reports whether the user is below the monthly call ceiling.
func (u *User) CanMakeAPICall() bool {
	return u.Usage.APICallsThisMonth < u.Usage.MonthlyTokenLimit
}
