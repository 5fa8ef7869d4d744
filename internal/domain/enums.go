package domain

// UserRole represents the user's platform-wide role.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleAdmin     UserRole = "admin"
	UserRoleModerator UserRole = "moderator"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin, UserRoleModerator:
		return true
	}
	return false
}

// SubscriptionTier represents the billing tier a user is on.
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierPremium    SubscriptionTier = "premium"
	TierEnterprise SubscriptionTier = "enterprise"
)

func (t SubscriptionTier) String() string { return string(t) }

func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierPremium, TierEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus represents the billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
)

func (s SubscriptionStatus) String() string { return string(s) }

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionInactive, SubscriptionCancelled, SubscriptionPastDue:
		return true
	}
	return false
}

// AgentStatus represents the publication state of an agent.
type AgentStatus string

const (
	AgentStatusActive      AgentStatus = "active"
	AgentStatusDeprecated  AgentStatus = "deprecated"
	AgentStatusMaintenance AgentStatus = "maintenance"
	AgentStatusDraft       AgentStatus = "draft"
)

func (s AgentStatus) String() string { return string(s) }

func (s AgentStatus) IsValid() bool {
	switch s {
	case AgentStatusActive, AgentStatusDeprecated, AgentStatusMaintenance, AgentStatusDraft:
		return true
	}
	return false
}

// TraceStatus represents the lifecycle state of an execution trace.
type TraceStatus string

const (
	TraceStatusPending    TraceStatus = "pending"
	TraceStatusProcessing TraceStatus = "processing"
	TraceStatusSuccess    TraceStatus = "success"
	TraceStatusError      TraceStatus = "error"
	TraceStatusTimeout    TraceStatus = "timeout"
	TraceStatusCancelled  TraceStatus = "cancelled"
)

func (s TraceStatus) String() string { return string(s) }

func (s TraceStatus) IsValid() bool {
	switch s {
	case TraceStatusPending, TraceStatusProcessing, TraceStatusSuccess,
		TraceStatusError, TraceStatusTimeout, TraceStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status absorbs all further transitions.
func (s TraceStatus) IsTerminal() bool {
	switch s {
	case TraceStatusSuccess, TraceStatusError, TraceStatusTimeout, TraceStatusCancelled:
		return true
	}
	return false
}

// TerminalTraceStatuses lists every absorbing trace status.
// Order matters only for readability of SQL NOT IN clauses built from it.
var TerminalTraceStatuses = []TraceStatus{
	TraceStatusSuccess,
	TraceStatusError,
	TraceStatusTimeout,
	TraceStatusCancelled,
}
