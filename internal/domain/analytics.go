package domain

import (
	"time"

	"github.com/google/uuid"
)

// TraceFilter narrows an analytics aggregation to a user, an agent and/or a
// date range. Nil fields mean "no constraint".
type TraceFilter struct {
	UserID  *uuid.UUID
	AgentID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// TraceBucket is one (calendar day, status) aggregation row.
type TraceBucket struct {
	Date              time.Time
	Status            TraceStatus
	Count             int64
	TotalTokens       int64
	TotalCost         float64
	AvgProcessingTime float64
}

// UserTraceStats is a single rollup over one user's trace history.
type UserTraceStats struct {
	TotalTraces         int64
	SuccessfulTraces    int64
	SuccessRate         float64
	TotalTokensUsed     int64
	TotalCostSpent      float64
	AvgProcessingTime   float64
	UniqueAgentsCount   int64
	UniqueSessionsCount int64
}
