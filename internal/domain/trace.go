package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenUsage records token consumption for a single invocation.
// Total is derived from Prompt+Completion when not supplied directly.
type TokenUsage struct {
	Prompt        int
	Completion    int
	Total         int
	EstimatedCost float64
}

// Timing records the latency breakdown of an invocation in milliseconds.
// Total is derived from Queue+Processing when not supplied directly;
// TokensPerSecond is always derived, never authoritative.
type Timing struct {
	QueueTime       int
	ProcessingTime  int
	TotalTime       int
	TokensPerSecond float64
}

// TraceError captures a failed invocation's error detail.
type TraceError struct {
	Code      string
	Message   string
	Retryable bool
}

// Feedback is the single optional user feedback attached to a trace.
type Feedback struct {
	Rating  int
	Comment string
	Helpful bool
}

// DefaultRetentionDays is the purge horizon for traces created without an
// explicit retention period.
const DefaultRetentionDays = 90

// Trace is one record per agent invocation.
type Trace struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AgentID        uuid.UUID
	SessionID      string
	ParentTraceID  *uuid.UUID
	ConversationID *string
	Input          []byte
	Output         []byte
	TokenUsage     TokenUsage
	Timing         Timing
	Status         TraceStatus
	Error          *TraceError
	Feedback       *Feedback
	RetentionDays  int
	IsAnonymized   bool
	StartedAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTerminal reports whether the trace has reached an absorbing status.
func (t *Trace) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// Derive fills the derived token and timing fields. Zero-valued totals are
// recomputed from their parts; TokensPerSecond is recomputed unconditionally.
// It runs on every tokenUsage/timing write, independent of status.
func (t *Trace) Derive() {
	if t.TokenUsage.Total == 0 {
		t.TokenUsage.Total = t.TokenUsage.Prompt + t.TokenUsage.Completion
	}
	if t.Timing.TotalTime == 0 {
		t.Timing.TotalTime = t.Timing.QueueTime + t.Timing.ProcessingTime
	}
	if t.Timing.ProcessingTime > 0 {
		t.Timing.TokensPerSecond = float64(t.TokenUsage.Completion) /
			(float64(t.Timing.ProcessingTime) / 1000)
	} else {
		t.Timing.TokensPerSecond = 0
	}
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// pending may go to processing or straight to any terminal status;
// processing may go to any terminal status; terminal statuses absorb.
func (t *Trace) CanTransitionTo(next TraceStatus) bool {
	if t.IsTerminal() {
		return false
	}
	switch t.Status {
	case TraceStatusPending:
		return next == TraceStatusProcessing || next.IsTerminal()
	case TraceStatusProcessing:
		return next.IsTerminal()
	}
	return false
}

// PurgeAfter returns the instant the trace becomes eligible for deletion.
func (t *Trace) PurgeAfter() time.Time {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultRetentionDays
	}
	return t.CreatedAt.AddDate(0, 0, days)
}
