package tracelife

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

// StartInput carries everything known about an invocation at submission.
type StartInput struct {
	UserID         uuid.UUID
	AgentID        uuid.UUID
	SessionID      string
	ParentTraceID  *uuid.UUID
	ConversationID *string
	Input          []byte
	TokenUsage     domain.TokenUsage
	Timing         domain.Timing
	// Processing starts the trace directly in processing, skipping pending.
	Processing bool
}

// Start records a new trace and bumps the owner's traces_generated counter.
// Derived token and timing fields are filled before the insert.
func (s *Service) Start(ctx context.Context, in StartInput) (*domain.Trace, error) {
	if in.SessionID == "" {
		return nil, domain.NewValidationError("sessionId", "must not be empty")
	}

	status := domain.TraceStatusPending
	if in.Processing {
		status = domain.TraceStatusProcessing
	}

	now := s.now().UTC()
	trace := &domain.Trace{
		ID:             uuid.New(),
		UserID:         in.UserID,
		AgentID:        in.AgentID,
		SessionID:      in.SessionID,
		ParentTraceID:  in.ParentTraceID,
		ConversationID: in.ConversationID,
		Input:          in.Input,
		TokenUsage:     in.TokenUsage,
		Timing:         in.Timing,
		Status:         status,
		RetentionDays:  s.retentionDays,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	trace.Derive()

	created, err := s.traces.Create(ctx, trace)
	if err != nil {
		return nil, fmt.Errorf("tracelife.Start create: %w", err)
	}

	if err := s.usage.RecordTraceGenerated(ctx, in.UserID); err != nil {
		return nil, fmt.Errorf("tracelife.Start record usage: %w", err)
	}

	s.log.InfoContext(ctx, "trace started",
		slog.String("trace_id", created.ID.String()),
		slog.String("agent_id", in.AgentID.String()),
		slog.String("status", created.Status.String()))

	return created, nil
}

// MarkProcessing moves a pending trace to processing. Repeating the call on a
// trace already processing is a no-op; any other status is rejected.
func (s *Service) MarkProcessing(ctx context.Context, traceID uuid.UUID) (*domain.Trace, error) {
	trace, err := s.traces.MarkProcessing(ctx, traceID)
	if err == nil {
		return trace, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("tracelife.MarkProcessing: %w", err)
	}

	return s.resolveMiss(ctx, traceID, domain.TraceStatusProcessing, "tracelife.MarkProcessing")
}

// MarkCompleted enters the success terminal state with the final output and
// metrics. Exactly one terminal entry ever sets completed_at; an identical
// repeat returns the stored trace unchanged.
func (s *Service) MarkCompleted(ctx context.Context, traceID uuid.UUID, output []byte, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error) {
	derive(&usage, &timing)

	trace, err := s.traces.Complete(ctx, traceID, output, usage, timing)
	if err == nil {
		s.log.InfoContext(ctx, "trace completed",
			slog.String("trace_id", traceID.String()),
			slog.Int("total_tokens", usage.Total))
		return trace, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("tracelife.MarkCompleted: %w", err)
	}

	return s.resolveMiss(ctx, traceID, domain.TraceStatusSuccess, "tracelife.MarkCompleted")
}

// MarkError enters the error terminal state.
func (s *Service) MarkError(ctx context.Context, traceID uuid.UUID, code, message string, retryable bool) (*domain.Trace, error) {
	traceErr := &domain.TraceError{Code: code, Message: message, Retryable: retryable}
	return s.fail(ctx, traceID, domain.TraceStatusError, traceErr, "tracelife.MarkError")
}

// Cancel enters the cancelled terminal state.
func (s *Service) Cancel(ctx context.Context, traceID uuid.UUID) (*domain.Trace, error) {
	return s.fail(ctx, traceID, domain.TraceStatusCancelled, nil, "tracelife.Cancel")
}

// MarkTimeout enters the timeout terminal state.
func (s *Service) MarkTimeout(ctx context.Context, traceID uuid.UUID) (*domain.Trace, error) {
	return s.fail(ctx, traceID, domain.TraceStatusTimeout, nil, "tracelife.MarkTimeout")
}

func (s *Service) fail(ctx context.Context, traceID uuid.UUID, status domain.TraceStatus, traceErr *domain.TraceError, op string) (*domain.Trace, error) {
	trace, err := s.traces.Fail(ctx, traceID, status, traceErr)
	if err == nil {
		s.log.InfoContext(ctx, "trace finalized",
			slog.String("trace_id", traceID.String()),
			slog.String("status", status.String()))
		return trace, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.resolveMiss(ctx, traceID, status, op)
}

// resolveMiss disambiguates a guarded-UPDATE miss: the trace either does not
// exist, already carries the requested status (idempotent retry, return it
// unchanged), or sits in a state the transition may not leave.
func (s *Service) resolveMiss(ctx context.Context, traceID uuid.UUID, want domain.TraceStatus, op string) (*domain.Trace, error) {
	trace, err := s.traces.GetByID(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trace.Status == want {
		return trace, nil
	}
	return nil, fmt.Errorf("%s: %w", op, domain.NewTransitionError(trace.Status, want))
}

// UpdateMetrics rewrites the trace's token usage and timing. It applies in
// any status; metrics may arrive after the terminal entry.
func (s *Service) UpdateMetrics(ctx context.Context, traceID uuid.UUID, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error) {
	derive(&usage, &timing)

	trace, err := s.traces.UpdateMetrics(ctx, traceID, usage, timing)
	if err != nil {
		return nil, fmt.Errorf("tracelife.UpdateMetrics: %w", err)
	}
	return trace, nil
}

// SetFeedback attaches the caller's feedback to their own trace. Each trace
// holds at most one feedback record; a later call replaces it.
func (s *Service) SetFeedback(ctx context.Context, traceID, userID uuid.UUID, fb domain.Feedback) (*domain.Trace, error) {
	if err := domain.ValidateRating(fb.Rating); err != nil {
		return nil, err
	}

	trace, err := s.traces.GetByID(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("tracelife.SetFeedback: %w", err)
	}
	if trace.UserID != userID {
		return nil, fmt.Errorf("tracelife.SetFeedback not the owner: %w", domain.ErrForbidden)
	}

	updated, err := s.traces.SetFeedback(ctx, traceID, fb)
	if err != nil {
		return nil, fmt.Errorf("tracelife.SetFeedback: %w", err)
	}
	return updated, nil
}

// Anonymize blanks the trace's input and output payloads for its owner.
// The metrics and lifecycle fields survive for analytics.
func (s *Service) Anonymize(ctx context.Context, traceID, userID uuid.UUID) (*domain.Trace, error) {
	trace, err := s.traces.GetByID(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("tracelife.Anonymize: %w", err)
	}
	if trace.UserID != userID {
		return nil, fmt.Errorf("tracelife.Anonymize not the owner: %w", domain.ErrForbidden)
	}

	updated, err := s.traces.Anonymize(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("tracelife.Anonymize: %w", err)
	}

	s.log.InfoContext(ctx, "trace anonymized",
		slog.String("trace_id", traceID.String()))

	return updated, nil
}

// PurgeExpired deletes traces whose retention period has elapsed, in batches,
// until none remain. Returns the total number of traces deleted.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.now().UTC()

	var total int64
	for {
		n, err := s.traces.PurgeExpired(ctx, now, s.purgeBatch)
		if err != nil {
			return total, fmt.Errorf("tracelife.PurgeExpired: %w", err)
		}
		total += n
		if n < int64(s.purgeBatch) {
			break
		}
	}

	if total > 0 {
		s.log.InfoContext(ctx, "expired traces purged",
			slog.Int64("deleted", total))
	}

	return total, nil
}

// derive mirrors domain.Trace.Derive for detached metric writes.
func derive(usage *domain.TokenUsage, timing *domain.Timing) {
	t := domain.Trace{TokenUsage: *usage, Timing: *timing}
	t.Derive()
	*usage = t.TokenUsage
	*timing = t.Timing
}
