// Package tracelife drives the trace lifecycle: pending, processing, then
// exactly one terminal entry. Terminal entry is decided by the store in a
// single conditional UPDATE, so two racing finalizers can never both win.
package tracelife

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentmart/agentmart-backend/internal/domain"
)

// traceRepo defines the trace repository interface needed by the lifecycle
// service.
type traceRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trace, error)
	Create(ctx context.Context, t *domain.Trace) (*domain.Trace, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) (*domain.Trace, error)
	Complete(ctx context.Context, id uuid.UUID, output []byte, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error)
	Fail(ctx context.Context, id uuid.UUID, status domain.TraceStatus, traceErr *domain.TraceError) (*domain.Trace, error)
	UpdateMetrics(ctx context.Context, id uuid.UUID, usage domain.TokenUsage, timing domain.Timing) (*domain.Trace, error)
	SetFeedback(ctx context.Context, id uuid.UUID, fb domain.Feedback) (*domain.Trace, error)
	Anonymize(ctx context.Context, id uuid.UUID) (*domain.Trace, error)
	PurgeExpired(ctx context.Context, now time.Time, batchSize int) (int64, error)
}

// usageRecorder defines the quota-side bookkeeping interface needed when a
// trace is started.
type usageRecorder interface {
	RecordTraceGenerated(ctx context.Context, userID uuid.UUID) error
}

// Service implements the trace state machine.
type Service struct {
	log           *slog.Logger
	traces        traceRepo
	usage         usageRecorder
	retentionDays int
	purgeBatch    int
	now           func() time.Time
}

// defaultPurgeBatch bounds a single purge DELETE when no batch size is
// configured. A non-positive batch would make the purge drain loop spin
// forever, so the fallback is applied in the constructor.
const defaultPurgeBatch = 1000

// NewService creates a new tracelife service instance.
func NewService(logger *slog.Logger, traces traceRepo, usage usageRecorder, retentionDays, purgeBatch int) *Service {
	if retentionDays <= 0 {
		retentionDays = domain.DefaultRetentionDays
	}
	if purgeBatch <= 0 {
		purgeBatch = defaultPurgeBatch
	}
	return &Service{
		log:           logger.With("service", "tracelife"),
		traces:        traces,
		usage:         usage,
		retentionDays: retentionDays,
		purgeBatch:    purgeBatch,
		now:           time.Now,
	}
}
