package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/pkg/jobs"
	"github.com/joshkonopka69/fitness-sub000/pkg/messaging"
	"github.com/joshkonopka69/fitness-sub000/pkg/middleware/requestid"
)

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// EventService turns ledger changes into queued broker messages. Emit never blocks and
// never fails the caller.
type EventService struct {
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewEventService constructs an EventService. A nil queue disables emission.
func NewEventService(queue jobEnqueuer, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{queue: queue, metrics: metrics, logger: logger, now: time.Now}
}

// Emit enqueues the event for publication.
func (s *EventService) Emit(ctx context.Context, event models.LedgerEvent) {
	if s == nil || s.queue == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestid.FromContext(ctx)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("marshal ledger event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	job := jobs.Job{ID: event.ID, Type: string(event.Type), Payload: payload}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordEventDropped(string(event.Type))
		s.logger.Warn("ledger event dropped",
			zap.String("type", string(event.Type)),
			zap.String("coach_id", event.CoachID),
			zap.Error(err))
	}
}

// NewEventPublishHandler returns the queue handler that forwards jobs to the broker.
func NewEventPublishHandler(publisher messaging.Publisher, routingKey string, metrics *MetricsService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		err := publisher.Publish(ctx, routingKey, messaging.Message{
			ID:   job.ID,
			Type: job.Type,
			Body: job.Payload,
		})
		metrics.RecordEvent(job.Type, err)
		return err
	}
}
