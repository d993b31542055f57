package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/internal/infrastructure/notification"
	"lottery-ledger.backend/pkg/logger"
)

const (
	// OutboxMaxAttempts bounds delivery retries of one event
	OutboxMaxAttempts = 10
	outboxBatchSize   = 100
)

type outboxStore interface {
	ListUnsent(ctx context.Context, maxAttempts, limit int) ([]*entities.OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// OutboxDispatchJob delivers queued outbox events to a notifier
type OutboxDispatchJob struct {
	outbox      outboxStore
	notifier    notification.Notifier
	metrics     *metrics.Metrics
	interval    time.Duration
	maxAttempts int
	stop        chan struct{}
}

func NewOutboxDispatchJob(outbox outboxStore, notifier notification.Notifier, m *metrics.Metrics, interval time.Duration) *OutboxDispatchJob {
	return &OutboxDispatchJob{
		outbox:      outbox,
		notifier:    notifier,
		metrics:     metrics.OrNop(m),
		interval:    interval,
		maxAttempts: OutboxMaxAttempts,
		stop:        make(chan struct{}),
	}
}

func (j *OutboxDispatchJob) Start(ctx context.Context) {
	runEvery(ctx, "outbox-dispatch", j.interval, j.stop, j.dispatch)
}

func (j *OutboxDispatchJob) Stop() {
	close(j.stop)
}

func (j *OutboxDispatchJob) dispatch(ctx context.Context) {
	events, err := j.outbox.ListUnsent(ctx, j.maxAttempts, outboxBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to list unsent outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := j.notifier.Notify(ctx, event); err != nil {
			j.metrics.OutboxDelivery.WithLabelValues(event.Topic, "failed").Inc()
			logger.Warn(ctx, "outbox delivery failed",
				zap.String("eventId", event.ID.String()),
				zap.String("topic", event.Topic),
				zap.Int("attempt", event.Attempts+1),
				zap.Error(err),
			)
			if markErr := j.outbox.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error(ctx, "failed to record outbox failure", zap.String("eventId", event.ID.String()), zap.Error(markErr))
			}
			continue
		}

		j.metrics.OutboxDelivery.WithLabelValues(event.Topic, "sent").Inc()
		if err := j.outbox.MarkSent(ctx, event.ID); err != nil {
			// delivered but not marked: the event is sent again next tick
			logger.Error(ctx, "failed to mark outbox event sent", zap.String("eventId", event.ID.String()), zap.Error(err))
		}
	}
}
