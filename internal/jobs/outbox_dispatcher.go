package jobs

import (
	"context"
	"time"

	"livetokens/internal/logger"
	"livetokens/internal/models"
	"livetokens/internal/notify"
	"livetokens/internal/repository"

	"go.uber.org/zap"
)

// OutboxDispatcher drains pending outbox events to the notification
// publisher. Events are committed with the tip transaction and published
// here, so a broker outage delays notifications but never fails a tip.
type OutboxDispatcher struct {
	repo       *repository.Repository
	publisher  notify.Publisher
	interval   time.Duration
	batchSize  int
	maxRetries int
	stopCh     chan struct{}
}

func NewOutboxDispatcher(repo *repository.Repository, publisher notify.Publisher) *OutboxDispatcher {
	return &OutboxDispatcher{
		repo:       repo,
		publisher:  publisher,
		interval:   200 * time.Millisecond,
		batchSize:  100,
		maxRetries: 5,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the dispatch loop in its own goroutine
func (d *OutboxDispatcher) Start(ctx context.Context) {
	go func() {
		logger.Info("outbox dispatcher started")

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("outbox dispatcher stopped")
				return
			case <-d.stopCh:
				logger.Info("outbox dispatcher stopped")
				return
			case <-ticker.C:
				d.drain(ctx)
			}
		}
	}()
}

// Stop terminates the dispatch loop
func (d *OutboxDispatcher) Stop() {
	close(d.stopCh)
}

func (d *OutboxDispatcher) drain(ctx context.Context) {
	events, err := d.repo.GetPendingOutboxEvents(ctx, d.batchSize)
	if err != nil {
		logger.Error("failed to load pending outbox events", err)
		return
	}

	for _, event := range events {
		d.dispatch(ctx, &event)
	}
}

func (d *OutboxDispatcher) dispatch(ctx context.Context, event *models.OutboxEvent) {
	err := d.publisher.Publish(ctx, event.Subject, event.Payload)
	if err == nil {
		if markErr := d.repo.MarkOutboxSent(ctx, event.ID); markErr != nil {
			// The event stays pending and will be republished; consumers
			// must tolerate duplicates (at-least-once).
			logger.Error("failed to mark outbox event sent", markErr, zap.Uint("event_id", event.ID))
		}
		return
	}

	logger.Warn("outbox publish failed", zap.Uint("event_id", event.ID), zap.Error(err))

	if incErr := d.repo.IncrementOutboxRetry(ctx, event.ID); incErr != nil {
		logger.Error("failed to bump outbox retry count", incErr, zap.Uint("event_id", event.ID))
		return
	}

	if event.RetryCount+1 >= d.maxRetries {
		if failErr := d.repo.MarkOutboxFailed(ctx, event.ID); failErr != nil {
			logger.Error("failed to park outbox event", failErr, zap.Uint("event_id", event.ID))
		} else {
			logger.Warn("outbox event parked after repeated failures", zap.Uint("event_id", event.ID))
		}
	}
}
