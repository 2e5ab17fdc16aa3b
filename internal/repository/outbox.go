package repository

import (
	"context"
	"time"

	"livetokens/internal/models"

	"gorm.io/gorm"
)

// CreateOutboxEvent appends an event inside tx, so the event commits (or
// rolls back) together with the state change it describes
func (r *Repository) CreateOutboxEvent(ctx context.Context, tx *gorm.DB, event *models.OutboxEvent) error {
	return tx.WithContext(ctx).Create(event).Error
}

// GetPendingOutboxEvents returns the oldest pending events up to limit
func (r *Repository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.OutboxStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkOutboxSent records a successful publish
func (r *Repository) MarkOutboxSent(ctx context.Context, eventID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":  models.OutboxStatusSent,
			"sent_at": &now,
		}).Error
}

// IncrementOutboxRetry bumps the retry counter after a failed publish
func (r *Repository) IncrementOutboxRetry(ctx context.Context, eventID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Update("retry_count", gorm.Expr("retry_count + 1")).Error
}

// MarkOutboxFailed parks an event that exhausted its retries
func (r *Repository) MarkOutboxFailed(ctx context.Context, eventID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Update("status", models.OutboxStatusFailed).Error
}
