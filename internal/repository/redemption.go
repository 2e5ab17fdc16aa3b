package repository

import (
	"context"

	"livetokens/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRedemption inserts a PENDING redemption inside tx
func (r *Repository) CreateRedemption(ctx context.Context, tx *gorm.DB, redemption *models.Redemption) error {
	return tx.WithContext(ctx).Create(redemption).Error
}

// MarkRedemptionCompleted records the provider batch id and flips the status
func (r *Repository) MarkRedemptionCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, providerBatchID string) error {
	return tx.WithContext(ctx).
		Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, models.RedemptionStatusPending).
		Updates(map[string]interface{}{
			"status":            models.RedemptionStatusCompleted,
			"provider_batch_id": providerBatchID,
		}).Error
}

// MarkRedemptionFailed records the provider failure reason
func (r *Repository) MarkRedemptionFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, reason string) error {
	return tx.WithContext(ctx).
		Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, models.RedemptionStatusPending).
		Updates(map[string]interface{}{
			"status":         models.RedemptionStatusFailed,
			"failure_reason": reason,
		}).Error
}

// GetRedemptionByID retrieves a redemption
func (r *Repository) GetRedemptionByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	var redemption models.Redemption
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&redemption).Error
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// ListRedemptionsByUser returns a user's redemptions, newest first
func (r *Repository) ListRedemptionsByUser(ctx context.Context, userID uint, limit int) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&redemptions).Error
	if err != nil {
		return nil, err
	}
	return redemptions, nil
}
