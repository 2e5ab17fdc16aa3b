package repository

import (
	"context"

	"livetokens/internal/models"

	"gorm.io/gorm"
)

// CreateTipMenuItem creates a tip menu item
func (r *Repository) CreateTipMenuItem(ctx context.Context, item *models.TipMenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetTipMenuItem retrieves an item by ID
func (r *Repository) GetTipMenuItem(ctx context.Context, itemID uint) (*models.TipMenuItem, error) {
	var item models.TipMenuItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetActiveTipMenuItem retrieves an active item belonging to a creator,
// inside tx so the price read is part of the tip transaction
func (r *Repository) GetActiveTipMenuItem(ctx context.Context, tx *gorm.DB, itemID, ownerID uint) (*models.TipMenuItem, error) {
	var item models.TipMenuItem
	err := tx.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_active = ?", itemID, ownerID, true).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListActiveTipMenuItems returns a creator's active items
func (r *Repository) ListActiveTipMenuItems(ctx context.Context, userID uint) ([]models.TipMenuItem, error) {
	var items []models.TipMenuItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("tokens ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateTipMenuItem persists item changes
func (r *Repository) UpdateTipMenuItem(ctx context.Context, item *models.TipMenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteTipMenuItem removes an item owned by the given creator
func (r *Repository) DeleteTipMenuItem(ctx context.Context, itemID, ownerID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, ownerID).
		Delete(&models.TipMenuItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
