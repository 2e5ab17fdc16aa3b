package repository

import (
	"context"

	"livetokens/internal/models"

	"gorm.io/gorm"
)

// CreateTokenGoal creates a goal for a creator
func (r *Repository) CreateTokenGoal(ctx context.Context, goal *models.TokenGoal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

// GetTokenGoal retrieves a goal by ID
func (r *Repository) GetTokenGoal(ctx context.Context, goalID uint) (*models.TokenGoal, error) {
	var goal models.TokenGoal
	err := r.db.WithContext(ctx).Where("id = ?", goalID).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListActiveTokenGoals returns a creator's active goals, newest first
func (r *Repository) ListActiveTokenGoals(ctx context.Context, userID uint) ([]models.TokenGoal, error) {
	var goals []models.TokenGoal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// UpdateTokenGoal persists goal changes
func (r *Repository) UpdateTokenGoal(ctx context.Context, goal *models.TokenGoal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

// AdvanceActiveGoals moves a creator's active, uncompleted goals forward by
// amount inside tx, then marks any that reached their target as completed.
// Both statements are guarded updates so they compose with concurrent tips.
func (r *Repository) AdvanceActiveGoals(ctx context.Context, tx *gorm.DB, userID uint, amount int64) error {
	err := tx.WithContext(ctx).
		Model(&models.TokenGoal{}).
		Where("user_id = ? AND is_active = ? AND is_completed = ?", userID, true, false).
		Update("current_amount", gorm.Expr("current_amount + ?", amount)).Error
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).
		Model(&models.TokenGoal{}).
		Where("user_id = ? AND is_active = ? AND is_completed = ? AND current_amount >= target_amount", userID, true, false).
		Update("is_completed", true).Error
}
