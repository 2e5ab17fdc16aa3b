package repository

import (
	"context"
	"time"

	"livetokens/internal/models"

	"gorm.io/gorm"
)

// CreateAccount creates a new account
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetAccountByID retrieves an account by internal ID
func (r *Repository) GetAccountByID(ctx context.Context, db *gorm.DB, userID uint) (*models.Account, error) {
	var account models.Account
	err := db.WithContext(ctx).Where("id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByUsername retrieves an account by username
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountForUpdate retrieves an account inside tx, row-locked on postgres
func (r *Repository) GetAccountForUpdate(ctx context.Context, tx *gorm.DB, userID uint) (*models.Account, error) {
	var account models.Account
	err := forUpdate(tx.WithContext(ctx)).Where("id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// DebitAccount decrements a balance inside tx. The balance guard in the WHERE
// clause is the invariant: no interleaving can drive a balance negative.
// Returns false when the guard rejected the update.
func (r *Repository) DebitAccount(ctx context.Context, tx *gorm.DB, userID uint, amount int64) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CreditAccount increments a balance inside tx
func (r *Repository) CreditAccount(ctx context.Context, tx *gorm.DB, userID uint, amount int64) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CreateTip appends a tip to the ledger inside tx
func (r *Repository) CreateTip(ctx context.Context, tx *gorm.DB, tip *models.Tip) error {
	return tx.WithContext(ctx).Create(tip).Error
}

// SenderWindowTotal sums the sender's tips to a stream since windowStart,
// straight off the ledger. Never read this from a maintained counter.
func (r *Repository) SenderWindowTotal(ctx context.Context, tx *gorm.DB, streamID, senderID uint, windowStart time.Time) (int64, error) {
	var total int64
	err := tx.WithContext(ctx).
		Model(&models.Tip{}).
		Where("stream_id = ? AND sender_id = ? AND created_at >= ?", streamID, senderID, windowStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListTipsByStream returns tips for a stream since a given time, newest first
func (r *Repository) ListTipsByStream(ctx context.Context, streamID uint, since time.Time, limit int) ([]models.Tip, error) {
	var tips []models.Tip
	err := r.db.WithContext(ctx).
		Where("stream_id = ? AND created_at >= ?", streamID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&tips).Error
	if err != nil {
		return nil, err
	}
	return tips, nil
}

// ListTipsBySender returns tips sent by a user since a given time, newest first
func (r *Repository) ListTipsBySender(ctx context.Context, senderID uint, since time.Time, limit int) ([]models.Tip, error) {
	var tips []models.Tip
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND created_at >= ?", senderID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&tips).Error
	if err != nil {
		return nil, err
	}
	return tips, nil
}
