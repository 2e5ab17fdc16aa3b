package repository

import (
	"context"
	"time"

	"livetokens/internal/models"

	"gorm.io/gorm"
)

// GetKingOfRoom retrieves the current king row for a stream, if any
func (r *Repository) GetKingOfRoom(ctx context.Context, db *gorm.DB, streamID uint) (*models.KingOfRoom, error) {
	var king models.KingOfRoom
	err := db.WithContext(ctx).Where("stream_id = ?", streamID).First(&king).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &king, nil
}

// GetKingOfRoomForUpdate retrieves the king row inside tx, row-locked on
// postgres so concurrent tips into the same stream serialize on it
func (r *Repository) GetKingOfRoomForUpdate(ctx context.Context, tx *gorm.DB, streamID uint) (*models.KingOfRoom, error) {
	var king models.KingOfRoom
	err := forUpdate(tx.WithContext(ctx)).Where("stream_id = ?", streamID).First(&king).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &king, nil
}

// UpsertKingOfRoom installs the given user as king inside tx. CreatedAt is
// overwritten on every takeover: it marks the reign start.
func (r *Repository) UpsertKingOfRoom(ctx context.Context, tx *gorm.DB, streamID, userID uint, totalTokens int64, now time.Time) error {
	var king models.KingOfRoom
	err := tx.WithContext(ctx).Where("stream_id = ?", streamID).First(&king).Error

	if err == gorm.ErrRecordNotFound {
		king = models.KingOfRoom{
			StreamID:    streamID,
			UserID:      userID,
			TotalTokens: totalTokens,
			CreatedAt:   now,
		}
		return tx.WithContext(ctx).Create(&king).Error
	}
	if err != nil {
		return err
	}

	king.UserID = userID
	king.TotalTokens = totalTokens
	king.CreatedAt = now
	return tx.WithContext(ctx).Save(&king).Error
}
