package repository

import (
	"context"

	"livetokens/internal/models"

	"gorm.io/gorm"
)

// CreateStream creates a stream for a creator
func (r *Repository) CreateStream(ctx context.Context, stream *models.Stream) error {
	return r.db.WithContext(ctx).Create(stream).Error
}

// GetStreamByUserID retrieves the stream owned by a user
func (r *Repository) GetStreamByUserID(ctx context.Context, db *gorm.DB, userID uint) (*models.Stream, error) {
	var stream models.Stream
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&stream).Error
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

// GetStreamByID retrieves a stream by ID
func (r *Repository) GetStreamByID(ctx context.Context, streamID uint) (*models.Stream, error) {
	var stream models.Stream
	err := r.db.WithContext(ctx).Where("id = ?", streamID).First(&stream).Error
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

// UpdateStream persists creator settings changes
func (r *Repository) UpdateStream(ctx context.Context, stream *models.Stream) error {
	return r.db.WithContext(ctx).Save(stream).Error
}
