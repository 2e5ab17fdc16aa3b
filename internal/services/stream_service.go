package services

import (
	"context"
	"errors"

	"livetokens/internal/models"
	"livetokens/internal/repository"

	"gorm.io/gorm"
)

type StreamService struct {
	repo *repository.Repository
}

func NewStreamService(repo *repository.Repository) *StreamService {
	return &StreamService{repo: repo}
}

// GetOwnStream returns the creator's stream settings
func (s *StreamService) GetOwnStream(ctx context.Context, userID uint) (*models.Stream, error) {
	stream, err := s.repo.GetStreamByUserID(ctx, s.repo.DB(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}
	return stream, nil
}

// GetStreamByUsername resolves a creator's username to their stream
func (s *StreamService) GetStreamByUsername(ctx context.Context, username string) (*models.Stream, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.GetOwnStream(ctx, account.ID)
}

// UpdateSettings applies a creator's settings patch. Only provided fields
// change; a zero KingTokens is rejected rather than silently disabling the
// threshold.
func (s *StreamService) UpdateSettings(ctx context.Context, userID uint, req *models.UpdateStreamRequest) (*models.Stream, error) {
	stream, err := s.GetOwnStream(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.KingTokens != nil && *req.KingTokens <= 0 {
		return nil, ErrValidation
	}

	if req.Name != nil {
		stream.Name = *req.Name
	}
	if req.IsChatEnabled != nil {
		stream.IsChatEnabled = *req.IsChatEnabled
	}
	if req.IsChatDelayed != nil {
		stream.IsChatDelayed = *req.IsChatDelayed
	}
	if req.IsChatFollowersOnly != nil {
		stream.IsChatFollowersOnly = *req.IsChatFollowersOnly
	}
	if req.PinnedMessage != nil {
		stream.PinnedMessage = *req.PinnedMessage
	}
	if req.StreamTopic != nil {
		stream.StreamTopic = *req.StreamTopic
	}
	if req.KingTokens != nil {
		stream.KingTokens = *req.KingTokens
	}
	if req.BlockedCountries != nil {
		stream.BlockedCountries = *req.BlockedCountries
	}

	if err := s.repo.UpdateStream(ctx, stream); err != nil {
		return nil, err
	}

	return stream, nil
}
