package services

import (
	"context"
	"errors"

	"livetokens/internal/logger"
	"livetokens/internal/models"
	"livetokens/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AccountService struct {
	repo *repository.Repository
}

func NewAccountService(repo *repository.Repository) *AccountService {
	return &AccountService{repo: repo}
}

// GetAccount retrieves an account by internal ID
func (s *AccountService) GetAccount(ctx context.Context, userID uint) (*models.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, s.repo.DB(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by username
func (s *AccountService) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// CreditTokens adds purchased tokens to an account. The increment runs in a
// transaction with the same guarded-update shape the tip engine uses, so a
// top-up can never lose a concurrent tip's update.
func (s *AccountService) CreditTokens(ctx context.Context, userID uint, tokens int64) (*models.Account, error) {
	if tokens <= 0 {
		return nil, ErrValidation
	}

	err := runInTransaction(ctx, s.repo.DB(), 3, func(tx *gorm.DB) error {
		credited, err := s.repo.CreditAccount(ctx, tx, userID, tokens)
		if err != nil {
			return err
		}
		if !credited {
			return ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetAccount(ctx, userID)
}

// EnsureAccount provisions an account and its stream for an identity-provider
// user. Safe to call repeatedly: an existing account is returned as-is.
func (s *AccountService) EnsureAccount(ctx context.Context, externalID, username string) (*models.Account, error) {
	if externalID == "" || username == "" {
		return nil, ErrValidation
	}

	var existing models.Account
	err := s.repo.DB().WithContext(ctx).Where("external_id = ?", externalID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account := &models.Account{
		ExternalID: externalID,
		Username:   username,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	stream := &models.Stream{
		UserID:     account.ID,
		Name:       username + "'s room",
		KingTokens: models.DefaultKingTokens,
	}
	if err := s.repo.CreateStream(ctx, stream); err != nil {
		return nil, err
	}

	logger.Info("account provisioned", zap.Uint("user_id", account.ID), zap.String("username", username))
	return account, nil
}
