package services

import (
	"context"
	"errors"
	"fmt"

	"livetokens/internal/lock"
	"livetokens/internal/logger"
	"livetokens/internal/models"
	"livetokens/internal/payout"
	"livetokens/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RedemptionService struct {
	repo     *repository.Repository
	provider payout.Provider
	locker   lock.Locker
	minimum  int64
	rate     int64
}

func NewRedemptionService(repo *repository.Repository, provider payout.Provider, locker lock.Locker, minimum, rate int64) *RedemptionService {
	if minimum <= 0 {
		minimum = 100
	}
	if rate <= 0 {
		rate = 8
	}
	return &RedemptionService{
		repo:     repo,
		provider: provider,
		locker:   locker,
		minimum:  minimum,
		rate:     rate,
	}
}

// Redeem converts tokens to a currency payout, reserve-then-settle: the
// debit and the PENDING record commit before the provider is called, and a
// provider failure credits the tokens back. A crash between payout and
// settle leaves a PENDING record with an idempotency reference to reconcile
// against, never a double payout.
func (s *RedemptionService) Redeem(ctx context.Context, userID uint, destination string, tokens int64) (*models.Redemption, error) {
	if destination == "" || tokens <= 0 {
		return nil, ErrValidation
	}
	if tokens < s.minimum {
		return nil, fmt.Errorf("%w: minimum is %d tokens", ErrBelowMinimum, s.minimum)
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		if errors.Is(err, lock.ErrLockBusy) {
			return nil, fmt.Errorf("%w: another redemption is in flight", ErrConflict)
		}
		return nil, err
	}
	defer release()

	// usdAmount = tokens / 100 * rate, computed exactly in that shape
	usdAmount := decimal.NewFromInt(tokens).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(s.rate)).
		Round(2)

	redemption := &models.Redemption{
		ID:             uuid.New(),
		UserID:         userID,
		TokensRedeemed: tokens,
		UsdAmount:      usdAmount,
		Destination:    destination,
		Reference:      uuid.NewString(),
		Status:         models.RedemptionStatusPending,
	}

	// Reserve: debit and PENDING record in one transaction
	err = runInTransaction(ctx, s.repo.DB(), 3, func(tx *gorm.DB) error {
		account, err := s.repo.GetAccountForUpdate(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if account.Balance < tokens {
			return ErrInsufficientFunds
		}

		debited, err := s.repo.DebitAccount(ctx, tx, userID, tokens)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientFunds
		}

		return s.repo.CreateRedemption(ctx, tx, redemption)
	})
	if err != nil {
		return nil, err
	}

	// Settle against the provider, outside any database transaction
	result, payoutErr := s.provider.SendPayout(ctx, &payout.Request{
		Destination: destination,
		USDAmount:   usdAmount,
		Reference:   redemption.Reference,
	})

	if payoutErr != nil {
		return nil, s.compensate(ctx, redemption, tokens, payoutErr)
	}

	err = runInTransaction(ctx, s.repo.DB(), 3, func(tx *gorm.DB) error {
		return s.repo.MarkRedemptionCompleted(ctx, tx, redemption.ID, result.BatchID)
	})
	if err != nil {
		return nil, err
	}

	redemption.Status = models.RedemptionStatusCompleted
	redemption.ProviderBatchID = &result.BatchID

	logger.Info("redemption completed",
		zap.Uint("user_id", userID),
		zap.Int64("tokens", tokens),
		zap.String("reference", redemption.Reference))

	return redemption, nil
}

// compensate credits the reserved tokens back and marks the record FAILED
func (s *RedemptionService) compensate(ctx context.Context, redemption *models.Redemption, tokens int64, payoutErr error) error {
	reason := payoutErr.Error()
	var providerErr *payout.ProviderError
	if errors.As(payoutErr, &providerErr) {
		reason = providerErr.Message
	}

	err := runInTransaction(ctx, s.repo.DB(), 3, func(tx *gorm.DB) error {
		credited, err := s.repo.CreditAccount(ctx, tx, redemption.UserID, tokens)
		if err != nil {
			return err
		}
		if !credited {
			return ErrAccountNotFound
		}
		return s.repo.MarkRedemptionFailed(ctx, tx, redemption.ID, reason)
	})
	if err != nil {
		logger.Error("failed to compensate redemption", err,
			zap.String("reference", redemption.Reference))
		return err
	}

	return fmt.Errorf("%w: %s", ErrPayoutProvider, reason)
}

// ListRedemptions returns a user's redemption history
func (s *RedemptionService) ListRedemptions(ctx context.Context, userID uint, limit int) ([]models.Redemption, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRedemptionsByUser(ctx, userID, limit)
}
