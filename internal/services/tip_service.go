package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"livetokens/internal/logger"
	"livetokens/internal/models"
	"livetokens/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubjectTipCompleted is the outbox subject for tip notifications
const SubjectTipCompleted = "tips.completed"

type TipService struct {
	repo       *repository.Repository
	window     time.Duration
	maxRetries int
}

func NewTipService(repo *repository.Repository, window time.Duration, maxRetries int) *TipService {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &TipService{
		repo:       repo,
		window:     window,
		maxRetries: maxRetries,
	}
}

// TipResult carries the post-commit balances back to the caller
type TipResult struct {
	SenderBalance    int64 `json:"sender_balance"`
	RecipientBalance int64 `json:"recipient_balance"`
}

// SendTip atomically debits the sender, credits the recipient, appends the
// tip to the ledger, recomputes king-of-room for the recipient's stream and
// queues the tip-completed event. Everything happens in one transaction; on
// any failure no partial effect is observable.
func (s *TipService) SendTip(ctx context.Context, senderID uint, req *models.SendTipRequest) (*TipResult, error) {
	if req == nil || req.RecipientID == 0 {
		return nil, ErrValidation
	}
	if req.ItemID == nil && req.Amount <= 0 {
		return nil, ErrValidation
	}
	if senderID == req.RecipientID {
		return nil, ErrSelfTip
	}

	result := &TipResult{}

	err := runInTransaction(ctx, s.repo.DB(), s.maxRetries, func(tx *gorm.DB) error {
		// Lock both account rows in ascending ID order to avoid deadlocks
		// between crossing tips.
		accounts := make(map[uint]*models.Account, 2)
		for _, id := range lockOrder(senderID, req.RecipientID) {
			account, err := s.repo.GetAccountForUpdate(ctx, tx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAccountNotFound
				}
				return err
			}
			accounts[id] = account
		}
		sender := accounts[senderID]
		recipient := accounts[req.RecipientID]

		stream, err := s.repo.GetStreamByUserID(ctx, tx, recipient.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStreamNotFound
			}
			return err
		}

		amount := req.Amount
		var itemLabel *string
		if req.ItemID != nil {
			item, err := s.repo.GetActiveTipMenuItem(ctx, tx, *req.ItemID, recipient.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}
			amount = item.Tokens
			itemLabel = &item.Name
		}

		if sender.Balance < amount {
			return ErrInsufficientFunds
		}

		// The guarded update is the real invariant; the read above only
		// produces a friendlier early error.
		debited, err := s.repo.DebitAccount(ctx, tx, sender.ID, amount)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientFunds
		}

		credited, err := s.repo.CreditAccount(ctx, tx, recipient.ID, amount)
		if err != nil {
			return err
		}
		if !credited {
			return ErrAccountNotFound
		}

		now := time.Now()
		windowStart := now.Add(-s.window)

		// Window total from the ledger plus the in-flight amount; the tip row
		// itself is inserted after the aggregate.
		windowTotal, err := s.repo.SenderWindowTotal(ctx, tx, stream.ID, sender.ID, windowStart)
		if err != nil {
			return err
		}
		senderTotal := windowTotal + amount

		tip := &models.Tip{
			ID:          uuid.New(),
			StreamID:    stream.ID,
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Amount:      amount,
			ItemLabel:   itemLabel,
			CreatedAt:   now,
		}
		if err := s.repo.CreateTip(ctx, tx, tip); err != nil {
			return err
		}

		if err := s.maybeCrownKing(ctx, tx, stream, sender.ID, senderTotal, now, windowStart); err != nil {
			return err
		}

		if err := s.repo.AdvanceActiveGoals(ctx, tx, recipient.ID, amount); err != nil {
			return err
		}

		event := models.TipCompletedEvent{
			StreamID:      stream.ID,
			SenderName:    sender.Username,
			RecipientName: recipient.Username,
			Amount:        amount,
			ItemLabel:     itemLabel,
			TippedAt:      now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := s.repo.CreateOutboxEvent(ctx, tx, &models.OutboxEvent{
			Subject: SubjectTipCompleted,
			Key:     tip.ID.String(),
			Payload: payload,
		}); err != nil {
			return err
		}

		result.SenderBalance = sender.Balance - amount
		result.RecipientBalance = recipient.Balance + amount
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("tip completed",
		zap.Uint("sender_id", senderID),
		zap.Uint("recipient_id", req.RecipientID),
		zap.Int64("amount", req.Amount))

	return result, nil
}

// maybeCrownKing applies the king-of-room rules for a candidate sender. An
// incumbent below threshold or below their recorded total is left alone
// until a challenger qualifies: staleness is corrected lazily, on the next
// qualifying tip, never by a background sweep.
func (s *TipService) maybeCrownKing(ctx context.Context, tx *gorm.DB, stream *models.Stream, senderID uint, senderTotal int64, now, windowStart time.Time) error {
	king, err := s.repo.GetKingOfRoomForUpdate(ctx, tx, stream.ID)
	if err != nil {
		return err
	}

	if senderTotal < stream.KingThreshold() {
		return nil
	}

	crown := king == nil ||
		senderTotal > king.TotalTokens ||
		king.CreatedAt.Before(windowStart)

	if !crown {
		return nil
	}

	return s.repo.UpsertKingOfRoom(ctx, tx, stream.ID, senderID, senderTotal, now)
}

// GetKingOfRoom resolves a creator's username to their stream and returns the
// current king row, which may be nil. Repeated reads with no new tips return
// the same (userId, totalTokens).
func (s *TipService) GetKingOfRoom(ctx context.Context, username string) (*models.KingOfRoom, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	stream, err := s.repo.GetStreamByUserID(ctx, s.repo.DB(), account.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}

	return s.repo.GetKingOfRoom(ctx, s.repo.DB(), stream.ID)
}

// ListStreamTips returns the audit trail for a stream
func (s *TipService) ListStreamTips(ctx context.Context, streamID uint, since time.Time, limit int) ([]models.Tip, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTipsByStream(ctx, streamID, since, limit)
}

// ListSentTips returns the audit trail for a sender
func (s *TipService) ListSentTips(ctx context.Context, senderID uint, since time.Time, limit int) ([]models.Tip, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTipsBySender(ctx, senderID, since, limit)
}

func lockOrder(a, b uint) []uint {
	if a < b {
		return []uint{a, b}
	}
	return []uint{b, a}
}
