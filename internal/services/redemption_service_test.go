package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"livetokens/internal/lock"
	"livetokens/internal/models"
	"livetokens/internal/payout"
	"livetokens/internal/repository"
)

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewRandom()
	if err != nil {
		t.Fatalf("failed to generate uuid: %v", err)
	}
	return id
}

// fakeProvider records payout requests and fails on demand
type fakeProvider struct {
	requests []*payout.Request
	fail     error
	batchID  string
}

func (p *fakeProvider) SendPayout(ctx context.Context, req *payout.Request) (*payout.Result, error) {
	p.requests = append(p.requests, req)
	if p.fail != nil {
		return nil, p.fail
	}
	return &payout.Result{BatchID: p.batchID}, nil
}

// busyLocker always reports the lock as held
type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, userID uint) (func(), error) {
	return nil, lock.ErrLockBusy
}

func TestRedeemBelowMinimum(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{batchID: "batch-1"}
	service := NewRedemptionService(repo, provider, lock.NewLocalLocker(), 100, 8)

	user := createTestAccount(t, db, "creator", 500)

	_, err := service.Redeem(context.Background(), user.ID, "creator@example.com", 50)
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}

	var row models.Account
	db.First(&row, user.ID)
	if row.Balance != 500 {
		t.Errorf("expected balance untouched at 500, got %d", row.Balance)
	}
	if len(provider.requests) != 0 {
		t.Errorf("expected no provider calls, got %d", len(provider.requests))
	}
}

func TestRedeemInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{batchID: "batch-1"}
	service := NewRedemptionService(repo, provider, lock.NewLocalLocker(), 100, 8)

	user := createTestAccount(t, db, "creator", 150)

	_, err := service.Redeem(context.Background(), user.ID, "creator@example.com", 200)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	var row models.Account
	db.First(&row, user.ID)
	if row.Balance != 150 {
		t.Errorf("expected balance untouched at 150, got %d", row.Balance)
	}

	var count int64
	db.Model(&models.Redemption{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no redemption rows, got %d", count)
	}
}

func TestRedeemSuccess(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{batchID: "batch-42"}
	service := NewRedemptionService(repo, provider, lock.NewLocalLocker(), 100, 8)

	user := createTestAccount(t, db, "creator", 500)

	redemption, err := service.Redeem(context.Background(), user.ID, "creator@example.com", 100)
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}

	// 100 tokens at 8 per 100 is exactly $8.00
	if !redemption.UsdAmount.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected usd amount 8, got %s", redemption.UsdAmount)
	}
	if redemption.Status != models.RedemptionStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", redemption.Status)
	}
	if redemption.ProviderBatchID == nil || *redemption.ProviderBatchID != "batch-42" {
		t.Errorf("expected provider batch id batch-42, got %v", redemption.ProviderBatchID)
	}

	var row models.Account
	db.First(&row, user.ID)
	if row.Balance != 400 {
		t.Errorf("expected balance 400 after redemption, got %d", row.Balance)
	}

	var stored models.Redemption
	if err := db.First(&stored, "id = ?", redemption.ID).Error; err != nil {
		t.Fatalf("failed to load redemption: %v", err)
	}
	if stored.Status != models.RedemptionStatusCompleted {
		t.Errorf("expected stored status COMPLETED, got %s", stored.Status)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(provider.requests))
	}
	if provider.requests[0].Reference != redemption.Reference {
		t.Errorf("provider idempotency reference mismatch: %s vs %s",
			provider.requests[0].Reference, redemption.Reference)
	}
	if !provider.requests[0].USDAmount.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected provider amount 8, got %s", provider.requests[0].USDAmount)
	}
}

func TestRedeemRateComputation(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{batchID: "batch-1"}
	service := NewRedemptionService(repo, provider, lock.NewLocalLocker(), 100, 8)

	user := createTestAccount(t, db, "creator", 10000)

	cases := []struct {
		tokens int64
		usd    string
	}{
		{100, "8"},
		{250, "20"},
		{125, "10"},
		{1337, "106.96"},
	}
	for _, tc := range cases {
		redemption, err := service.Redeem(context.Background(), user.ID, "creator@example.com", tc.tokens)
		if err != nil {
			t.Fatalf("Redeem(%d) failed: %v", tc.tokens, err)
		}
		want := decimal.RequireFromString(tc.usd)
		if !redemption.UsdAmount.Equal(want) {
			t.Errorf("Redeem(%d): expected usd %s, got %s", tc.tokens, tc.usd, redemption.UsdAmount)
		}
	}
}

func TestRedeemProviderFailureCompensates(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{fail: &payout.ProviderError{StatusCode: 422, Message: "destination rejected"}}
	service := NewRedemptionService(repo, provider, lock.NewLocalLocker(), 100, 8)

	user := createTestAccount(t, db, "creator", 500)

	_, err := service.Redeem(context.Background(), user.ID, "creator@example.com", 200)
	if !errors.Is(err, ErrPayoutProvider) {
		t.Fatalf("expected ErrPayoutProvider, got %v", err)
	}

	// Tokens are credited back and the record is parked FAILED
	var row models.Account
	db.First(&row, user.ID)
	if row.Balance != 500 {
		t.Errorf("expected balance restored to 500, got %d", row.Balance)
	}

	var stored models.Redemption
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("failed to load redemption: %v", err)
	}
	if stored.Status != models.RedemptionStatusFailed {
		t.Errorf("expected FAILED, got %s", stored.Status)
	}
	if stored.FailureReason == nil || *stored.FailureReason != "destination rejected" {
		t.Errorf("expected failure reason recorded, got %v", stored.FailureReason)
	}
}

func TestRedeemLockBusy(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{batchID: "batch-1"}
	service := NewRedemptionService(repo, provider, busyLocker{}, 100, 8)

	user := createTestAccount(t, db, "creator", 500)

	_, err := service.Redeem(context.Background(), user.ID, "creator@example.com", 100)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when lock is held, got %v", err)
	}

	var row models.Account
	db.First(&row, user.ID)
	if row.Balance != 500 {
		t.Errorf("expected balance untouched at 500, got %d", row.Balance)
	}
}

func TestListRedemptions(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	provider := &fakeProvider{batchID: "batch-1"}
	service := NewRedemptionService(repo, provider, lock.NewLocalLocker(), 100, 8)

	user := createTestAccount(t, db, "creator", 1000)

	for i := 0; i < 3; i++ {
		if _, err := service.Redeem(context.Background(), user.ID, "creator@example.com", 100); err != nil {
			t.Fatalf("Redeem failed: %v", err)
		}
	}

	history, err := service.ListRedemptions(context.Background(), user.ID, 0)
	if err != nil {
		t.Fatalf("ListRedemptions failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("expected 3 redemptions, got %d", len(history))
	}
}
