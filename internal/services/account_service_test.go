package services

import (
	"context"
	"errors"
	"testing"

	"livetokens/internal/models"
	"livetokens/internal/repository"
)

func TestEnsureAccountIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewAccountService(repo)

	ctx := context.Background()
	first, err := service.EnsureAccount(ctx, "ext-1", "creator")
	if err != nil {
		t.Fatalf("EnsureAccount failed: %v", err)
	}

	// The stream is provisioned alongside the account
	var stream models.Stream
	if err := db.Where("user_id = ?", first.ID).First(&stream).Error; err != nil {
		t.Fatalf("expected provisioned stream: %v", err)
	}
	if stream.KingTokens != models.DefaultKingTokens {
		t.Errorf("expected default king threshold %d, got %d", models.DefaultKingTokens, stream.KingTokens)
	}

	second, err := service.EnsureAccount(ctx, "ext-1", "creator")
	if err != nil {
		t.Fatalf("repeated EnsureAccount failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same account on repeat, got %d and %d", first.ID, second.ID)
	}

	var accountCount, streamCount int64
	db.Model(&models.Account{}).Count(&accountCount)
	db.Model(&models.Stream{}).Count(&streamCount)
	if accountCount != 1 || streamCount != 1 {
		t.Errorf("expected 1 account and 1 stream, got %d/%d", accountCount, streamCount)
	}
}

func TestCreditTokens(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewAccountService(repo)

	user := createTestAccount(t, db, "viewer", 50)

	ctx := context.Background()
	account, err := service.CreditTokens(ctx, user.ID, 200)
	if err != nil {
		t.Fatalf("CreditTokens failed: %v", err)
	}
	if account.Balance != 250 {
		t.Errorf("expected balance 250, got %d", account.Balance)
	}

	if _, err := service.CreditTokens(ctx, user.ID, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero tokens, got %v", err)
	}
	if _, err := service.CreditTokens(ctx, 9999, 10); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateStreamSettings(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewStreamService(repo)

	user := createTestAccount(t, db, "creator", 0)
	createTestStream(t, db, user.ID, 100)

	ctx := context.Background()

	threshold := int64(500)
	pinned := "welcome!"
	stream, err := service.UpdateSettings(ctx, user.ID, &models.UpdateStreamRequest{
		KingTokens:    &threshold,
		PinnedMessage: &pinned,
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if stream.KingTokens != 500 {
		t.Errorf("expected king threshold 500, got %d", stream.KingTokens)
	}
	if stream.PinnedMessage != "welcome!" {
		t.Errorf("expected pinned message patched, got %q", stream.PinnedMessage)
	}

	// Fields not in the patch stay put
	if !stream.IsChatEnabled {
		t.Error("expected chat enabled to be untouched")
	}

	bad := int64(0)
	if _, err := service.UpdateSettings(ctx, user.ID, &models.UpdateStreamRequest{KingTokens: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for non-positive threshold, got %v", err)
	}
}
