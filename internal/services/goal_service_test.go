package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"livetokens/internal/models"
	"livetokens/internal/repository"
)

func TestGoalAdvancesWithTips(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	goals := NewGoalService(repo)
	tips := NewTipService(repo, 24*time.Hour, 3)

	viewer := createTestAccount(t, db, "viewer", 1000)
	creator := createTestAccount(t, db, "creator", 0)
	createTestStream(t, db, creator.ID, 100)

	ctx := context.Background()
	goal, err := goals.CreateGoal(ctx, creator.ID, &models.CreateGoalRequest{
		Name:         "new webcam",
		TargetAmount: 100,
	})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if goal.Theme != "default" || goal.Color != "#1010f2" {
		t.Errorf("expected defaults applied, got theme=%q color=%q", goal.Theme, goal.Color)
	}

	if _, err := tips.SendTip(ctx, viewer.ID, &models.SendTipRequest{RecipientID: creator.ID, Amount: 60}); err != nil {
		t.Fatalf("SendTip failed: %v", err)
	}

	var row models.TokenGoal
	db.First(&row, goal.ID)
	if row.CurrentAmount != 60 || row.IsCompleted {
		t.Errorf("expected goal at 60 and uncompleted, got %d completed=%v", row.CurrentAmount, row.IsCompleted)
	}

	if _, err := tips.SendTip(ctx, viewer.ID, &models.SendTipRequest{RecipientID: creator.ID, Amount: 60}); err != nil {
		t.Fatalf("SendTip failed: %v", err)
	}

	db.First(&row, goal.ID)
	if row.CurrentAmount != 120 || !row.IsCompleted {
		t.Errorf("expected goal completed at 120, got %d completed=%v", row.CurrentAmount, row.IsCompleted)
	}

	// A completed goal no longer advances
	if _, err := tips.SendTip(ctx, viewer.ID, &models.SendTipRequest{RecipientID: creator.ID, Amount: 30}); err != nil {
		t.Fatalf("SendTip failed: %v", err)
	}
	db.First(&row, goal.ID)
	if row.CurrentAmount != 120 {
		t.Errorf("expected completed goal frozen at 120, got %d", row.CurrentAmount)
	}
}

func TestGoalOwnership(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewGoalService(repo)

	owner := createTestAccount(t, db, "owner", 0)
	intruder := createTestAccount(t, db, "intruder", 0)

	ctx := context.Background()
	goal, err := service.CreateGoal(ctx, owner.ID, &models.CreateGoalRequest{Name: "goal", TargetAmount: 100})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	inactive := false
	if _, err := service.UpdateGoal(ctx, intruder.ID, goal.ID, &models.UpdateGoalRequest{IsActive: &inactive}); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("expected ErrGoalNotFound for foreign goal, got %v", err)
	}

	updated, err := service.UpdateGoal(ctx, owner.ID, goal.ID, &models.UpdateGoalRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if updated.IsActive {
		t.Error("expected goal deactivated")
	}

	listed, err := service.ListByUsername(ctx, "owner")
	if err != nil {
		t.Fatalf("ListByUsername failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected inactive goal hidden from listing, got %d", len(listed))
	}
}

func TestTipMenuOwnership(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewTipMenuService(repo)

	owner := createTestAccount(t, db, "owner", 0)
	intruder := createTestAccount(t, db, "intruder", 0)

	ctx := context.Background()
	item, err := service.CreateItem(ctx, owner.ID, &models.CreateTipMenuItemRequest{Name: "shoutout", Tokens: 40})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	newTokens := int64(60)
	if _, err := service.UpdateItem(ctx, intruder.ID, item.ID, &models.UpdateTipMenuItemRequest{Tokens: &newTokens}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for foreign item, got %v", err)
	}
	if err := service.DeleteItem(ctx, intruder.ID, item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound deleting foreign item, got %v", err)
	}

	updated, err := service.UpdateItem(ctx, owner.ID, item.ID, &models.UpdateTipMenuItemRequest{Tokens: &newTokens})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.Tokens != 60 {
		t.Errorf("expected tokens 60, got %d", updated.Tokens)
	}

	items, err := service.ListByUsername(ctx, "owner")
	if err != nil {
		t.Fatalf("ListByUsername failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item listed, got %d", len(items))
	}

	if err := service.DeleteItem(ctx, owner.ID, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	items, _ = service.ListByUsername(ctx, "owner")
	if len(items) != 0 {
		t.Errorf("expected empty menu after delete, got %d", len(items))
	}
}
