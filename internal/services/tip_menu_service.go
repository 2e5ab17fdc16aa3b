package services

import (
	"context"
	"errors"

	"livetokens/internal/models"
	"livetokens/internal/repository"

	"gorm.io/gorm"
)

type TipMenuService struct {
	repo *repository.Repository
}

func NewTipMenuService(repo *repository.Repository) *TipMenuService {
	return &TipMenuService{repo: repo}
}

// CreateItem adds a preset tip to the creator's menu
func (s *TipMenuService) CreateItem(ctx context.Context, userID uint, req *models.CreateTipMenuItemRequest) (*models.TipMenuItem, error) {
	if req.Name == "" || req.Tokens < 1 {
		return nil, ErrValidation
	}

	item := &models.TipMenuItem{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Tokens:      req.Tokens,
		IsActive:    true,
	}
	if err := s.repo.CreateTipMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem patches an item owned by the caller
func (s *TipMenuService) UpdateItem(ctx context.Context, userID, itemID uint, req *models.UpdateTipMenuItemRequest) (*models.TipMenuItem, error) {
	item, err := s.repo.GetTipMenuItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrItemNotFound
	}

	if req.Tokens != nil && *req.Tokens < 1 {
		return nil, ErrValidation
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Tokens != nil {
		item.Tokens = *req.Tokens
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateTipMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item owned by the caller
func (s *TipMenuService) DeleteItem(ctx context.Context, userID, itemID uint) error {
	deleted, err := s.repo.DeleteTipMenuItem(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	return nil
}

// ListByUsername returns a creator's active menu, publicly visible
func (s *TipMenuService) ListByUsername(ctx context.Context, username string) ([]models.TipMenuItem, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.repo.ListActiveTipMenuItems(ctx, account.ID)
}
