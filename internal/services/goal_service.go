package services

import (
	"context"
	"errors"

	"livetokens/internal/models"
	"livetokens/internal/repository"

	"gorm.io/gorm"
)

type GoalService struct {
	repo *repository.Repository
}

func NewGoalService(repo *repository.Repository) *GoalService {
	return &GoalService{repo: repo}
}

// CreateGoal adds a fundraising goal for the creator
func (s *GoalService) CreateGoal(ctx context.Context, userID uint, req *models.CreateGoalRequest) (*models.TokenGoal, error) {
	if req.Name == "" || req.TargetAmount < 1 {
		return nil, ErrValidation
	}

	goal := &models.TokenGoal{
		UserID:       userID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Theme:        req.Theme,
		Color:        req.Color,
		IsActive:     true,
	}
	if goal.Theme == "" {
		goal.Theme = "default"
	}
	if goal.Color == "" {
		goal.Color = "#1010f2"
	}

	if err := s.repo.CreateTokenGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// UpdateGoal patches a goal owned by the caller. Tips advance goals on their
// own; this surface is for manual corrections and retiring goals.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uint, req *models.UpdateGoalRequest) (*models.TokenGoal, error) {
	goal, err := s.repo.GetTokenGoal(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}

	if req.CurrentAmount != nil {
		if *req.CurrentAmount < 0 {
			return nil, ErrValidation
		}
		goal.CurrentAmount = *req.CurrentAmount
	}
	if req.IsCompleted != nil {
		goal.IsCompleted = *req.IsCompleted
	}
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateTokenGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// ListByUsername returns a creator's active goals, publicly visible
func (s *GoalService) ListByUsername(ctx context.Context, username string) ([]models.TokenGoal, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.repo.ListActiveTokenGoals(ctx, account.ID)
}
