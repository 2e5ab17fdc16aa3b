package models

import (
	"time"
)

// TokenGoal is a creator fundraising goal. Active goals advance inside the
// tip transaction, so progress can never drift from the ledger.
type TokenGoal struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"not null" json:"name"`
	TargetAmount  int64     `gorm:"not null" json:"target_amount"`
	CurrentAmount int64     `gorm:"default:0" json:"current_amount"`
	Theme         string    `gorm:"default:'default'" json:"theme"`
	Color         string    `gorm:"default:'#1010f2'" json:"color"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	IsCompleted   bool      `gorm:"default:false" json:"is_completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for TokenGoal model
func (TokenGoal) TableName() string {
	return "token_goals"
}

// CreateGoalRequest is the payload for POST /api/goals
type CreateGoalRequest struct {
	Name         string `json:"name" binding:"required"`
	TargetAmount int64  `json:"target_amount" binding:"required,gte=1"`
	Theme        string `json:"theme"`
	Color        string `json:"color"`
}

// UpdateGoalRequest is the payload for PATCH /api/goals/:id
type UpdateGoalRequest struct {
	CurrentAmount *int64 `json:"current_amount,omitempty"`
	IsCompleted   *bool  `json:"is_completed,omitempty"`
	IsActive      *bool  `json:"is_active,omitempty"`
}
