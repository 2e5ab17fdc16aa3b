package models

import (
	"time"
)

// TipMenuItem is a creator-defined preset tip (name + token price) shown in
// the room's tip menu. Tips may reference an item, in which case the item's
// name flows into the tip event as the label.
type TipMenuItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Tokens      int64     `gorm:"not null" json:"tokens"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for TipMenuItem model
func (TipMenuItem) TableName() string {
	return "tip_menu_items"
}

// CreateTipMenuItemRequest is the payload for POST /api/tip-menu
type CreateTipMenuItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Tokens      int64  `json:"tokens" binding:"required,gte=1"`
}

// UpdateTipMenuItemRequest is the payload for PATCH /api/tip-menu/:id
type UpdateTipMenuItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Tokens      *int64  `json:"tokens,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
