package models

import (
	"time"

	"github.com/google/uuid"
)

// Tip is an immutable ledger entry for a single token transfer. Rows are
// never updated or deleted; all rolling-window aggregation is computed from
// this table.
type Tip struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID    uint      `gorm:"index:idx_tips_window,priority:1;not null" json:"stream_id"`
	SenderID    uint      `gorm:"index:idx_tips_window,priority:2;not null" json:"sender_id"`
	RecipientID uint      `gorm:"index;not null" json:"recipient_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	ItemLabel   *string   `json:"item_label,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_tips_window,priority:3" json:"created_at"`
}

// TableName specifies the table name for Tip model
func (Tip) TableName() string {
	return "tips"
}

// KingOfRoom is the current king for a stream. It is derived from the tip
// ledger on every qualifying tip; CreatedAt marks the reign start and doubles
// as the staleness marker once it falls out of the trailing window.
type KingOfRoom struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StreamID    uint      `gorm:"uniqueIndex;not null" json:"stream_id"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	TotalTokens int64     `gorm:"not null" json:"total_tokens"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for KingOfRoom model
func (KingOfRoom) TableName() string {
	return "king_of_rooms"
}

// SendTipRequest is the payload for POST /api/tips. Either Amount or ItemID
// must be set; when ItemID is present the amount comes from the menu item.
type SendTipRequest struct {
	RecipientID uint  `json:"recipient_id" binding:"required"`
	Amount      int64 `json:"amount"`
	ItemID      *uint `json:"item_id,omitempty"`
}

// TipCompletedEvent is the fire-and-forget notification emitted after a tip
// commits, consumed by chat broadcast and toy-trigger collaborators.
type TipCompletedEvent struct {
	StreamID      uint      `json:"stream_id"`
	SenderName    string    `json:"sender_name"`
	RecipientName string    `json:"recipient_name"`
	Amount        int64     `json:"amount"`
	ItemLabel     *string   `json:"item_label,omitempty"`
	TippedAt      time.Time `json:"tipped_at"`
}
