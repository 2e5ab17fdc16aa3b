package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Redemption statuses
const (
	RedemptionStatusPending   = "PENDING"
	RedemptionStatusCompleted = "COMPLETED"
	RedemptionStatusFailed    = "FAILED"
)

// Redemption is an append-only record of a token-to-currency payout. The
// Reference is generated once per redemption and reused as the provider
// idempotency key across retries.
type Redemption struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	TokensRedeemed int64           `gorm:"not null" json:"tokens_redeemed"`
	UsdAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"usd_amount"`
	Destination    string          `gorm:"not null" json:"destination"`
	Reference      string          `gorm:"uniqueIndex;not null" json:"reference"`
	ProviderBatchID *string        `json:"provider_batch_id,omitempty"`
	Status         string          `gorm:"default:'PENDING';index" json:"status"`
	FailureReason  *string         `json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Redemption model
func (Redemption) TableName() string {
	return "redemptions"
}

// RedeemRequest is the payload for POST /api/redemptions
type RedeemRequest struct {
	Destination string `json:"destination" binding:"required"`
	Tokens      int64  `json:"tokens" binding:"required"`
}
