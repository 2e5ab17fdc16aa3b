package models

import (
	"time"
)

// Account holds a user's token balance. The balance is only ever mutated
// inside a service transaction; it never goes negative.
type Account struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"external_id"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	Balance    int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}
