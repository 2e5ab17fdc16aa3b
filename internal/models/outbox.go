package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outbox event statuses
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published asynchronously by the dispatcher, giving
// at-least-once delivery without coupling commit durability to the broker.
type OutboxEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Subject    string         `gorm:"not null" json:"subject"`
	Key        string         `gorm:"index" json:"key"`
	Payload    datatypes.JSON `gorm:"not null" json:"payload"`
	Status     string         `gorm:"default:'PENDING';index" json:"status"`
	RetryCount int            `gorm:"default:0" json:"retry_count"`
	CreatedAt  time.Time      `json:"created_at"`
	SentAt     *time.Time     `json:"sent_at,omitempty"`
}

// TableName specifies the table name for OutboxEvent model
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
