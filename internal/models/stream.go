package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultKingTokens is the minimum trailing-window total required to become
// king of a room when the creator has not configured a threshold.
const DefaultKingTokens int64 = 100

// Stream holds per-creator settings. The tip and redemption engines only
// read it; mutations come from the creator's settings surface.
type Stream struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	UserID              uint                        `gorm:"uniqueIndex;not null" json:"user_id"`
	Name                string                      `json:"name"`
	IsLive              bool                        `gorm:"default:false" json:"is_live"`
	IsChatEnabled       bool                        `gorm:"default:true" json:"is_chat_enabled"`
	IsChatDelayed       bool                        `gorm:"default:false" json:"is_chat_delayed"`
	IsChatFollowersOnly bool                        `gorm:"default:false" json:"is_chat_followers_only"`
	PinnedMessage       string                      `json:"pinned_message"`
	StreamTopic         string                      `json:"stream_topic"`
	KingTokens          int64                       `gorm:"default:100" json:"king_tokens"`
	BlockedCountries    datatypes.JSONSlice[string] `json:"blocked_countries"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for Stream model
func (Stream) TableName() string {
	return "streams"
}

// KingThreshold returns the configured king threshold, falling back to the
// platform default when unset.
func (s *Stream) KingThreshold() int64 {
	if s.KingTokens <= 0 {
		return DefaultKingTokens
	}
	return s.KingTokens
}

// UpdateStreamRequest is the creator-facing settings patch. Pointer fields
// distinguish "not provided" from zero values.
type UpdateStreamRequest struct {
	Name                *string   `json:"name,omitempty"`
	IsChatEnabled       *bool     `json:"is_chat_enabled,omitempty"`
	IsChatDelayed       *bool     `json:"is_chat_delayed,omitempty"`
	IsChatFollowersOnly *bool     `json:"is_chat_followers_only,omitempty"`
	PinnedMessage       *string   `json:"pinned_message,omitempty"`
	StreamTopic         *string   `json:"stream_topic,omitempty"`
	KingTokens          *int64    `json:"king_tokens,omitempty"`
	BlockedCountries    *[]string `json:"blocked_countries,omitempty"`
}
