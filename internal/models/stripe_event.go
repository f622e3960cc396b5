package models

import (
	"time"

	"gorm.io/datatypes"
)

// StripeEvent stores every verified webhook payload. EventID is the
// idempotency key for processing.
type StripeEvent struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EventID         string         `gorm:"uniqueIndex;size:255;not null" json:"event_id"`
	Type            string         `gorm:"index;size:100;not null" json:"type"`
	Payload         datatypes.JSON `json:"payload"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	ProcessingError string         `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
