package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
)

// Purchase is one row of the entitlement ledger.
type Purchase struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID          string  `gorm:"index;size:64;not null" json:"user_id"`
	ProductID       string  `gorm:"index;size:64;not null" json:"product_id"`
	StripeID        string  `gorm:"uniqueIndex;size:255;not null" json:"stripe_id"`
	PaymentIntentID string  `gorm:"index;size:255" json:"payment_intent_id,omitempty"`
	Amount          float64 `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	Status          string  `gorm:"index;size:16;not null;default:pending" json:"status"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
