package storage

import (
	"context"

	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

type Stats struct {
	Users              int64 `json:"users"`
	ActiveProducts     int64 `json:"active_products"`
	Buyers             int64 `json:"buyers"`
	CompletedPurchases int64 `json:"completed_purchases"`
	PendingQuotes      int64 `json:"pending_quotes"`
	FailedEvents       int64 `json:"failed_events"`
}

// LoadStats counts the figures shown on the admin overview.
func LoadStats(ctx context.Context, db *gorm.DB) (*Stats, error) {
	db = db.WithContext(ctx)
	var s Stats

	counts := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&s.Users, db.Model(&models.User{})},
		{&s.ActiveProducts, db.Model(&models.Product{}).Where("is_active = ?", true)},
		{&s.Buyers, db.Model(&models.Purchase{}).Where("status = ?", models.PurchaseCompleted).Distinct("user_id")},
		{&s.CompletedPurchases, db.Model(&models.Purchase{}).Where("status = ?", models.PurchaseCompleted)},
		{&s.PendingQuotes, db.Model(&models.ConsultantQuote{}).Where("status = ?", QuotePending)},
		{&s.FailedEvents, db.Model(&models.StripeEvent{}).Where("processing_error <> ?", "")},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
