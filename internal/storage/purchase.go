package storage

import (
	"context"

	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

// CompletedProductIDs lists the distinct products the user holds a
// completed purchase for.
func CompletedProductIDs(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	ids := []string{}
	err := db.WithContext(ctx).Model(&models.Purchase{}).
		Where("user_id = ? AND status = ?", userID, models.PurchaseCompleted).
		Distinct().
		Order("product_id").
		Pluck("product_id", &ids).Error
	return ids, err
}

func ListPurchases(ctx context.Context, db *gorm.DB, userID string) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	err := db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&purchases).Error
	return purchases, err
}

// SetPurchaseStatus updates every purchase whose stripe_id or
// payment_intent_id equals ref. Zero rows is not an error.
func SetPurchaseStatus(ctx context.Context, db *gorm.DB, ref, status string) (int64, error) {
	result := db.WithContext(ctx).Model(&models.Purchase{}).
		Where("stripe_id = ? OR payment_intent_id = ?", ref, ref).
		Update("status", status)
	return result.RowsAffected, result.Error
}
