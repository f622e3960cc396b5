// Package entitlement answers "does this user own product P" from the
// purchase ledger.
package entitlement

import (
	"context"

	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
	"gorm.io/gorm"
)

// HasAccess is true iff the user holds a completed purchase for productID or
// for the bundle sentinel. It always reads the purchases table.
func HasAccess(ctx context.Context, db *gorm.DB, userID, productID string) (bool, error) {
	if userID == "" || productID == "" {
		return false, nil
	}

	var n int64
	err := db.WithContext(ctx).Table("purchases").
		Joins("LEFT JOIN products ON products.id = purchases.product_id").
		Where("purchases.user_id = ? AND purchases.status = ?", userID, models.PurchaseCompleted).
		Where("(purchases.product_id = ? OR purchases.product_id = ? OR products.key = ?)", productID, models.BundleKey, models.BundleKey).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasLessonAccess resolves the lesson's product and checks it.
func HasLessonAccess(ctx context.Context, db *gorm.DB, userID string, lesson *models.Lesson) (bool, error) {
	return HasAccess(ctx, db, userID, lesson.ProductID)
}

// OwnedProductIDs lists product ids with a completed purchase.
func OwnedProductIDs(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	return storage.CompletedProductIDs(ctx, db, userID)
}

// OwnedCourseIDs expands ownership to individual course ids: a bundle
// owner owns every id in courseIDs.
func OwnedCourseIDs(ctx context.Context, db *gorm.DB, userID string, courseIDs []string) (map[string]bool, error) {
	owned, err := OwnedProductIDs(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	bundle, err := HasAccess(ctx, db, userID, models.BundleKey)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(owned))
	for _, id := range owned {
		set[id] = true
	}

	out := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		if bundle || set[id] {
			out[id] = true
		}
	}
	return out, nil
}
