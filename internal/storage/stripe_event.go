package storage

import (
	"context"
	"errors"
	"time"

	"github.com/s/courseStore/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordStripeEvent stores a verified webhook payload. When the event id is
// already known the existing row is returned with created=false.
func RecordStripeEvent(ctx context.Context, db *gorm.DB, eventID, eventType string, payload []byte) (*models.StripeEvent, bool, error) {
	db = db.WithContext(ctx)

	ev := models.StripeEvent{
		EventID: eventID,
		Type:    eventType,
		Payload: datatypes.JSON(payload),
	}
	err := db.Create(&ev).Error
	if err == nil {
		return &ev, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	var existing models.StripeEvent
	if err := db.Where("event_id = ?", eventID).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// MarkStripeEventProcessed sets processed_at only if it is still unset and
// reports whether this call claimed the event.
func MarkStripeEventProcessed(ctx context.Context, tx *gorm.DB, id uint, at time.Time) (bool, error) {
	result := tx.WithContext(ctx).Model(&models.StripeEvent{}).
		Where("id = ? AND processed_at IS NULL", id).
		Updates(map[string]interface{}{"processed_at": at, "processing_error": ""})
	return result.RowsAffected == 1, result.Error
}

func MarkStripeEventFailed(ctx context.Context, db *gorm.DB, id uint, reason string) error {
	return db.WithContext(ctx).Model(&models.StripeEvent{}).
		Where("id = ?", id).
		Update("processing_error", reason).Error
}
