package storage

import (
	"context"

	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

func ListAchievements(ctx context.Context, db *gorm.DB, userID string) ([]models.Achievement, error) {
	out := []models.Achievement{}
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at asc").Find(&out).Error
	return out, err
}
