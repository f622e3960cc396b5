package storage

import (
	"context"
	"errors"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

type LessonInput struct {
	ProductID        *string `json:"product_id"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Content          *string `json:"content"`
	VideoURL         *string `json:"video_url"`
	PracticeSheetURL *string `json:"practice_sheet_url"`
	Duration         *int    `json:"duration"`
	SortOrder        *int    `json:"sort_order"`
	IsActive         *bool   `json:"is_active"`
}

func (in LessonInput) Validate(creating bool) error {
	if creating && (in.ProductID == nil || *in.ProductID == "") {
		return apperr.Validation("product_id is required")
	}
	if creating && (in.Title == nil || *in.Title == "") {
		return apperr.Validation("Title is required")
	}
	if in.Title != nil && *in.Title == "" {
		return apperr.Validation("Title cannot be empty")
	}
	if in.Duration != nil && *in.Duration < 0 {
		return apperr.Validation("Duration must not be negative")
	}
	return nil
}

func (in LessonInput) apply(l *models.Lesson) {
	if in.ProductID != nil {
		l.ProductID = *in.ProductID
	}
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Content != nil {
		l.Content = *in.Content
	}
	if in.VideoURL != nil {
		l.VideoURL = *in.VideoURL
	}
	if in.PracticeSheetURL != nil {
		l.PracticeSheetURL = *in.PracticeSheetURL
	}
	if in.Duration != nil {
		l.Duration = *in.Duration
	}
	if in.SortOrder != nil {
		l.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		l.IsActive = *in.IsActive
	}
}

// ListLessons returns active lessons; productID may be empty for all products.
func ListLessons(ctx context.Context, db *gorm.DB, productID string) ([]models.Lesson, error) {
	q := db.WithContext(ctx).Where("is_active = ?", true)
	if productID != "" {
		q = q.Where("product_id = ?", productID)
	}

	lessons := []models.Lesson{}
	if err := q.Order("product_id asc").Order("sort_order asc").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// GetLesson returns an active lesson.
func GetLesson(ctx context.Context, db *gorm.DB, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Lesson not found")
		}
		return nil, err
	}
	return &lesson, nil
}

func CountActiveLessons(ctx context.Context, db *gorm.DB, productID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Lesson{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Count(&n).Error
	return n, err
}

func CreateLesson(ctx context.Context, db *gorm.DB, in LessonInput) (*models.Lesson, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)

	var owner models.Product
	if err := db.Select("id").First(&owner, "id = ?", *in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}

	lesson := models.Lesson{IsActive: true}
	in.apply(&lesson)
	active := lesson.IsActive
	if err := db.Create(&lesson).Error; err != nil {
		return nil, err
	}
	if !active {
		if err := db.Model(&lesson).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		lesson.IsActive = false
	}
	return &lesson, nil
}

func UpdateLesson(ctx context.Context, db *gorm.DB, id string, in LessonInput) (*models.Lesson, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Lesson not found")
		}
		return nil, err
	}
	in.apply(&lesson)

	if err := db.Save(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// DeactivateLesson soft-deletes a lesson; progress rows are kept.
func DeactivateLesson(ctx context.Context, db *gorm.DB, id string) error {
	result := db.WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Lesson not found")
	}
	return nil
}
