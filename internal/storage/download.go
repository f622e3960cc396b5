package storage

import (
	"context"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

type DownloadInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"fileUrl"`
	FileSize    string `json:"fileSize"`
	SortOrder   int    `json:"sort_order"`
}

func ListDownloads(ctx context.Context, db *gorm.DB) ([]models.Download, error) {
	downloads := []models.Download{}
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order asc").
		Find(&downloads).Error
	return downloads, err
}

func CreateDownload(ctx context.Context, db *gorm.DB, in DownloadInput) (*models.Download, error) {
	if in.Title == "" {
		return nil, apperr.Validation("Title is required")
	}
	if in.FileURL == "" {
		return nil, apperr.Validation("fileUrl is required")
	}

	d := models.Download{
		Title:       in.Title,
		Description: in.Description,
		FileURL:     in.FileURL,
		FileSize:    in.FileSize,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	}
	if err := db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
