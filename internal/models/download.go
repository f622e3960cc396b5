package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Download struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	FileURL     string `gorm:"not null" json:"fileUrl"`
	FileSize    string `json:"fileSize"`
	SortOrder   int    `gorm:"index;default:0" json:"sort_order"`
	IsActive    bool   `gorm:"index;default:true" json:"is_active"`
}

func (d *Download) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
