package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgress is unique per (user, lesson).
type UserProgress struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID       string    `gorm:"size:64;not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID     string    `gorm:"size:64;not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	Completed    bool      `gorm:"not null;default:false" json:"completed"`
	Progress     int       `gorm:"not null;default:0" json:"progress"`
	TimeSpent    int       `gorm:"not null;default:0" json:"time_spent"` // minutes
	LastAccessed time.Time `json:"last_accessed"`

	Lesson *Lesson `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Achievement is awarded once per completed product.
type Achievement struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	UserID      string    `gorm:"size:64;not null;uniqueIndex:idx_user_product_achievement" json:"user_id"`
	ProductID   string    `gorm:"size:64;not null;uniqueIndex:idx_user_product_achievement" json:"product_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	EarnedAt    time.Time `json:"earned_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
