package database

import (
	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Product{},
		&models.Lesson{},
		&models.Purchase{},
		&models.UserProgress{},
		&models.Achievement{},
		&models.StripeEvent{},
		&models.Download{},
		&models.ConsultantQuote{},
	)
}
