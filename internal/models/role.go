package models

type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

// Role ids used across the application.
const (
	RoleGuest uint = 0
	RoleUser  uint = 1
	RoleAdmin uint = 2
)
