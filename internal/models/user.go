package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email             string                      `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name              string                      `json:"name"`
	Image             string                      `json:"image"`
	RoleID            uint                        `gorm:"default:1" json:"role_id"`
	Points            int                         `gorm:"not null;default:0" json:"points"`
	CompletedProducts datatypes.JSONSlice[string] `json:"completed_products"`

	Role         Role           `json:"-" gorm:"foreignKey:RoleID"`
	Purchases    []Purchase     `json:"purchases,omitempty" gorm:"foreignKey:UserID"`
	Progress     []UserProgress `json:"-" gorm:"foreignKey:UserID"`
	Achievements []Achievement  `json:"achievements,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.RoleID == 0 {
		u.RoleID = RoleUser
	}
	if u.CompletedProducts == nil {
		u.CompletedProducts = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (u User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// HasCompleted reports whether productID is already in the completed list.
func (u User) HasCompleted(productID string) bool {
	for _, id := range u.CompletedProducts {
		if id == productID {
			return true
		}
	}
	return false
}
