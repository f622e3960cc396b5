package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/models"
	"gorm.io/gorm"
)

func isAdminEmail(email string, adminEmails []string) bool {
	for _, a := range adminEmails {
		if a == email {
			return true
		}
	}
	return false
}

// EnsureUser finds a user by email; if found, it refreshes the profile,
// otherwise it creates one. Emails listed in adminEmails get the admin role.
func EnsureUser(ctx context.Context, db *gorm.DB, info models.User, adminEmails []string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return nil, apperr.Validation("Email is required")
	}
	db = db.WithContext(ctx)
	admin := isAdminEmail(email, adminEmails)

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error

	switch {
	case err == nil:
		// 1. Known user: refresh profile fields the identity provider sent
		updates := map[string]interface{}{}
		if info.Name != "" && info.Name != existing.Name {
			updates["name"] = info.Name
		}
		if info.Image != "" && info.Image != existing.Image {
			updates["image"] = info.Image
		}
		if admin && existing.RoleID != models.RoleAdmin {
			updates["role_id"] = models.RoleAdmin
		}
		if len(updates) > 0 {
			if err := db.Model(&existing).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return &existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		// 2. New user
		user := models.User{
			Email:  email,
			Name:   info.Name,
			Image:  info.Image,
			RoleID: models.RoleUser,
		}
		if admin {
			user.RoleID = models.RoleAdmin
		}
		if err := db.Create(&user).Error; err != nil {
			// 3. Lost a race with a concurrent sign-in for the same email
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if err := db.Where("email = ?", email).First(&existing).Error; err != nil {
					return nil, err
				}
				return &existing, nil
			}
			return nil, err
		}
		return &user, nil

	default:
		return nil, err
	}
}

func GetUser(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the user-editable profile fields only.
func UpdateProfile(ctx context.Context, db *gorm.DB, id, name, image string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if image != "" {
		updates["image"] = image
	}
	if len(updates) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}
