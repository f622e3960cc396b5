package storage

import (
	"context"
	"errors"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductFilter struct {
	CourseType     string
	IncludeLessons bool
}

// ProductInput carries the admin-editable fields. Nil fields are left
// unchanged on update.
type ProductInput struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Price        *float64        `json:"price"`
	DisplayPrice *float64        `json:"display_price"`
	StripeID     *string         `json:"stripe_id"`
	SortOrder    *int            `json:"sort_order"`
	Key          *string         `json:"key"`
	CourseType   *string         `json:"course_type"`
	ContentData  *datatypes.JSON `json:"content_data"`
	IsActive     *bool           `json:"is_active"`
}

func (in ProductInput) Validate(creating bool) error {
	if creating && (in.Name == nil || *in.Name == "") {
		return apperr.Validation("Name is required")
	}
	if in.Name != nil && *in.Name == "" {
		return apperr.Validation("Name cannot be empty")
	}
	if creating && in.Price == nil {
		return apperr.Validation("Price is required")
	}
	if in.Price != nil && *in.Price < 0 {
		return apperr.Validation("Price must not be negative")
	}
	if in.CourseType != nil && *in.CourseType != models.CourseTypeIndividual && *in.CourseType != models.CourseTypeBundle {
		return apperr.Validation("Invalid course_type")
	}
	return nil
}

func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DisplayPrice != nil {
		p.DisplayPrice = in.DisplayPrice
	}
	if in.StripeID != nil {
		p.StripeID = *in.StripeID
	}
	if in.SortOrder != nil {
		p.SortOrder = *in.SortOrder
	}
	if in.Key != nil {
		p.Key = *in.Key
	}
	if in.CourseType != nil {
		p.CourseType = *in.CourseType
	}
	if in.ContentData != nil {
		p.ContentData = *in.ContentData
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func activeLessons(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("sort_order asc")
}

// ListProducts returns active products in catalog order.
func ListProducts(ctx context.Context, db *gorm.DB, f ProductFilter) ([]models.Product, error) {
	q := db.WithContext(ctx).Where("is_active = ?", true)
	if f.CourseType != "" {
		q = q.Where("course_type = ?", f.CourseType)
	}
	if f.IncludeLessons {
		q = q.Preload("Lessons", activeLessons)
	}

	products := []models.Product{}
	if err := q.Order("sort_order asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns an active product; inactive products are not found.
func GetProduct(ctx context.Context, db *gorm.DB, id string, includeLessons bool) (*models.Product, error) {
	q := db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true)
	if includeLessons {
		q = q.Preload("Lessons", activeLessons)
	}

	var product models.Product
	if err := q.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}
	return &product, nil
}

func GetProductByKey(ctx context.Context, db *gorm.DB, key string, includeLessons bool) (*models.Product, error) {
	q := db.WithContext(ctx).Where("key = ? AND is_active = ?", key, true)
	if includeLessons {
		q = q.Preload("Lessons", activeLessons)
	}

	var product models.Product
	if err := q.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}
	return &product, nil
}

// BundleCourses lists the individual courses the bundle expands to.
func BundleCourses(ctx context.Context, db *gorm.DB) ([]models.Product, error) {
	var courses []models.Product
	err := db.WithContext(ctx).
		Where("is_active = ? AND course_type = ? AND key <> ? AND id <> ?", true, models.CourseTypeIndividual, models.BundleKey, models.BundleKey).
		Order("sort_order asc").
		Find(&courses).Error
	return courses, err
}

func CreateProduct(ctx context.Context, db *gorm.DB, in ProductInput) (*models.Product, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	product := models.Product{CourseType: models.CourseTypeIndividual, IsActive: true}
	in.apply(&product)
	// Create skips the zero value and reads back the column default
	active := product.IsActive

	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Product already exists")
		}
		return nil, err
	}
	if !active {
		if err := db.WithContext(ctx).Model(&product).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		product.IsActive = false
	}
	return &product, nil
}

// UpdateProduct edits any product, active or not.
func UpdateProduct(ctx context.Context, db *gorm.DB, id string, in ProductInput) (*models.Product, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)

	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}
	in.apply(&product)

	if err := db.Save(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeactivateProduct soft-deletes a product. Purchases referencing it stay.
func DeactivateProduct(ctx context.Context, db *gorm.DB, id string) error {
	result := db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}
