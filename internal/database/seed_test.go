package database_test

import (
	"testing"

	"github.com/s/courseStore/internal/database"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/testutil"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	for i := 0; i < 2; i++ {
		if err := database.Seed(db); err != nil {
			t.Fatalf("Seed #%d: %v", i+1, err)
		}
	}

	var products int64
	db.Model(&models.Product{}).Count(&products)
	if products != 7 {
		t.Fatalf("products = %d, want 7", products)
	}

	var bundle models.Product
	if err := db.First(&bundle, "id = ?", models.BundleKey).Error; err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if !bundle.IsBundle() || bundle.CourseType != models.CourseTypeBundle {
		t.Fatalf("bundle = %+v", bundle)
	}
	if bundle.UnitAmount() != 19900 {
		t.Fatalf("bundle.UnitAmount() = %d, want 19900", bundle.UnitAmount())
	}

	var roles int64
	db.Model(&models.Role{}).Count(&roles)
	if roles != 2 {
		t.Fatalf("roles = %d, want 2", roles)
	}
}
