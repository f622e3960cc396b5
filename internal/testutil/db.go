// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/s/courseStore/internal/database"
	"github.com/s/courseStore/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite database. A single connection
// keeps every statement on the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedCatalog inserts active individual courses with the given ids plus the
// bundle product, all priced at price.
func SeedCatalog(t testing.TB, db *gorm.DB, price float64, ids ...string) {
	t.Helper()
	for i, id := range ids {
		p := models.Product{ID: id, Key: id, Name: "Course " + id, Price: price, SortOrder: i + 1, CourseType: models.CourseTypeIndividual, IsActive: true}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("create product %s: %v", id, err)
		}
	}
	bundle := models.Product{ID: models.BundleKey, Key: models.BundleKey, Name: "Complete Bundle", Price: price * float64(len(ids)), SortOrder: 10, CourseType: models.CourseTypeBundle, IsActive: true}
	if err := db.Create(&bundle).Error; err != nil {
		t.Fatalf("create bundle: %v", err)
	}
}

// NewUser creates a user with the given email.
func NewUser(t testing.TB, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Name: email}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// GrantPurchase records a completed purchase.
func GrantPurchase(t testing.TB, db *gorm.DB, userID, productID string) models.Purchase {
	t.Helper()
	p := models.Purchase{UserID: userID, ProductID: productID, StripeID: "cs_seed_" + userID + "_" + productID, Status: models.PurchaseCompleted}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	return p
}
