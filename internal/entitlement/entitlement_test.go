package entitlement

import (
	"context"
	"testing"

	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/testutil"
)

func TestHasAccess(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedCatalog(t, db, 49, "A", "B", "C")

	single := testutil.NewUser(t, db, "single@example.com")
	testutil.GrantPurchase(t, db, single.ID, "A")

	bundle := testutil.NewUser(t, db, "bundle@example.com")
	testutil.GrantPurchase(t, db, bundle.ID, models.BundleKey)

	pending := testutil.NewUser(t, db, "pending@example.com")
	p := testutil.GrantPurchase(t, db, pending.ID, "A")
	db.Model(&p).Update("status", models.PurchasePending)

	failedBundle := testutil.NewUser(t, db, "failed@example.com")
	fb := testutil.GrantPurchase(t, db, failedBundle.ID, models.BundleKey)
	db.Model(&fb).Update("status", models.PurchaseFailed)

	nobody := testutil.NewUser(t, db, "nobody@example.com")

	tests := []struct {
		name    string
		userID  string
		product string
		want    bool
	}{
		{"owned course", single.ID, "A", true},
		{"other course", single.ID, "B", false},
		{"bundle grants A", bundle.ID, "A", true},
		{"bundle grants C", bundle.ID, "C", true},
		{"bundle grants unknown product", bundle.ID, "Z", true},
		{"pending does not grant", pending.ID, "A", false},
		{"failed bundle does not grant", failedBundle.ID, "B", false},
		{"no purchases", nobody.ID, "A", false},
		{"anonymous", "", "A", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasAccess(ctx, db, tt.userID, tt.product)
			if err != nil {
				t.Fatalf("HasAccess: %v", err)
			}
			if got != tt.want {
				t.Fatalf("HasAccess(%s) = %v, want %v", tt.product, got, tt.want)
			}
		})
	}
}

func TestHasAccessBundleByKey(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	// A bundle product whose id is not the sentinel but whose key is.
	bundle := models.Product{ID: "bundle-2024", Key: models.BundleKey, Name: "Bundle", Price: 99, CourseType: models.CourseTypeBundle, IsActive: true}
	course := models.Product{ID: "A", Key: "A", Name: "A", Price: 10, IsActive: true}
	db.Create(&bundle)
	db.Create(&course)
	u := testutil.NewUser(t, db, "u@example.com")
	testutil.GrantPurchase(t, db, u.ID, bundle.ID)

	ok, err := HasAccess(ctx, db, u.ID, "A")
	if err != nil || !ok {
		t.Fatalf("HasAccess = %v, %v, want true", ok, err)
	}
}

func TestOwnedCourseIDs(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedCatalog(t, db, 49, "A", "B", "C")

	u := testutil.NewUser(t, db, "u@example.com")
	testutil.GrantPurchase(t, db, u.ID, "B")

	owned, err := OwnedCourseIDs(ctx, db, u.ID, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("OwnedCourseIDs: %v", err)
	}
	if len(owned) != 1 || !owned["B"] {
		t.Fatalf("owned = %v, want {B}", owned)
	}

	testutil.GrantPurchase(t, db, u.ID, models.BundleKey)
	owned, _ = OwnedCourseIDs(ctx, db, u.ID, []string{"A", "B", "C"})
	if len(owned) != 3 {
		t.Fatalf("owned = %v, want all three", owned)
	}
}
