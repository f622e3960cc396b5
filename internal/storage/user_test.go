package storage_test

import (
	"context"
	"testing"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
	"github.com/s/courseStore/internal/testutil"
)

func TestEnsureUserCreatesOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	first, err := storage.EnsureUser(ctx, db, models.User{Email: " Ann@Example.com ", Name: "Ann"}, nil)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if first.Email != "ann@example.com" {
		t.Fatalf("Email = %q, want lower-cased", first.Email)
	}
	if first.RoleID != models.RoleUser {
		t.Fatalf("RoleID = %d, want %d", first.RoleID, models.RoleUser)
	}

	second, err := storage.EnsureUser(ctx, db, models.User{Email: "ann@example.com", Image: "https://img/ann.png"}, nil)
	if err != nil {
		t.Fatalf("EnsureUser again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("ID = %s, want %s", second.ID, first.ID)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("users = %d, want 1", count)
	}

	reloaded, err := storage.GetUser(ctx, db, first.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if reloaded.Name != "Ann" || reloaded.Image != "https://img/ann.png" {
		t.Fatalf("profile = %q/%q", reloaded.Name, reloaded.Image)
	}
}

func TestEnsureUserPromotesAdmins(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.NewUser(t, db, "boss@example.com")

	u, err := storage.EnsureUser(ctx, db, models.User{Email: "boss@example.com"}, []string{"boss@example.com"})
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	reloaded, _ := storage.GetUser(ctx, db, u.ID)
	if !reloaded.IsAdmin() {
		t.Fatalf("RoleID = %d, want admin", reloaded.RoleID)
	}
}

func TestEnsureUserRequiresEmail(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := storage.EnsureUser(context.Background(), db, models.User{Name: "nobody"}, nil)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}
