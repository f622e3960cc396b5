package billing

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/testutil"
)

type fakeGateway struct {
	got SessionRequest
	err error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	g.got = req
	if g.err != nil {
		return nil, g.err
	}
	return &Session{ID: "cs_test", URL: "https://checkout.stripe.test/cs_test"}, nil
}

func itemIDs(items []LineItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func TestPlanBundleExcludesOwnedCourses(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedCatalog(t, db, 49, "A", "B", "C", "D", "E", "F")
	u := testutil.NewUser(t, db, "u@example.com")
	testutil.GrantPurchase(t, db, u.ID, "A")
	testutil.GrantPurchase(t, db, u.ID, "B")

	b := NewCheckoutBuilder(db, &fakeGateway{}, "aud", "http://app", nil, logger.Nop())
	plan, err := b.Plan(ctx, u.ID, models.BundleKey)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if got, want := itemIDs(plan.Items), []string{"C", "D", "E", "F"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("line items = %v, want %v", got, want)
	}
	for _, it := range plan.Items {
		if it.UnitAmount != 4900 || it.Quantity != 1 {
			t.Fatalf("item = %+v, want 4900 x1", it)
		}
	}
	md := plan.Metadata
	if !md.Bundle || len(md.AllCourseIDs) != 6 || !reflect.DeepEqual(md.NewCourseIDs, []string{"C", "D", "E", "F"}) {
		t.Fatalf("metadata = %+v", md)
	}
	if plan.Total() != 4*4900 {
		t.Fatalf("Total = %d, want %d", plan.Total(), 4*4900)
	}
}

func TestPlanBundleSkipsInactiveCourses(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedCatalog(t, db, 10, "A", "B")
	db.Model(&models.Product{}).Where("id = ?", "B").Update("is_active", false)
	u := testutil.NewUser(t, db, "u@example.com")

	plan, err := NewCheckoutBuilder(db, &fakeGateway{}, "aud", "", nil, logger.Nop()).Plan(context.Background(), u.ID, models.BundleKey)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := itemIDs(plan.Items); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("line items = %v, want [A]", got)
	}
}

func TestPlanConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedCatalog(t, db, 49, "A", "B")
	b := NewCheckoutBuilder(db, &fakeGateway{}, "aud", "", nil, logger.Nop())

	owner := testutil.NewUser(t, db, "owner@example.com")
	testutil.GrantPurchase(t, db, owner.ID, "A")
	if _, err := b.Plan(ctx, owner.ID, "A"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("owned course err = %v, want conflict", err)
	}

	all := testutil.NewUser(t, db, "all@example.com")
	testutil.GrantPurchase(t, db, all.ID, "A")
	testutil.GrantPurchase(t, db, all.ID, "B")
	if _, err := b.Plan(ctx, all.ID, models.BundleKey); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("complete collection err = %v, want conflict", err)
	}

	bundle := testutil.NewUser(t, db, "bundle@example.com")
	testutil.GrantPurchase(t, db, bundle.ID, models.BundleKey)
	if _, err := b.Plan(ctx, bundle.ID, "B"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("bundle owner err = %v, want conflict", err)
	}

	if _, err := b.Plan(ctx, owner.ID, "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("missing product err = %v, want not found", err)
	}
}

func TestCheckoutCreatesUserAndSession(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedCatalog(t, db, 29.99, "A")

	gw := &fakeGateway{}
	b := NewCheckoutBuilder(db, gw, "AUD", "http://app/", nil, logger.Nop())

	sess, err := b.Checkout(ctx, models.User{Email: "new@example.com", Name: "New"}, CheckoutRequest{ProductID: "A"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if sess.URL == "" {
		t.Fatalf("empty session url")
	}

	var user models.User
	if err := db.Where("email = ?", "new@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if gw.got.Currency != "aud" {
		t.Fatalf("Currency = %q, want aud", gw.got.Currency)
	}
	if len(gw.got.LineItems) != 1 || gw.got.LineItems[0].UnitAmount != 2999 {
		t.Fatalf("line items = %+v", gw.got.LineItems)
	}
	if gw.got.Metadata[MetaUserID] != user.ID || gw.got.Metadata[MetaProductID] != "A" {
		t.Fatalf("metadata = %v", gw.got.Metadata)
	}
	if _, ok := gw.got.Metadata[MetaAllCourseIDs]; ok {
		t.Fatalf("single purchase carries bundle metadata")
	}
	if gw.got.SuccessURL != "http://app/payment-success?session_id={CHECKOUT_SESSION_ID}" || gw.got.CancelURL != "http://app/payment-cancel" {
		t.Fatalf("urls = %q / %q", gw.got.SuccessURL, gw.got.CancelURL)
	}
}

func TestCheckoutErrors(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedCatalog(t, db, 10, "A")

	b := NewCheckoutBuilder(db, &fakeGateway{err: errors.New("card network down")}, "aud", "", nil, logger.Nop())
	if _, err := b.Checkout(ctx, models.User{}, CheckoutRequest{ProductID: "A"}); apperr.KindOf(err) != apperr.KindUnauthenticated {
		t.Fatalf("anonymous err = %v, want unauthenticated", err)
	}
	if _, err := b.Checkout(ctx, models.User{Email: "u@example.com"}, CheckoutRequest{ProductID: "A"}); apperr.KindOf(err) != apperr.KindProvider {
		t.Fatalf("gateway err = %v, want provider", err)
	}
}
