// Package billing builds checkout sessions and reconciles payment webhooks
// into the purchase ledger.
package billing

import (
	"context"
	"strings"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
	"gorm.io/gorm"
)

// Plan is what a checkout session will charge.
type Plan struct {
	Product  models.Product
	Items    []LineItem
	Metadata CheckoutMetadata
}

func (p Plan) Total() int64 {
	var total int64
	for _, it := range p.Items {
		total += it.UnitAmount * it.Quantity
	}
	return total
}

type CheckoutRequest struct {
	ProductID  string `json:"productId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type CheckoutBuilder struct {
	db          *gorm.DB
	gateway     Gateway
	currency    string
	appURL      string
	adminEmails []string
	log         *logger.Logger
}

func NewCheckoutBuilder(db *gorm.DB, gateway Gateway, currency, appURL string, adminEmails []string, log *logger.Logger) *CheckoutBuilder {
	return &CheckoutBuilder{
		db:          db,
		gateway:     gateway,
		currency:    strings.ToLower(currency),
		appURL:      strings.TrimRight(appURL, "/"),
		adminEmails: adminEmails,
		log:         log.With("service", "CheckoutBuilder"),
	}
}

func (b *CheckoutBuilder) findProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := storage.GetProduct(ctx, b.db, id, false)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return storage.GetProductByKey(ctx, b.db, id, false)
	}
	return p, err
}

// Plan computes the line items for productID. Bundle purchases charge only
// for the courses the user does not own yet.
func (b *CheckoutBuilder) Plan(ctx context.Context, userID, productID string) (*Plan, error) {
	if productID == "" {
		return nil, apperr.Validation("Product ID is required")
	}
	product, err := b.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.IsBundle() {
		return b.planBundle(ctx, userID, product)
	}

	owned, err := entitlement.HasAccess(ctx, b.db, userID, product.ID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, apperr.Conflict("You already own this course")
	}
	if product.UnitAmount() <= 0 {
		return nil, apperr.Validation("Product has no price")
	}

	return &Plan{
		Product: *product,
		Items: []LineItem{{
			ProductID:   product.ID,
			Name:        product.Name,
			Description: product.Description,
			UnitAmount:  product.UnitAmount(),
			Quantity:    1,
		}},
		Metadata: CheckoutMetadata{UserID: userID, ProductID: product.ID},
	}, nil
}

func (b *CheckoutBuilder) planBundle(ctx context.Context, userID string, bundle *models.Product) (*Plan, error) {
	// 1. Every course the bundle expands to
	courses, err := storage.BundleCourses(ctx, b.db)
	if err != nil {
		return nil, err
	}
	allIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		allIDs = append(allIDs, c.ID)
	}

	// 2. Minus what the user already owns
	owned, err := entitlement.OwnedCourseIDs(ctx, b.db, userID, allIDs)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Product: *bundle}
	newIDs := []string{}
	for _, c := range courses {
		if owned[c.ID] {
			continue
		}
		newIDs = append(newIDs, c.ID)
		plan.Items = append(plan.Items, LineItem{
			ProductID:   c.ID,
			Name:        c.Name,
			Description: c.Description,
			UnitAmount:  c.UnitAmount(),
			Quantity:    1,
		})
	}
	if len(plan.Items) == 0 {
		return nil, apperr.Conflict("You already own every course in the bundle")
	}

	plan.Metadata = CheckoutMetadata{
		UserID:          userID,
		ProductID:       bundle.ID,
		Bundle:          true,
		AllCourseIDs:    allIDs,
		NewCourseIDs:    newIDs,
		HasNewCourseIDs: true,
	}
	return plan, nil
}

// Checkout ensures the user row exists, plans the purchase and opens a
// hosted checkout session.
func (b *CheckoutBuilder) Checkout(ctx context.Context, identity models.User, req CheckoutRequest) (*Session, error) {
	if identity.Email == "" {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	if b.gateway == nil {
		return nil, apperr.Internal("Payments are not configured", nil)
	}

	user, err := storage.EnsureUser(ctx, b.db, identity, b.adminEmails)
	if err != nil {
		return nil, err
	}

	plan, err := b.Plan(ctx, user.ID, req.ProductID)
	if err != nil {
		return nil, err
	}

	md, err := plan.Metadata.Encode()
	if err != nil {
		return nil, apperr.Internal("Failed to encode checkout metadata", err)
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = b.appURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = b.appURL + "/payment-cancel"
	}

	sess, err := b.gateway.CreateCheckoutSession(ctx, SessionRequest{
		UserID:        user.ID,
		CustomerEmail: user.Email,
		Currency:      b.currency,
		LineItems:     plan.Items,
		Metadata:      md,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		b.log.Error("checkout session failed", "user_id", user.ID, "product_id", plan.Product.ID, "error", err)
		return nil, apperr.Provider("Failed to create checkout session", err)
	}

	b.log.Info("checkout session created",
		"user_id", user.ID,
		"product_id", plan.Product.ID,
		"session_id", sess.ID,
		"items", len(plan.Items),
		"amount", plan.Total(),
	)
	return sess, nil
}
