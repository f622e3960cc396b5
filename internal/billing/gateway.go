package billing

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

type LineItem struct {
	ProductID   string
	Name        string
	Description string
	UnitAmount  int64 // minor units
	Quantity    int64
}

type SessionRequest struct {
	UserID        string
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions with the payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}

type StripeGateway struct{}

// NewStripeGateway wires the Stripe API key.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ClientReferenceID:  stripe.String(req.UserID),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	for _, item := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}
