package billing

import (
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// MaxWebhookBody bounds the payload read from the provider.
const MaxWebhookBody = int64(65536)

// VerifyEvent checks the Stripe-Signature header against the raw payload.
func VerifyEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		secret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
}
