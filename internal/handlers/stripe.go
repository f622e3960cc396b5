package handlers

import (
	"io"
	"net/http"

	"github.com/s/courseStore/internal/billing"
)

// POST /api/stripe/checkout
func (h *Handler) CreateCheckoutAPI(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)

	var req billing.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Fail(w, r, err, "Failed to create checkout session")
		return
	}
	if req.ProductID == "" {
		JSONError(w, "Product ID required", http.StatusBadRequest)
		return
	}

	sess, err := h.Checkout.Checkout(r.Context(), *user, req)
	if err != nil {
		h.Fail(w, r, err, "Failed to create checkout session")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"url": sess.URL, "sessionId": sess.ID})
}

// POST /api/stripe/webhook
func (h *Handler) StripeWebhookAPI(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, billing.MaxWebhookBody+1))
	if err != nil {
		JSONError(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	if int64(len(payload)) > billing.MaxWebhookBody {
		JSONError(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	secret := h.Cfg.Stripe.WebhookSecret
	if secret == "" {
		h.Log.Error("stripe webhook secret is not configured")
		JSONError(w, "Webhook not configured", http.StatusInternalServerError)
		return
	}

	event, err := billing.VerifyEvent(payload, r.Header.Get("Stripe-Signature"), secret)
	if err != nil {
		h.Log.Warn("stripe webhook rejected", "error", err)
		JSONError(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	out, err := h.Reconciler.Handle(r.Context(), event, payload)
	if err != nil {
		h.Fail(w, r, err, "Webhook handler failed")
		return
	}

	resp := map[string]bool{"received": true}
	if out.Duplicate {
		resp["duplicate"] = true
	}
	WriteJSON(w, http.StatusOK, resp)
}
