package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
)

var errAlreadyProcessed = errors.New("stripe event already processed")

// Outcome describes what handling one webhook event did.
type Outcome struct {
	Duplicate bool
	Purchases int
	Updated   int64

	// Rejected is set when the payload can never be applied. The reason is
	// kept on the stored event and the delivery is still acknowledged.
	Rejected bool
	Reason   string
}

// Reconciler materializes purchase rows from verified Stripe events. Each
// event id is processed at most once and inside one transaction.
type Reconciler struct {
	db    *gorm.DB
	cache *entitlement.Cache
	log   *logger.Logger
	now   func() time.Time
}

func NewReconciler(db *gorm.DB, cache *entitlement.Cache, log *logger.Logger) *Reconciler {
	return &Reconciler{
		db:    db,
		cache: cache,
		log:   log.With("service", "WebhookReconciler"),
		now:   time.Now,
	}
}

func (r *Reconciler) Handle(ctx context.Context, event stripe.Event, payload []byte) (*Outcome, error) {
	// 1. Audit log, keyed by event id
	rec, _, err := storage.RecordStripeEvent(ctx, r.db, event.ID, string(event.Type), payload)
	if err != nil {
		return nil, apperr.Internal("Failed to record event", err)
	}
	if rec.ProcessedAt != nil {
		r.log.Info("duplicate stripe event", "event_id", event.ID, "type", event.Type)
		return &Outcome{Duplicate: true}, nil
	}

	// 2. Claim and materialize atomically
	out := &Outcome{}
	var touched []string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := storage.MarkStripeEventProcessed(ctx, tx, rec.ID, r.now())
		if err != nil {
			return err
		}
		if !claimed {
			return errAlreadyProcessed
		}
		touched, err = r.dispatch(ctx, tx, event, out)
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, errAlreadyProcessed), errors.Is(err, gorm.ErrDuplicatedKey):
		r.log.Info("duplicate stripe event", "event_id", event.ID, "type", event.Type)
		return &Outcome{Duplicate: true}, nil
	default:
		if merr := storage.MarkStripeEventFailed(ctx, r.db, rec.ID, err.Error()); merr != nil {
			r.log.Error("failed to record processing error", "event_id", event.ID, "error", merr)
		}
		if apperr.KindOf(err) == apperr.KindValidation {
			// redelivery cannot fix the payload
			r.log.Warn("stripe event rejected", "event_id", event.ID, "type", event.Type, "reason", err.Error())
			return &Outcome{Rejected: true, Reason: err.Error()}, nil
		}
		r.log.Error("stripe event processing failed", "event_id", event.ID, "type", event.Type, "error", err)
		return nil, apperr.Internal("Webhook processing failed", err)
	}

	// 3. Advisory cache is refreshed only after commit
	for _, userID := range touched {
		r.cache.Invalidate(ctx, userID)
	}
	return out, nil
}

func (r *Reconciler) dispatch(ctx context.Context, tx *gorm.DB, event stripe.Event, out *Outcome) ([]string, error) {
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, apperr.Validation("Invalid session payload")
		}
		return r.completeCheckout(ctx, tx, &sess, out)

	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, apperr.Validation("Invalid payment intent payload")
		}
		status := models.PurchaseCompleted
		if event.Type == "payment_intent.payment_failed" {
			status = models.PurchaseFailed
		}
		n, err := storage.SetPurchaseStatus(ctx, tx, pi.ID, status)
		if err != nil {
			return nil, err
		}
		out.Updated = n
		if n == 0 {
			r.log.Info("no purchase for payment intent yet", "payment_intent_id", pi.ID, "status", status)
			return nil, nil
		}

		var users []string
		if err := tx.Model(&models.Purchase{}).
			Where("stripe_id = ? OR payment_intent_id = ?", pi.ID, pi.ID).
			Distinct().
			Pluck("user_id", &users).Error; err != nil {
			return nil, err
		}
		return users, nil

	default:
		r.log.Debug("ignoring stripe event", "event_id", event.ID, "type", event.Type)
		return nil, nil
	}
}

func (r *Reconciler) completeCheckout(ctx context.Context, tx *gorm.DB, sess *stripe.CheckoutSession, out *Outcome) ([]string, error) {
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		r.log.Info("checkout session not paid yet", "session_id", sess.ID, "payment_status", sess.PaymentStatus)
		return nil, nil
	}

	md, err := ParseCheckoutMetadata(sess.Metadata)
	if err != nil {
		return nil, err
	}
	if _, err := storage.GetUser(ctx, tx, md.UserID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Validation("Session metadata references an unknown user")
		}
		return nil, err
	}
	if md.Bundle && !md.HasNewCourseIDs {
		r.log.Warn("bundle session without newCourseIds, recording bundle row only", "session_id", sess.ID)
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	rows := PurchasesForSession(sess.ID, paymentIntentID, sess.AmountTotal, md)
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	out.Purchases = len(rows)

	r.log.Info("purchases recorded",
		"session_id", sess.ID,
		"user_id", md.UserID,
		"product_id", md.ProductID,
		"rows", len(rows),
		"amount_total", sess.AmountTotal,
	)
	return []string{md.UserID}, nil
}

// PurchasesForSession builds the completed purchase rows for a paid session.
// Bundle sessions get one row per newly billed course, with amountTotal split
// exactly, plus one bundle row carrying the full amount.
func PurchasesForSession(sessionID, paymentIntentID string, amountTotal int64, md CheckoutMetadata) []models.Purchase {
	row := func(productID, stripeID string, cents int64) models.Purchase {
		return models.Purchase{
			UserID:          md.UserID,
			ProductID:       productID,
			StripeID:        stripeID,
			PaymentIntentID: paymentIntentID,
			Amount:          float64(cents) / 100,
			Status:          models.PurchaseCompleted,
		}
	}

	if !md.Bundle {
		return []models.Purchase{row(md.ProductID, sessionID, amountTotal)}
	}

	rows := make([]models.Purchase, 0, len(md.NewCourseIDs)+1)
	shares := SplitAmount(amountTotal, len(md.NewCourseIDs))
	for i, courseID := range md.NewCourseIDs {
		rows = append(rows, row(courseID, sessionID+"_"+courseID, shares[i]))
	}
	return append(rows, row(md.ProductID, sessionID, amountTotal))
}

// SplitAmount divides total minor units into n shares that sum to total.
// The remainder goes one unit at a time to the first shares.
func SplitAmount(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	shares := make([]int64, n)
	base := total / int64(n)
	rem := total % int64(n)
	for i := range shares {
		shares[i] = base
		if int64(i) < rem {
			shares[i]++
		}
	}
	return shares
}
