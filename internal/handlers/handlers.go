// Package handlers serves the JSON API of the course store.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/auth"
	"github.com/s/courseStore/internal/billing"
	"github.com/s/courseStore/internal/config"
	"github.com/s/courseStore/internal/email"
	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/progress"
	"github.com/s/courseStore/internal/uploads"
)

type Handler struct {
	DB         *gorm.DB
	Store      sessions.Store
	Config     *oauth2.Config
	Cfg        *config.Config
	Log        *logger.Logger
	Cache      *entitlement.Cache
	Checkout   *billing.CheckoutBuilder
	Reconciler *billing.Reconciler
	Tracker    *progress.Tracker
	Mailer     email.Sender
	Uploads    *uploads.Uploader
}

// Deps are the optional outside services. Nil members disable the feature
// that needs them.
type Deps struct {
	Gateway billing.Gateway
	Redis   *redis.Client
	Mailer  email.Sender
	Files   uploads.Store
}

func NewHandler(cfg *config.Config, db *gorm.DB, store sessions.Store, oauthConfig *oauth2.Config, log *logger.Logger, deps Deps) *Handler {
	cache := entitlement.NewCache(deps.Redis, db, cfg.Redis.TTL, log)

	return &Handler{
		DB:         db,
		Store:      store,
		Config:     oauthConfig,
		Cfg:        cfg,
		Log:        log,
		Cache:      cache,
		Checkout:   billing.NewCheckoutBuilder(db, deps.Gateway, cfg.Stripe.Currency, cfg.HTTP.AppURL, cfg.AdminEmails, log),
		Reconciler: billing.NewReconciler(db, cache, log),
		Tracker:    progress.NewTracker(db, log),
		Mailer:     deps.Mailer,
		Uploads:    uploads.NewUploader(deps.Files, cfg.Uploads.MaxBytes, log),
	}
}

// CurrentUser is the user resolved by the auth middleware.
func CurrentUser(r *http.Request) (*models.User, bool) {
	return auth.UserFrom(r.Context())
}

func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func JSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// Fail maps err to its status and a client-safe message. Server-side
// failures are logged with the underlying cause.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := apperr.StatusOf(err)
	if code >= http.StatusInternalServerError {
		h.Log.Error(fallback, "method", r.Method, "path", r.URL.Path, "error", err)
	}
	JSONError(w, apperr.PublicMessage(err, fallback), code)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid JSON payload")
	}
	return nil
}

// HealthAPI reports whether the database answers a ping.
func (h *Handler) HealthAPI(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		h.Log.Warn("health check failed", "error", err)
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
