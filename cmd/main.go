package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/s/courseStore/internal/auth"
	"github.com/s/courseStore/internal/billing"
	"github.com/s/courseStore/internal/config"
	"github.com/s/courseStore/internal/database"
	"github.com/s/courseStore/internal/email"
	"github.com/s/courseStore/internal/entitlement"
	"github.com/s/courseStore/internal/handlers"
	"github.com/s/courseStore/internal/logger"
	"github.com/s/courseStore/internal/server"
	"github.com/s/courseStore/internal/uploads"
)

func main() {
	// ---------------------------
	// 0. Configuration and logging
	// ---------------------------
	cfg, envLoaded := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !envLoaded {
		log.Warn("no .env file found, using process environment")
	}

	// ---------------------------
	// 1. Database
	// ---------------------------
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}

	// ---------------------------
	// 2. Migrations and catalog seed
	// ---------------------------
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("seed failed", "error", err)
	}

	// ---------------------------
	// 3. Google OAuth and sessions
	// ---------------------------
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" || cfg.Google.RedirectURL == "" {
		log.Warn("GOOGLE_* variables are not set, sign-in will fail")
	}
	oauthConfig := auth.InitGoogleOAuthConfig(cfg.Google)

	if cfg.Session.Key == "" {
		cfg.Session.Key = "super-secret-default-key"
		log.Warn("SESSION_KEY is not set, using the development default")
	}
	store := auth.NewSessionStore(cfg.Session)

	// ---------------------------
	// 4. Outside services (each optional)
	// ---------------------------
	ctx := context.Background()
	var deps handlers.Deps

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, checkout is disabled")
	} else {
		deps.Gateway = billing.NewStripeGateway(cfg.Stripe.SecretKey)
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET is not set, webhooks will be rejected")
	}

	if cfg.Redis.URL != "" {
		rdb, err := entitlement.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, entitlement cache disabled", "error", err)
		} else {
			deps.Redis = rdb
			defer rdb.Close()
		}
	}

	if cfg.Brevo.APIKey != "" {
		mailer, err := email.NewBrevoClient(cfg.Brevo, log)
		if err != nil {
			log.Warn("brevo client disabled", "error", err)
		} else {
			deps.Mailer = mailer
		}
	}

	if cfg.Uploads.Bucket != "" {
		gcs, err := uploads.NewGCSStore(ctx, cfg.Uploads.Bucket)
		if err != nil {
			log.Warn("gcs uploads disabled", "error", err)
		} else {
			deps.Files = gcs
			defer gcs.Close()
		}
	}

	// ---------------------------
	// 5. Handlers and routes
	// ---------------------------
	h := handlers.NewHandler(cfg, db, store, oauthConfig, log, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           server.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ---------------------------
	// 6. Serve until signalled
	// ---------------------------
	go func() {
		log.Info("server started", "addr", "http://localhost:"+cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
