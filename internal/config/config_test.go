package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STRIPE_CURRENCY", "")
	t.Setenv("ENTITLEMENT_CACHE_TTL_SECONDS", "")
	t.Setenv("ADMIN_EMAILS", "")

	cfg, _ := Load()
	if cfg.HTTP.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.Stripe.Currency != "aud" {
		t.Fatalf("Currency = %q, want aud", cfg.Stripe.Currency)
	}
	if cfg.Redis.TTL != 5*time.Minute {
		t.Fatalf("Redis.TTL = %v, want 5m", cfg.Redis.TTL)
	}
	if cfg.Uploads.MaxBytes != 50*1024*1024 {
		t.Fatalf("Uploads.MaxBytes = %d, want 50MiB", cfg.Uploads.MaxBytes)
	}
	if len(cfg.AdminEmails) != 0 {
		t.Fatalf("AdminEmails = %v, want empty", cfg.AdminEmails)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_URL", "https://courses.example.com/")
	t.Setenv("STRIPE_CURRENCY", "USD")
	t.Setenv("DB_CONNECT_ATTEMPTS", "not-a-number")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("ADMIN_EMAILS", " Admin@Example.com, ,ops@example.com")

	cfg, _ := Load()
	if cfg.HTTP.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.HTTP.Port)
	}
	if cfg.HTTP.AppURL != "https://courses.example.com" {
		t.Fatalf("AppURL = %q, want trailing slash trimmed", cfg.HTTP.AppURL)
	}
	if cfg.Stripe.Currency != "usd" {
		t.Fatalf("Currency = %q, want usd", cfg.Stripe.Currency)
	}
	if cfg.DB.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want fallback 5", cfg.DB.MaxAttempts)
	}
	if !cfg.Session.Secure {
		t.Fatalf("Session.Secure = false, want true")
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "admin@example.com" || cfg.AdminEmails[1] != "ops@example.com" {
		t.Fatalf("AdminEmails = %v", cfg.AdminEmails)
	}
}
