package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP        HTTPConfig
	DB          DBConfig
	Session     SessionConfig
	Google      GoogleConfig
	Stripe      StripeConfig
	Redis       RedisConfig
	Brevo       BrevoConfig
	Uploads     UploadsConfig
	Log         LogConfig
	AdminEmails []string
}

type HTTPConfig struct {
	Port          string
	AppURL        string
	AllowedOrigin string
}

type DBConfig struct {
	URL         string
	Driver      string // "pgx" or "postgres" (lib/pq)
	MaxAttempts int
}

type SessionConfig struct {
	Key    string
	Secure bool
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type RedisConfig struct {
	URL string
	TTL time.Duration
}

type BrevoConfig struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	AdminEmail  string
}

type UploadsConfig struct {
	Bucket   string
	MaxBytes int64
}

type LogConfig struct {
	Mode string
}

// Load reads .env (if present) and then the process environment.
// The returned bool is false when no .env file was found.
func Load() (*Config, bool) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:          str("PORT", "8080"),
			AppURL:        strings.TrimRight(str("APP_URL", "http://localhost:3000"), "/"),
			AllowedOrigin: str("CORS_ALLOWED_ORIGIN", "*"),
		},
		DB: DBConfig{
			URL:         str("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=courses port=5432 sslmode=disable"),
			Driver:      str("DB_DRIVER", "pgx"),
			MaxAttempts: integer("DB_CONNECT_ATTEMPTS", 5),
		},
		Session: SessionConfig{
			Key:    str("SESSION_KEY", ""),
			Secure: boolean("SESSION_SECURE", false),
		},
		Google: GoogleConfig{
			ClientID:     str("GOOGLE_CLIENT_ID", ""),
			ClientSecret: str("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  str("GOOGLE_REDIRECT_URL", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     str("STRIPE_SECRET_KEY", ""),
			WebhookSecret: str("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      strings.ToLower(str("STRIPE_CURRENCY", "aud")),
		},
		Redis: RedisConfig{
			URL: str("REDIS_URL", ""),
			TTL: time.Duration(integer("ENTITLEMENT_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Brevo: BrevoConfig{
			APIKey:      str("BREVO_API_KEY", ""),
			SenderEmail: str("BREVO_SENDER_EMAIL", ""),
			SenderName:  str("BREVO_SENDER_NAME", "The Numbers Toolkit"),
			AdminEmail:  str("ADMIN_EMAIL", ""),
		},
		Uploads: UploadsConfig{
			Bucket:   str("UPLOADS_GCS_BUCKET", ""),
			MaxBytes: int64(integer("UPLOADS_MAX_BYTES", 50*1024*1024)),
		},
		Log: LogConfig{
			Mode: str("LOG_MODE", "dev"),
		},
		AdminEmails: list("ADMIN_EMAILS"),
	}

	return cfg, loaded
}

func str(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func boolean(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func list(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
