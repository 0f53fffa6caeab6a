package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BOOKING_SESSION_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("SUBMIT_RATE_LIMIT", "")
	t.Setenv("SUBMIT_RATE_BURST", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BookingSessionTTL != 30*time.Minute {
		t.Fatalf("expected default session ttl, got %s", cfg.BookingSessionTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SubmitRateLimit != 1 || cfg.SubmitRateBurst != 5 {
		t.Fatalf("unexpected rate defaults %v/%d", cfg.SubmitRateLimit, cfg.SubmitRateBurst)
	}
	if cfg.IsProduction() {
		t.Fatalf("development should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("BOOKING_SESSION_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://swim.example.com, ,https://build.example.com")
	t.Setenv("SUBMIT_RATE_LIMIT", "0.5")
	t.Setenv("SUBMIT_RATE_BURST", "2")
	t.Setenv("LEAD_NOTIFY_EMAIL", "desk@example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("expected lowercased log format, got %s", cfg.LogFormat)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.BookingSessionTTL != 45*time.Minute {
		t.Fatalf("expected ttl override, got %s", cfg.BookingSessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://build.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SubmitRateLimit != 0.5 || cfg.SubmitRateBurst != 2 {
		t.Fatalf("unexpected rate override %v/%d", cfg.SubmitRateLimit, cfg.SubmitRateBurst)
	}
	if cfg.LeadNotifyEmail != "desk@example.com" {
		t.Fatalf("expected notify email override, got %s", cfg.LeadNotifyEmail)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BOOKING_SESSION_TTL", "soon")
	t.Setenv("SUBMIT_RATE_BURST", "many")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.BookingSessionTTL != 30*time.Minute {
		t.Fatalf("expected ttl fallback, got %s", cfg.BookingSessionTTL)
	}
	if cfg.SubmitRateBurst != 5 {
		t.Fatalf("expected burst fallback, got %d", cfg.SubmitRateBurst)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected tls fallback false")
	}
}
