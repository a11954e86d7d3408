package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTP_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Fatalf("expected default otp ttl, got %s", cfg.OTPTTL)
	}
	if cfg.UsersTable != "users" || cfg.SlotsTable != "doctor_slots" {
		t.Fatalf("expected default table names, got %s / %s", cfg.UsersTable, cfg.SlotsTable)
	}
	if !cfg.UseMemoryMailQueue {
		t.Fatalf("expected memory mail queue enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "sekrit")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("EMAIL_PROVIDER", "SES")
	t.Setenv("MAIL_WORKER_COUNT", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.JWTSecret != "sekrit" {
		t.Fatalf("expected jwt secret override, got %s", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected token ttl override, got %s", cfg.TokenTTL)
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected normalized email provider, got %s", cfg.EmailProvider)
	}
	if cfg.MailWorkerCount != 4 {
		t.Fatalf("expected worker count override, got %d", cfg.MailWorkerCount)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed origin list, got %v", cfg.CORSAllowedOrigins)
	}
}
