package config

import (
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("SMTP_HOST", "")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.CookieSecure {
		t.Fatalf("expected insecure cookies by default")
	}
	if cfg.MailEnabled() {
		t.Fatalf("expected mail to be disabled without SMTP_HOST")
	}
}

func TestNewConfigRejectsBadTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	if _, err := NewConfig(); err == nil {
		t.Fatalf("expected error for invalid SESSION_TTL")
	}
}

func TestNewConfigRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SESSION_SECRET", "")
	if _, err := NewConfig(); err == nil {
		t.Fatalf("expected error for empty SESSION_SECRET")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	if got := cfg.NewLogger().GetLevel(); got.String() != "debug" {
		t.Fatalf("expected debug level, got %s", got)
	}
	cfg.LogLevel = "loud"
	if got := cfg.NewLogger().GetLevel(); got.String() != "info" {
		t.Fatalf("expected fallback to info, got %s", got)
	}
}

func TestNewConfigTimezone(t *testing.T) {
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("APP_TIMEZONE", "UTC")
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Location)
	}

	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := NewConfig(); err == nil {
		t.Fatalf("expected error for unknown APP_TIMEZONE")
	}
}
