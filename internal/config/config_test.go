package config

import (
	"testing"
	"time"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is unset")
	}

	t.Setenv("JWT_SECRET", "too-short")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

func TestLoad_RejectsInvalidModes(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	t.Setenv("EMAIL_MODE", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid EMAIL_MODE")
	}
	t.Setenv("EMAIL_MODE", "mock")

	t.Setenv("RATE_LIMIT_STORE", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid RATE_LIMIT_STORE")
	}
}

func TestLoad_RateLimitDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("EMAIL_MODE", "")
	t.Setenv("RATE_LIMIT_STORE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name   string
		policy RatePolicy
		max    int
		window time.Duration
	}{
		{"auth", cfg.RateLimit.Auth, 5, 15 * time.Minute},
		{"general", cfg.RateLimit.General, 100, time.Minute},
		{"messaging", cfg.RateLimit.Messaging, 20, time.Minute},
	}
	for _, tc := range tests {
		if tc.policy.Max != tc.max || tc.policy.Window != tc.window {
			t.Errorf("%s policy = %d/%v, want %d/%v", tc.name, tc.policy.Max, tc.policy.Window, tc.max, tc.window)
		}
		if tc.policy.Message == "" {
			t.Errorf("%s policy has no client message", tc.name)
		}
	}
	if cfg.RateLimit.Disabled {
		t.Error("rate limiting disabled by default")
	}
	if cfg.RateLimit.Store != "memory" {
		t.Errorf("store = %q, want memory", cfg.RateLimit.Store)
	}
}

func TestAppConfig_Helpers(t *testing.T) {
	app := AppConfig{Host: "0.0.0.0", Port: "8080", Env: "development", RequestTimeoutSeconds: 30}
	if app.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr = %q", app.Addr())
	}
	if !app.IsDevelopment() {
		t.Error("development env not detected")
	}
	if app.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout = %v", app.RequestTimeout())
	}

	app.Env = "production"
	app.RequestTimeoutSeconds = 0
	if app.IsDevelopment() {
		t.Error("production env detected as development")
	}
	if app.RequestTimeout() != 0 {
		t.Errorf("RequestTimeout = %v, want 0", app.RequestTimeout())
	}
}
