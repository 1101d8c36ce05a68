package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/movicare")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.PanicHoldSeconds != 3 {
		t.Errorf("expected default panic hold 3s, got %d", cfg.PanicHoldSeconds)
	}
	if cfg.SustainedCallSeconds != 45 {
		t.Errorf("expected default sustained call 45s, got %d", cfg.SustainedCallSeconds)
	}
}

func TestValidate_RequiresAuthSecretOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production", PanicHoldSeconds: 3, SustainedCallSeconds: 45}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AUTH_SECRET in production")
	}
	cfg.AuthSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Timing(t *testing.T) {
	cfg := &Config{Env: "development", PanicHoldSeconds: 0, SustainedCallSeconds: 45}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero hold threshold")
	}
}
