package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected IsProd to report true")
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("expected default sqlite driver, got %q", cfg.DB.Driver)
	}

	if !cfg.Cart.FreeDeliveryThreshold.Equal(decimal.RequireFromString("169.00")) {
		t.Fatalf("unexpected free delivery threshold %s", cfg.Cart.FreeDeliveryThreshold)
	}
	if !cfg.Cart.DeliveryFee.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("unexpected delivery fee %s", cfg.Cart.DeliveryFee)
	}

	if cfg.Validation.PostcodePrefix != "3" {
		t.Fatalf("expected default postcode prefix 3, got %q", cfg.Validation.PostcodePrefix)
	}

	if cfg.Checkout.Currency != "aud" {
		t.Fatalf("expected default currency aud, got %q", cfg.Checkout.Currency)
	}
}

func TestLoad_OverridesBusinessRules(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("DAWAT_CART_FREE_DELIVERY_THRESHOLD", "200")
	t.Setenv("DAWAT_VALIDATION_POSTCODE_PREFIX", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Cart.FreeDeliveryThreshold.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("threshold override not applied: %s", cfg.Cart.FreeDeliveryThreshold)
	}
	if cfg.Validation.PostcodePrefix != "2" {
		t.Fatalf("postcode prefix override not applied: %q", cfg.Validation.PostcodePrefix)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("DAWAT_APP_ENV"); err != nil {
		t.Fatalf("failed to unset DAWAT_APP_ENV: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DAWAT_APP_ENV", "prod")
	t.Setenv("DAWAT_APP_PORT", "3002")
	t.Setenv("DAWAT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DAWAT_STRIPE_API_KEY", "sk_test_123")
}
