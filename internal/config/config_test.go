package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.AddConfigPath(t.TempDir())
	v.SetConfigName("missing")

	cfg, err := load(v)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Store.ComboPrice != "99.00" || !cfg.Store.PickupEnabled {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if len(cfg.Stripe.PaymentMethodTypes) != 1 || cfg.Stripe.PaymentMethodTypes[0] != "card" {
		t.Fatalf("unexpected payment method types: %v", cfg.Stripe.PaymentMethodTypes)
	}
	if cfg.Redis.SettingsTTL() != 5*time.Minute {
		t.Fatalf("unexpected settings ttl: %s", cfg.Redis.SettingsTTL())
	}
	if cfg.Email.TimeoutSeconds != 10 {
		t.Fatalf("unexpected email timeout: %d", cfg.Email.TimeoutSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("STORE_PICKUP_ENABLED", "false")

	v := viper.New()
	v.AddConfigPath(t.TempDir())
	v.SetConfigName("missing")

	cfg, err := load(v)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "9191" {
		t.Fatalf("env override ignored: %s", cfg.Server.Port)
	}
	if cfg.Stripe.WebhookSecret != "whsec_env" {
		t.Fatalf("unexpected webhook secret: %s", cfg.Stripe.WebhookSecret)
	}
	if cfg.Store.PickupEnabled {
		t.Fatalf("expected pickup disabled by env")
	}
}
