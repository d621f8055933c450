package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults should validate: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Server.Port = 0
	cfg.Skinport.ClientID = "id-without-secret"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail")
	}
	for _, want := range []string{"unknown mode", "unknown log_level", "server: port", "skinport: client_id"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestValidateScanVenues(t *testing.T) {
	cfg := Defaults()
	cfg.Scan.Enabled = true
	cfg.Scan.Source = "steam"
	cfg.Scan.Destination = "steam"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "source and destination must differ") {
		t.Fatalf("err = %v, want same-venue rejection", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SKINARB_DMARKET_PUBLIC_KEY", "pub")
	t.Setenv("SKINARB_DMARKET_SECRET_KEY", "sec")
	t.Setenv("SKINARB_SERVER_PORT", "9090")
	t.Setenv("SKINARB_THROTTLE_MIN_SPACING", "750ms")
	t.Setenv("SKINARB_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SKINARB_SCAN_SORT_BY_SPREAD", "false")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.DMarket.PublicKey != "pub" || cfg.DMarket.SecretKey != "sec" {
		t.Errorf("dmarket keys = %q/%q", cfg.DMarket.PublicKey, cfg.DMarket.SecretKey)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Throttle.MinSpacing.Duration != 750*time.Millisecond {
		t.Errorf("min_spacing = %v", cfg.Throttle.MinSpacing.Duration)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Scan.SortBySpread {
		t.Error("sort_by_spread should be overridden to false")
	}
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.DMarket.SecretKey = "hmac-secret"
	cfg.Skinport.ClientSecret = "sp-secret"
	cfg.Postgres.Password = "pg-pass"
	cfg.Server.APIToken = "token"

	red := RedactedConfig(&cfg)
	for name, got := range map[string]string{
		"dmarket.secret_key":     red.DMarket.SecretKey,
		"skinport.client_secret": red.Skinport.ClientSecret,
		"postgres.password":      red.Postgres.Password,
		"server.api_token":       red.Server.APIToken,
	} {
		if got != "***" {
			t.Errorf("%s = %q, want redacted", name, got)
		}
	}
	if cfg.DMarket.SecretKey != "hmac-secret" {
		t.Error("original config mutated")
	}
	// Public key is not a secret and stays visible.
	cfg.DMarket.PublicKey = "pub"
	if RedactedConfig(&cfg).DMarket.PublicKey != "pub" {
		t.Error("public_key should not be redacted")
	}
}
