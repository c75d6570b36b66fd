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

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if cfg.Upstream.BaseURL != "https://platform.example.com" {
		t.Fatalf("unexpected upstream base URL: %q", cfg.Upstream.BaseURL)
	}

	rate, err := cfg.Pricing.TaxRate()
	if err != nil {
		t.Fatalf("tax rate: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("8.25")) {
		t.Fatalf("unexpected tax rate %s", rate)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownStorageDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageDriver, "filesystem")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown storage driver to fail")
	}
}

func TestLoad_RejectsBadTaxRate(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvTaxRatePercent, "lots")

	if _, err := Load(); err == nil {
		t.Fatal("expected malformed tax rate to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvUpstreamBaseURL, "https://platform.example.com")
	t.Setenv(EnvSessionSecret, "secret")
	t.Setenv(EnvSessionIssuer, "shoplane")
	t.Setenv(EnvTaxRatePercent, "8.25")
}
