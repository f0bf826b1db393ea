package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":9000\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("Address = %q, want :9000", cfg.Server.Address)
	}
	if cfg.Database.Path != "data/timesheet.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 168h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.LockoutThreshold != 5 {
		t.Errorf("LockoutThreshold = %d, want 5", cfg.Auth.LockoutThreshold)
	}
	if cfg.Metrics.Address != ":9090" {
		t.Errorf("Metrics.Address = %q, want :9090", cfg.Metrics.Address)
	}
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":8443"
  tls:
    enabled: true
    cert_file: /etc/timesheet/server.crt
    key_file: /etc/timesheet/server.key
database:
  path: /var/lib/timesheet/timesheet.db
auth:
  access_token_ttl: 5m
  refresh_token_ttl: 24h
  lockout_threshold: 3
  rate_limit_per_user: 50
metrics:
  enabled: true
  address: ":9100"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Server.TLS.Enabled {
		t.Error("TLS.Enabled = false, want true")
	}
	if cfg.Auth.AccessTokenTTL != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 24h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.LockoutThreshold != 3 {
		t.Errorf("LockoutThreshold = %d, want 3", cfg.Auth.LockoutThreshold)
	}
	if cfg.Auth.RateLimitPerUser != 50 {
		t.Errorf("RateLimitPerUser = %d, want 50", cfg.Auth.RateLimitPerUser)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Metrics.Address != ":9100" {
		t.Errorf("Metrics.Address = %q, want :9100", cfg.Metrics.Address)
	}
}

func TestLoadConfig_TLSValidation(t *testing.T) {
	path := writeConfig(t, `
server:
  tls:
    enabled: true
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for TLS enabled without cert files")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Address != ":8080" {
		t.Errorf("Address = %q, want :8080", cfg.Server.Address)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
