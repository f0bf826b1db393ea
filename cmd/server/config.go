// Package main provides the timesheet server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Verbose  bool           `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string    `yaml:"address"` // HTTP listen address (default: :8080)
	TLS     TLSConfig `yaml:"tls"`     // HTTPS configuration
}

// TLSConfig contains TLS settings for the server.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`   // Enable HTTPS
	CertFile string `yaml:"cert_file"` // Server certificate file
	KeyFile  string `yaml:"key_file"`  // Server private key file
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file (default: data/timesheet.db)
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`    // access token lifetime (default: 15m)
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"`   // refresh token lifetime (default: 168h)
	LockoutThreshold int           `yaml:"lockout_threshold"`   // failed attempts before lockout (default: 5)
	LockoutDuration  time.Duration `yaml:"lockout_duration"`    // lockout duration (default: 30m)
	RateLimitPerIP   int           `yaml:"rate_limit_per_ip"`   // login attempts per minute per IP (default: 5)
	RateLimitPerUser int           `yaml:"rate_limit_per_user"` // requests per minute per user (default: 100)
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // serve Prometheus metrics
	Address string `yaml:"address"` // metrics listen address (default: :9090)
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/timesheet.db"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.LockoutThreshold == 0 {
		c.Auth.LockoutThreshold = 5
	}
	if c.Auth.LockoutDuration == 0 {
		c.Auth.LockoutDuration = 30 * time.Minute
	}
	if c.Auth.RateLimitPerIP == 0 {
		c.Auth.RateLimitPerIP = 5
	}
	if c.Auth.RateLimitPerUser == 0 {
		c.Auth.RateLimitPerUser = 100
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			return fmt.Errorf("server.tls.cert_file is required when TLS is enabled")
		}
		if c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.key_file is required when TLS is enabled")
		}
	}
	if c.Auth.AccessTokenTTL < 0 || c.Auth.RefreshTokenTTL < 0 {
		return fmt.Errorf("auth token TTLs must not be negative")
	}
	return nil
}
