// Package config loads and validates the application configuration from
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete configuration for the ordning application.
// It covers all commands (ingest, list, reprocess, serve) and supports
// loading from configuration files, environment variables, and flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`

	// Barcode scanning configuration
	Scanner ScannerConfig `mapstructure:"scanner" yaml:"scanner" json:"scanner"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Auth configuration
	Auth AuthConfig `mapstructure:"auth" yaml:"auth" json:"auth"`
}

// DatabaseConfig contains ticket storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// ScannerConfig contains barcode scanning settings.
type ScannerConfig struct {
	TryHarder bool `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	MinWidth  int  `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// AuthConfig contains token issuance settings.
type AuthConfig struct {
	Issuer     string        `mapstructure:"issuer" yaml:"issuer" json:"issuer"`
	SigningKey string        `mapstructure:"signing_key" yaml:"signing_key" json:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl" json:"token_ttl"`
}

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Database: DatabaseConfig{
			Path: "ordning.db",
		},
		Scanner: ScannerConfig{
			TryHarder: true,
			MinWidth:  600,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Auth: AuthConfig{
			Issuer:   "ordning",
			TokenTTL: time.Hour,
		},
	}
}

// validLogLevels are the accepted log_level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	levelOK := false
	for _, l := range validLogLevels {
		if strings.EqualFold(c.LogLevel, l) {
			levelOK = true
			break
		}
	}
	if !levelOK {
		errs = append(errs, fmt.Sprintf("log_level must be one of %v, got %q", validLogLevels, c.LogLevel))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path must not be empty")
	}

	if c.Scanner.MinWidth <= 0 {
		errs = append(errs, fmt.Sprintf("scanner.min_width must be positive, got %d", c.Scanner.MinWidth))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Sprintf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}
	if c.Server.TimeoutSec <= 0 {
		errs = append(errs, fmt.Sprintf("server.timeout_sec must be positive, got %d", c.Server.TimeoutSec))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("server.shutdown_timeout must be positive, got %d", c.Server.ShutdownTimeout))
	}

	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Sprintf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Address returns the host:port the server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}
