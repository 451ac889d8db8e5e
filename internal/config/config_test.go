package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ordning.db", cfg.Database.Path)
	assert.True(t, cfg.Scanner.TryHarder)
	assert.Equal(t, 600, cfg.Scanner.MinWidth)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"zero min width", func(c *Config) { c.Scanner.MinWidth = 0 }, "scanner.min_width"},
		{"port too high", func(c *Config) { c.Server.Port = 99999 }, "server.port"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }, "max_upload_mb"},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSec = 0 }, "timeout_sec"},
		{"negative token ttl", func(c *Config) { c.Auth.TokenTTL = -time.Minute }, "token_ttl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateAcceptsMixedCaseLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "DEBUG"
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "bogus"
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "server.port")
}

func TestServerConfigHelpers(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 9090, TimeoutSec: 45}
	assert.Equal(t, "0.0.0.0:9090", s.Address())
	assert.Equal(t, 45*time.Second, s.Timeout())
}
