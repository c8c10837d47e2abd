package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, RelayEmailJS, cfg.Relay.Provider)
	assert.Equal(t, "service_hg1jqcy", cfg.Relay.ServiceID)
	assert.Equal(t, "template_qbwqyr3", cfg.Relay.TemplateID)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Port, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
log_level: debug
session_idle: 10m
relay:
  provider: smtp
smtp:
  to: inbox@example.com
`), 0o644))

	t.Setenv("PORTFOLIO_PORT", "9100")
	t.Setenv("PORTFOLIO_SMTP__HOST", "mail.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.SessionIdle)
	assert.Equal(t, RelaySMTP, cfg.Relay.Provider)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, "587", cfg.SMTP.Port)
	assert.Equal(t, "inbox@example.com", cfg.SMTP.To)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
	assert.NoError(t, cfg.Validate())
}

func TestLegacyEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("TO_EMAIL", "inbox@example.com")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "me@example.com", cfg.SMTP.Username)
	assert.Equal(t, "secret", cfg.SMTP.Password)
	assert.Equal(t, "inbox@example.com", cfg.SMTP.To)
	assert.Equal(t, "hunter2", cfg.Admin.Password)
}

func TestLegacyPortInvalid(t *testing.T) {
	t.Setenv("PORT", "http")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Port = 0 }, "out of range"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"session idle", func(c *Config) { c.SessionIdle = 0 }, "session_idle"},
		{"max pages", func(c *Config) { c.MaxPages = 0 }, "max_pages"},
		{"provider", func(c *Config) { c.Relay.Provider = "pigeon" }, "invalid relay provider"},
		{"emailjs ids", func(c *Config) { c.Relay.TemplateID = "" }, "required for emailjs"},
		{"smtp recipient", func(c *Config) { c.Relay.Provider = RelaySMTP }, "smtp.to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
