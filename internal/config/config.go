// Package config loads the site configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every override variable. A double underscore
// separates nested keys: PORTFOLIO_RELAY__PROVIDER sets relay.provider.
const EnvPrefix = "PORTFOLIO_"

const (
	RelayEmailJS = "emailjs"
	RelaySMTP    = "smtp"
)

type Config struct {
	Port         int           `koanf:"port"`
	ImagesDir    string        `koanf:"images_dir"`
	DatabasePath string        `koanf:"database_path"`
	LogLevel     string        `koanf:"log_level"`
	SessionIdle  time.Duration `koanf:"session_idle"`
	MaxPages     int           `koanf:"max_pages"`
	Relay        RelayConfig   `koanf:"relay"`
	SMTP         SMTPConfig    `koanf:"smtp"`
	Admin        AdminConfig   `koanf:"admin"`
}

// RelayConfig selects the contact relay. The EmailJS ids are public.
type RelayConfig struct {
	Provider   string `koanf:"provider"`
	Endpoint   string `koanf:"endpoint"`
	ServiceID  string `koanf:"service_id"`
	TemplateID string `koanf:"template_id"`
	PublicKey  string `koanf:"public_key"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	To       string `koanf:"to"`
}

type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:         8080,
		ImagesDir:    "./images",
		DatabasePath: "portfolio.db",
		LogLevel:     "info",
		SessionIdle:  30 * time.Minute,
		MaxPages:     10000,
		Relay: RelayConfig{
			Provider:   RelayEmailJS,
			Endpoint:   "https://api.emailjs.com/api/v1.0/email/send",
			ServiceID:  "service_hg1jqcy",
			TemplateID: "template_qbwqyr3",
			PublicKey:  "Dm065dmgiIEcjC7Mf",
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		Admin: AdminConfig{
			Username: "admin",
		},
	}
}

// Load builds the configuration: defaults, then the legacy unprefixed
// variables, then the YAML file at path (if it exists), then PORTFOLIO_*
// variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := applyLegacyEnv(cfg); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// applyLegacyEnv honours the variables the site used before it had a config file.
func applyLegacyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	set := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(&cfg.SMTP.Host, "SMTP_HOST")
	set(&cfg.SMTP.Port, "SMTP_PORT")
	set(&cfg.SMTP.Username, "SMTP_USER")
	set(&cfg.SMTP.Password, "SMTP_PASS")
	set(&cfg.SMTP.To, "TO_EMAIL")
	set(&cfg.Admin.Username, "ADMIN_USERNAME")
	set(&cfg.Admin.Password, "ADMIN_PASSWORD")
	return nil
}

// Validate checks that the configuration can start the site.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.SessionIdle <= 0 {
		return fmt.Errorf("session_idle must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive")
	}

	switch c.Relay.Provider {
	case RelayEmailJS:
		if c.Relay.ServiceID == "" || c.Relay.TemplateID == "" || c.Relay.PublicKey == "" {
			return fmt.Errorf("relay.service_id, relay.template_id and relay.public_key are required for emailjs")
		}
	case RelaySMTP:
		if c.SMTP.Host == "" || c.SMTP.Port == "" {
			return fmt.Errorf("smtp.host and smtp.port are required")
		}
		if c.SMTP.To == "" {
			return fmt.Errorf("smtp.to is required")
		}
	default:
		return fmt.Errorf("invalid relay provider %q: must be one of emailjs, smtp", c.Relay.Provider)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
