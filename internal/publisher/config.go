package publisher

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"
)

// Kind selects a publisher implementation.
type Kind string

// Publisher kinds.
const (
	KindWebhook Kind = "webhook"
	KindStorage Kind = "storage"
	KindLog     Kind = "log"
)

var kinds = []Kind{KindWebhook, KindStorage, KindLog}

// Config holds publisher selection and delivery parameters.
type Config struct {
	Kind       Kind   `toml:"kind"`
	WebhookURL string `toml:"webhook_url"`
	Timeout    string `toml:"timeout"`
	Prefix     string `toml:"prefix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Kind       string
	WebhookURL string
	Timeout    string
	Prefix     string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.WebhookURL != "" {
		c.WebhookURL = overlay.WebhookURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *Config) loadDefaults() {
	if c.Kind == "" {
		c.Kind = KindLog
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.Prefix == "" {
		c.Prefix = "outbox"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Kind != "" {
		if v := os.Getenv(env.Kind); v != "" {
			c.Kind = Kind(v)
		}
	}
	if env.WebhookURL != "" {
		if v := os.Getenv(env.WebhookURL); v != "" {
			c.WebhookURL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains(kinds, c.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.Kind == KindWebhook {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook_url must be an absolute http(s) URL")
		}
	}
	return nil
}
