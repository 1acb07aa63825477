package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/captioner/internal/publisher"
	"github.com/JaimeStill/captioner/pkg/database"
	"github.com/JaimeStill/captioner/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCaptionEnv             = "CAPTION_ENV"
	EnvCaptionShutdownTimeout = "CAPTION_SHUTDOWN_TIMEOUT"
	EnvCaptionVersion         = "CAPTION_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "CAPTION_DB_URL",
	Host:            "CAPTION_DB_HOST",
	Port:            "CAPTION_DB_PORT",
	Name:            "CAPTION_DB_NAME",
	User:            "CAPTION_DB_USER",
	Password:        "CAPTION_DB_PASSWORD",
	SSLMode:         "CAPTION_DB_SSL_MODE",
	MaxOpenConns:    "CAPTION_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CAPTION_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CAPTION_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CAPTION_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CAPTION_STORAGE_CONTAINER_NAME",
	ConnectionString: "CAPTION_STORAGE_CONNECTION_STRING",
	LocalPath:        "CAPTION_STORAGE_LOCAL_PATH",
}

var publisherEnv = &publisher.Env{
	Kind:       "CAPTION_PUBLISHER_KIND",
	WebhookURL: "CAPTION_PUBLISHER_WEBHOOK_URL",
	Timeout:    "CAPTION_PUBLISHER_TIMEOUT",
	Prefix:     "CAPTION_PUBLISHER_PREFIX",
}

// Config is the root configuration for the captioner service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Workflow        WorkflowConfig       `toml:"workflow"`
	Publisher       publisher.Config     `toml:"publisher"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the CAPTION_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCaptionEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// UsesDatabase reports whether sessions are checkpointed in PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.Workflow.Checkpoint == CheckpointPostgres
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// MigrationURL resolves only the database section of the configuration and
// returns its postgres:// URL.
func MigrationURL() (string, error) {
	cfg, err := read()
	if err != nil {
		return "", err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return "", fmt.Errorf("database: %w", err)
	}
	return cfg.Database.MigrationURL(), nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Workflow.Merge(&overlay.Workflow)
	c.Publisher.Merge(&overlay.Publisher)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.Publisher.Finalize(publisherEnv); err != nil {
		return fmt.Errorf("publisher: %w", err)
	}
	if c.UsesDatabase() {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return c.validateDependencies()
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCaptionShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCaptionVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// validateDependencies checks settings that span sections.
func (c *Config) validateDependencies() error {
	if c.Workflow.Archive && !c.Storage.Enabled() {
		return fmt.Errorf("workflow: archive requires storage")
	}
	if c.Publisher.Kind == publisher.KindStorage && !c.Storage.Enabled() {
		return fmt.Errorf("publisher: storage kind requires storage")
	}
	if c.Server.WriteTimeoutDuration() <= c.Publisher.TimeoutDuration() {
		return fmt.Errorf("server: write_timeout must exceed publisher timeout")
	}
	return nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCaptionEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
