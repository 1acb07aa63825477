package storage

import (
	"fmt"
	"os"
)

// Config selects a blob backend. An Azure connection string takes the
// container backend; otherwise LocalPath roots a filesystem backend. With
// neither set, storage is disabled.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	LocalPath        string `toml:"local_path"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	LocalPath        string
}

// Enabled reports whether any backend is configured.
func (c *Config) Enabled() bool {
	return c.ConnectionString != "" || c.LocalPath != ""
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
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.LocalPath != "" {
		c.LocalPath = overlay.LocalPath
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "captions"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.LocalPath != "" {
		if v := os.Getenv(env.LocalPath); v != "" {
			c.LocalPath = v
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString != "" && c.LocalPath != "" {
		return fmt.Errorf("connection_string and local_path are mutually exclusive")
	}
	if c.ConnectionString != "" && c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	return nil
}
