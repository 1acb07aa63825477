package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/captioner/pkg/middleware"
	"github.com/JaimeStill/captioner/pkg/pagination"
)

const (
	EnvAPIBasePath    = "CAPTION_API_BASE_PATH"
	EnvAPIMaxBodySize = "CAPTION_API_MAX_BODY_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CAPTION_CORS_ENABLED",
	Origins:          "CAPTION_CORS_ORIGINS",
	AllowedMethods:   "CAPTION_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CAPTION_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CAPTION_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CAPTION_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "CAPTION_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CAPTION_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize int64                 `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != 0 {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1 << 20
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxBodySize = n
		}
	}
}

func (c *APIConfig) validate() error {
	if c.BasePath[0] != '/' {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("invalid max_body_size: %d", c.MaxBodySize)
	}
	return nil
}
