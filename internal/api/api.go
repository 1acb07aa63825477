// Package api assembles the API module with the session system and route registration.
package api

import (
	"github.com/JaimeStill/captioner/internal/config"
	"github.com/JaimeStill/captioner/internal/infrastructure"
	"github.com/JaimeStill/captioner/pkg/middleware"
	"github.com/JaimeStill/captioner/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(runtime)

	m := module.New(cfg.API.BasePath, routeGroups(domain, cfg, runtime)...)
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Recover(runtime.Logger))

	return m, nil
}
