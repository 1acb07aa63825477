package api

import (
	"github.com/JaimeStill/captioner/internal/config"
	"github.com/JaimeStill/captioner/pkg/routes"
)

// routeGroups lists the API route groups. Image routes exist only when a
// blob backend is configured.
func routeGroups(domain *Domain, cfg *config.Config, runtime *Runtime) []routes.Group {
	groups := []routes.Group{
		domain.Sessions.Handler(cfg.API.MaxBodySize, cfg.API.Pagination).Routes(),
	}
	if runtime.Storage != nil {
		groups = append(groups, newImageHandler(runtime.Storage, runtime.Logger).routes())
	}
	return groups
}
