package main

import (
	"context"
	"time"

	"github.com/JaimeStill/captioner/internal/config"
	"github.com/JaimeStill/captioner/internal/infrastructure"
)

// Server owns the infrastructure, the mounted API module, and the HTTP
// listener for one captioner process.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"checkpoint", cfg.Workflow.Checkpoint,
		"publisher", cfg.Publisher.Kind,
		"routes", modules.API.Routes(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.infra.Logger.Error("subsystem startup failed", "error", err)
			return
		}
		s.reportCheckpoints(s.infra.Lifecycle.Context())
	}()

	return nil
}

// reportCheckpoints logs readiness with the number of sessions the
// checkpoint store carried across the restart.
func (s *Server) reportCheckpoints(ctx context.Context) {
	ids, err := s.infra.Checkpoints.List(ctx)
	if err != nil {
		s.infra.Logger.Warn("all subsystems ready; session count unavailable", "error", err)
		return
	}
	s.infra.Logger.Info("all subsystems ready", "stored_sessions", len(ids))
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
