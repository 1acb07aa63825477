// Package sessions exposes the caption review workflow over HTTP. It is the
// human channel for service deployments: clients start sessions, read the
// pending prompt, and post replies.
package sessions

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/captioner/pkg/pagination"
	"github.com/JaimeStill/captioner/workflow"
)

// System defines the public contract for session operations.
type System interface {
	Handler(maxBodySize int64, page pagination.Config) *Handler

	Start(ctx context.Context, req workflow.StartRequest) (*workflow.Session, *workflow.Prompt, error)
	Reply(ctx context.Context, id, raw string) (*workflow.Session, *workflow.Prompt, error)
	Get(ctx context.Context, id string) (*workflow.Session, *workflow.Prompt, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type system struct {
	*workflow.Engine
	logger *slog.Logger
}

// New creates a session System backed by the workflow engine.
func New(engine *workflow.Engine, logger *slog.Logger) System {
	return &system{
		Engine: engine,
		logger: logger,
	}
}

func (s *system) Handler(maxBodySize int64, page pagination.Config) *Handler {
	return NewHandler(s, s.logger, maxBodySize, page)
}
