// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, checkpoint persistence, blob storage)
// that the caption workflow requires.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/captioner/internal/checkpoint"
	"github.com/JaimeStill/captioner/internal/config"
	"github.com/JaimeStill/captioner/pkg/database"
	"github.com/JaimeStill/captioner/pkg/lifecycle"
	"github.com/JaimeStill/captioner/pkg/storage"
	"github.com/JaimeStill/captioner/workflow"
)

// Infrastructure holds the core systems shared by the server and the CLI.
// Database is nil unless sessions are checkpointed in PostgreSQL; Storage is
// nil unless a blob backend is configured.
type Infrastructure struct {
	Lifecycle   *lifecycle.Coordinator
	Logger      *slog.Logger
	Database    database.System
	Storage     storage.System
	Checkpoints workflow.CheckpointStore

	sqlite *checkpoint.SQLite
}

// New creates an Infrastructure from the application configuration. It logs
// to stderr in text form.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger creates an Infrastructure that logs through logger.
// It initializes all systems but does not start them; call Start separately.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	switch cfg.Workflow.Checkpoint {
	case config.CheckpointPostgres:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Checkpoints = checkpoint.NewPostgres(db.Connection(), logger)
	case config.CheckpointSQLite:
		st, err := checkpoint.OpenSQLite(cfg.Workflow.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("checkpoint init failed: %w", err)
		}
		infra.sqlite = st
		infra.Checkpoints = st
	default:
		infra.Checkpoints = workflow.NewMemoryStore()
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if i.sqlite != nil {
		i.Lifecycle.OnShutdown("checkpoint", func(ctx context.Context) error {
			return i.sqlite.Close()
		})
	}
	return nil
}
