package api

import (
	"fmt"

	"github.com/JaimeStill/captioner/internal/captioner"
	"github.com/JaimeStill/captioner/internal/checkpoint"
	"github.com/JaimeStill/captioner/internal/config"
	"github.com/JaimeStill/captioner/internal/infrastructure"
	"github.com/JaimeStill/captioner/internal/prompts"
	"github.com/JaimeStill/captioner/internal/publisher"
	"github.com/JaimeStill/captioner/internal/rewriter"
	"github.com/JaimeStill/captioner/workflow"
)

// Runtime extends Infrastructure with the assembled workflow engine.
type Runtime struct {
	*infrastructure.Infrastructure
	Engine *workflow.Engine
}

// NewRuntime wires the workflow adapters selected by cfg onto the
// infrastructure and builds the engine. The vision describer is available
// only when blob storage is configured.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")
	opts := cfg.Workflow.PromptOptions()

	promptSet, err := prompts.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}

	rw, err := rewriter.New(&cfg.Agent, logger)
	if err != nil {
		return nil, fmt.Errorf("rewriter: %w", err)
	}

	pub, err := publisher.New(&cfg.Publisher, infra.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("publisher: %w", err)
	}

	rt := &workflow.Runtime{
		Store:     infra.Checkpoints,
		Rewriter:  rw,
		Publisher: pub,
		Prompts:   promptSet,
		Logger:    logger,
	}

	if infra.Storage != nil {
		describe, err := prompts.Describe(opts)
		if err != nil {
			return nil, fmt.Errorf("prompts: %w", err)
		}
		c, err := captioner.New(&cfg.Agent, infra.Storage, describe, logger)
		if err != nil {
			return nil, fmt.Errorf("captioner: %w", err)
		}
		rt.Describer = c

		if cfg.Workflow.Archive {
			rt.Archiver = checkpoint.NewArchiver(infra.Storage, cfg.Workflow.ArchivePrefix)
		}
	}

	engine, err := workflow.New(rt)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:   infra.Lifecycle,
			Logger:      logger,
			Database:    infra.Database,
			Storage:     infra.Storage,
			Checkpoints: infra.Checkpoints,
		},
		Engine: engine,
	}, nil
}
