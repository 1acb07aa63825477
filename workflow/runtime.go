package workflow

import (
	"context"
	"fmt"
	"log/slog"
)

// Rewriter turns a system instruction and the running conversation into an
// ordered set of caption candidates. The history opens with the system
// message recorded for provenance; implementations may skip it in favor of
// systemPrompt.
type Rewriter interface {
	Rewrite(ctx context.Context, systemPrompt string, history []Message) ([]string, error)
}

// Publisher posts the final caption for an image.
type Publisher interface {
	Publish(ctx context.Context, imageReference, caption string) error
}

// Describer produces a factual description of the referenced image.
type Describer interface {
	Describe(ctx context.Context, imageReference string) (string, error)
}

// Archiver receives a snapshot of every session that reaches a terminal state.
type Archiver interface {
	Archive(ctx context.Context, s *Session) error
}

// RewriterFunc adapts a function to the Rewriter interface.
type RewriterFunc func(ctx context.Context, systemPrompt string, history []Message) ([]string, error)

func (f RewriterFunc) Rewrite(ctx context.Context, systemPrompt string, history []Message) ([]string, error) {
	return f(ctx, systemPrompt, history)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, imageReference, caption string) error

func (f PublisherFunc) Publish(ctx context.Context, imageReference, caption string) error {
	return f(ctx, imageReference, caption)
}

// Runtime bundles the collaborators the engine requires.
// Describer and Archiver are optional.
type Runtime struct {
	Store     CheckpointStore
	Rewriter  Rewriter
	Publisher Publisher
	Describer Describer
	Archiver  Archiver
	Prompts   PromptSet
	Logger    *slog.Logger
}

func (rt *Runtime) validate() error {
	if rt.Store == nil {
		return fmt.Errorf("checkpoint store required")
	}
	if rt.Rewriter == nil {
		return fmt.Errorf("rewriter required")
	}
	if rt.Publisher == nil {
		return fmt.Errorf("publisher required")
	}
	if rt.Logger == nil {
		return fmt.Errorf("logger required")
	}
	return rt.Prompts.validate()
}
