// Package publisher provides workflow.Publisher implementations: an HTTP
// webhook, a blob storage outbox, and a log-only publisher for local runs.
package publisher

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/captioner/pkg/storage"
	"github.com/JaimeStill/captioner/workflow"
)

// Domain errors for publication.
var (
	ErrUnknownKind = errors.New("publisher kind must be webhook, storage, or log")
	ErrRejected    = errors.New("publication rejected")
)

// Post is the payload delivered for every published caption.
type Post struct {
	ImageReference string    `json:"image_reference"`
	Caption        string    `json:"caption"`
	PublishedAt    time.Time `json:"published_at"`
}

func newPost(imageReference, caption string) Post {
	return Post{
		ImageReference: imageReference,
		Caption:        caption,
		PublishedAt:    time.Now().UTC(),
	}
}

// New builds the publisher selected by cfg. The storage kind requires blobs.
func New(cfg *Config, blobs storage.System, logger *slog.Logger) (workflow.Publisher, error) {
	switch cfg.Kind {
	case KindWebhook:
		client := &http.Client{Timeout: cfg.TimeoutDuration()}
		return NewWebhook(cfg.WebhookURL, client, logger), nil
	case KindStorage:
		if blobs == nil {
			return nil, fmt.Errorf("storage publisher: %w", storage.ErrDisabled)
		}
		return NewOutbox(blobs, cfg.Prefix, logger), nil
	case KindLog:
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
