package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/captioner/pkg/storage"
)

// Outbox writes each caption to blob storage for a downstream poster to
// pick up. Every publication gets its own folder under prefix holding
// caption.txt and post.json.
type Outbox struct {
	blobs  storage.System
	prefix string
	logger *slog.Logger
}

// NewOutbox creates a storage outbox publisher.
func NewOutbox(blobs storage.System, prefix string, logger *slog.Logger) *Outbox {
	return &Outbox{
		blobs:  blobs,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With("system", "publisher", "kind", KindStorage),
	}
}

// Folder returns the outbox folder for a publication id.
func (o *Outbox) Folder(id string) string {
	return path.Join(o.prefix, id)
}

func (o *Outbox) Publish(ctx context.Context, imageReference, caption string) error {
	post := newPost(imageReference, caption)

	manifest, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	folder := o.Folder(uuid.Must(uuid.NewV7()).String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		key := path.Join(folder, "caption.txt")
		return o.blobs.Upload(gctx, key, strings.NewReader(caption), "text/plain; charset=utf-8")
	})

	g.Go(func() error {
		key := path.Join(folder, "post.json")
		return o.blobs.Upload(gctx, key, bytes.NewReader(manifest), "application/json")
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("write outbox %s: %w", folder, err)
	}

	o.logger.InfoContext(
		ctx, "caption queued",
		"image_reference", imageReference,
		"folder", folder,
	)
	return nil
}
