package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/captioner/pkg/formatting"
)

// Webhook posts each caption as JSON to a fixed URL. Any non-2xx response
// is reported as ErrRejected.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhook creates a webhook publisher.
func NewWebhook(url string, client *http.Client, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: client,
		logger: logger.With("system", "publisher", "kind", KindWebhook),
	}
}

func (w *Webhook) Publish(ctx context.Context, imageReference, caption string) error {
	body, err := json.Marshal(newPost(imageReference, caption))
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post caption: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf(
			"%w: %s: %s",
			ErrRejected, resp.Status, formatting.Excerpt(string(bytes.TrimSpace(detail)), 160),
		)
	}

	w.logger.InfoContext(
		ctx, "caption delivered",
		"image_reference", imageReference,
		"status", resp.StatusCode,
	)
	return nil
}
