// Package captioner describes images with a go-agents vision agent, giving
// the workflow a factual starting description when the caller supplies none.
package captioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/captioner/pkg/storage"
	"github.com/JaimeStill/captioner/workflow"
)

// MaxImageSize bounds the bytes read for a single image.
const MaxImageSize = 20 << 20

// Domain errors for image description.
var (
	ErrUnsupportedImage = errors.New("image must be PNG or JPEG")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrVisionFailed     = errors.New("vision call failed")
)

// formats maps sniffed content types to the encodings a vision model accepts.
var formats = map[string]document.ImageFormat{
	"image/png":  document.PNG,
	"image/jpeg": document.JPEG,
}

// VisionFunc sends a prompt and encoded images to a model and returns the
// text response.
type VisionFunc func(ctx context.Context, prompt string, images []string) (string, error)

// FromAgent adapts a go-agents Agent to a VisionFunc.
func FromAgent(a agent.Agent) VisionFunc {
	return func(ctx context.Context, prompt string, images []string) (string, error) {
		resp, err := a.Vision(ctx, prompt, images)
		if err != nil {
			return "", err
		}
		return resp.Content(), nil
	}
}

// Captioner implements workflow.Describer. Image references are storage keys.
type Captioner struct {
	vision VisionFunc
	images storage.System
	prompt string
	logger *slog.Logger
}

var _ workflow.Describer = (*Captioner)(nil)

// New creates a Captioner backed by a go-agents agent built from cfg.
func New(cfg *gaconfig.AgentConfig, images storage.System, prompt string, logger *slog.Logger) (*Captioner, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return NewWithVision(FromAgent(a), images, prompt, logger), nil
}

// NewWithVision creates a Captioner over an arbitrary vision function.
func NewWithVision(vision VisionFunc, images storage.System, prompt string, logger *slog.Logger) *Captioner {
	return &Captioner{
		vision: vision,
		images: images,
		prompt: prompt,
		logger: logger.With("system", "captioner"),
	}
}

// Describe loads the referenced image, encodes it as a data URI, and asks
// the vision model for a plain description.
func (c *Captioner) Describe(ctx context.Context, imageReference string) (string, error) {
	data, format, err := c.load(ctx, imageReference)
	if err != nil {
		return "", err
	}

	dataURI, err := encoding.EncodeImageDataURI(data, format)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	content, err := c.vision(ctx, c.prompt, []string{dataURI})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVisionFailed, err)
	}

	description := strings.TrimSpace(content)

	c.logger.InfoContext(
		ctx, "image described",
		"image_reference", imageReference,
		"format", format,
		"bytes", len(data),
	)

	return description, nil
}

func (c *Captioner) load(ctx context.Context, key string) ([]byte, document.ImageFormat, error) {
	rc, err := c.images.Download(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("load image: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image %s: %w", key, err)
	}
	if len(data) > MaxImageSize {
		return nil, "", fmt.Errorf("%w: %s", ErrImageTooLarge, key)
	}

	ct := http.DetectContentType(data)
	format, ok := formats[ct]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s is %s", ErrUnsupportedImage, key, ct)
	}

	return data, format, nil
}
