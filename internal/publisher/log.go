package publisher

import (
	"context"
	"log/slog"
)

// Log records the caption in the structured log and reports success.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log-only publisher.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("system", "publisher", "kind", KindLog)}
}

func (l *Log) Publish(ctx context.Context, imageReference, caption string) error {
	l.logger.InfoContext(
		ctx, "caption published",
		"image_reference", imageReference,
		"caption", caption,
	)
	return nil
}
