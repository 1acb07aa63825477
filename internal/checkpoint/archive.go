package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/JaimeStill/captioner/pkg/storage"
	"github.com/JaimeStill/captioner/workflow"
)

// Archiver writes a JSON snapshot of each closed session to blob storage
// under <prefix>/<session id>.json.
type Archiver struct {
	blobs  storage.System
	prefix string
}

var _ workflow.Archiver = (*Archiver)(nil)

// NewArchiver creates an archiver writing beneath prefix.
func NewArchiver(blobs storage.System, prefix string) *Archiver {
	return &Archiver{blobs: blobs, prefix: strings.Trim(prefix, "/")}
}

// Key returns the blob key for a session snapshot.
func (a *Archiver) Key(id string) string {
	return path.Join(a.prefix, id+".json")
}

func (a *Archiver) Archive(ctx context.Context, s *workflow.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	if err := a.blobs.Upload(ctx, a.Key(s.ID), bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("archive session %s: %w", s.ID, err)
	}
	return nil
}
