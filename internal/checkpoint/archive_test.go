package checkpoint_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/JaimeStill/captioner/internal/checkpoint"
	"github.com/JaimeStill/captioner/pkg/storage"
	"github.com/JaimeStill/captioner/workflow"
)

func TestArchive(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewLocal(t.TempDir(), discardLogger())
	a := checkpoint.NewArchiver(blobs, "/archive/")

	s := sampleSession("s1")
	s.Status = workflow.StatusDone
	s.SelectedCaption = "Beach day 🐶"

	if err := a.Archive(ctx, s); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if got := a.Key("s1"); got != "archive/s1.json" {
		t.Errorf("Key() = %q, want archive/s1.json", got)
	}

	rc, err := blobs.Download(ctx, "archive/s1.json")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	var got workflow.Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if got.ID != "s1" || got.Status != workflow.StatusDone || got.SelectedCaption != "Beach day 🐶" {
		t.Errorf("snapshot = %+v", got)
	}
}
