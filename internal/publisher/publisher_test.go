package publisher_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/captioner/internal/publisher"
	"github.com/JaimeStill/captioner/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebhookPublish(t *testing.T) {
	var got publisher.Post
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	wh := publisher.NewWebhook(srv.URL, srv.Client(), discardLogger())
	if err := wh.Publish(context.Background(), "img1", "Sunset vibes only 🌅"); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if got.ImageReference != "img1" || got.Caption != "Sunset vibes only 🌅" {
		t.Errorf("post = %+v", got)
	}
	if got.PublishedAt.IsZero() {
		t.Error("published_at not set")
	}
}

func TestWebhookRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "login expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	wh := publisher.NewWebhook(srv.URL, srv.Client(), discardLogger())
	err := wh.Publish(context.Background(), "img1", "caption")
	if !errors.Is(err, publisher.ErrRejected) {
		t.Fatalf("Publish error = %v, want ErrRejected", err)
	}
	if !strings.Contains(err.Error(), "login expired") {
		t.Errorf("error should carry the response detail: %v", err)
	}
}

func TestWebhookUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	wh := publisher.NewWebhook(url, &http.Client{Timeout: time.Second}, discardLogger())
	if err := wh.Publish(context.Background(), "img1", "caption"); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestOutboxPublish(t *testing.T) {
	root := t.TempDir()
	blobs := storage.NewLocal(root, discardLogger())

	ob := publisher.NewOutbox(blobs, "/outbox/", discardLogger())
	if err := ob.Publish(context.Background(), "images/dog.png", "Beach day 🐶"); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	folders, err := os.ReadDir(filepath.Join(root, "outbox"))
	if err != nil {
		t.Fatalf("read outbox: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("outbox folders = %d, want 1", len(folders))
	}
	dir := filepath.Join(root, "outbox", folders[0].Name())

	caption, err := os.ReadFile(filepath.Join(dir, "caption.txt"))
	if err != nil {
		t.Fatalf("read caption: %v", err)
	}
	if string(caption) != "Beach day 🐶" {
		t.Errorf("caption.txt = %q", caption)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "post.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var post publisher.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if post.ImageReference != "images/dog.png" || post.Caption != "Beach day 🐶" {
		t.Errorf("manifest = %+v", post)
	}
}

func TestLogPublish(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if err := publisher.NewLog(logger).Publish(context.Background(), "img1", "Pawsitively sandy"); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if !strings.Contains(buf.String(), "Pawsitively sandy") {
		t.Errorf("log output missing caption: %s", buf.String())
	}
}

func TestNew(t *testing.T) {
	blobs := storage.NewLocal(t.TempDir(), discardLogger())

	tests := []struct {
		name    string
		cfg     publisher.Config
		blobs   storage.System
		want    any
		wantErr error
	}{
		{"webhook", publisher.Config{Kind: publisher.KindWebhook, WebhookURL: "http://example.com/hook", Timeout: "5s"}, nil, &publisher.Webhook{}, nil},
		{"storage", publisher.Config{Kind: publisher.KindStorage, Prefix: "outbox"}, blobs, &publisher.Outbox{}, nil},
		{"storage without blobs", publisher.Config{Kind: publisher.KindStorage}, nil, nil, storage.ErrDisabled},
		{"log", publisher.Config{Kind: publisher.KindLog}, nil, &publisher.Log{}, nil},
		{"unknown", publisher.Config{Kind: "carrier-pigeon"}, nil, nil, publisher.ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := publisher.New(&tt.cfg, tt.blobs, discardLogger())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New error: %v", err)
			}

			var ok bool
			switch tt.want.(type) {
			case *publisher.Webhook:
				_, ok = got.(*publisher.Webhook)
			case *publisher.Outbox:
				_, ok = got.(*publisher.Outbox)
			case *publisher.Log:
				_, ok = got.(*publisher.Log)
			}
			if !ok {
				t.Errorf("New returned %T, want %T", got, tt.want)
			}
		})
	}
}
