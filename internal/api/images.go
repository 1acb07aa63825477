package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/captioner/internal/captioner"
	"github.com/JaimeStill/captioner/pkg/handlers"
	"github.com/JaimeStill/captioner/pkg/routes"
	"github.com/JaimeStill/captioner/pkg/storage"
)

// imageHandler moves source images in and out of blob storage so that
// sessions can reference them by key.
type imageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newImageHandler(store storage.System, logger *slog.Logger) *imageHandler {
	return &imageHandler{
		store:  store,
		logger: logger.With("handler", "images"),
	}
}

func (h *imageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/images",
		Routes: []routes.Route{
			{Method: "PUT", Pattern: "/{key...}", Name: "images.upload", Handler: h.upload},
			{Method: "GET", Pattern: "/{key...}", Name: "images.download", Handler: h.download},
		},
	}
}

type uploadResult struct {
	ImageReference string `json:"image_reference"`
}

func (h *imageHandler) upload(w http.ResponseWriter, r *http.Request) {
	key := "images/" + r.PathValue("key")
	body := http.MaxBytesReader(w, r.Body, captioner.MaxImageSize)

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.store.Upload(r.Context(), key, body, contentType); err != nil {
		status := storage.MapHTTPStatus(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	h.logger.InfoContext(r.Context(), "image uploaded", "key", key)
	handlers.RespondJSON(w, http.StatusCreated, uploadResult{ImageReference: key})
}

func (h *imageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := "images/" + r.PathValue("key")

	rc, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}
