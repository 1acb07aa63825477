package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/captioner/internal/captioner"
	"github.com/JaimeStill/captioner/pkg/database"
	"github.com/JaimeStill/captioner/pkg/handlers"
	"github.com/JaimeStill/captioner/pkg/storage"
	"github.com/JaimeStill/captioner/workflow"
)

// MapHTTPStatus maps workflow, adapter, and checkpoint store errors to HTTP
// status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrSessionExists),
		errors.Is(err, workflow.ErrSessionBusy),
		errors.Is(err, workflow.ErrConflict),
		errors.Is(err, workflow.ErrSessionClosed),
		errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrInvalidSession),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, captioner.ErrUnsupportedImage),
		errors.Is(err, captioner.ErrImageTooLarge),
		errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, storage.ErrEmptyKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, workflow.ErrPublishFailed),
		errors.Is(err, workflow.ErrDescribeFailed):
		return http.StatusBadGateway
	default:
		return database.MapHTTPStatus(err)
	}
}
