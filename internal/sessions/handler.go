package sessions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/captioner/pkg/handlers"
	"github.com/JaimeStill/captioner/pkg/middleware"
	"github.com/JaimeStill/captioner/pkg/pagination"
	"github.com/JaimeStill/captioner/pkg/routes"
	"github.com/JaimeStill/captioner/workflow"
)

// View is the response body for session endpoints. Prompt is present only
// while the session awaits a reply.
type View struct {
	Session *workflow.Session `json:"session"`
	Prompt  *workflow.Prompt  `json:"prompt,omitempty"`
}

// FailedView is the response body when publication fails. The session is
// included so the caller can see the recorded failure.
type FailedView struct {
	Error   string            `json:"error"`
	Session *workflow.Session `json:"session"`
}

// ReplyRequest carries one human reply.
type ReplyRequest struct {
	Reply string `json:"reply"`
}

// Handler provides HTTP endpoints for session operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	maxBodySize int64
	pagination  pagination.Config
}

// NewHandler creates a Handler with the given system, logger, request body
// limit, and pagination settings.
func NewHandler(sys System, logger *slog.Logger, maxBodySize int64, page pagination.Config) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "sessions"),
		maxBodySize: maxBodySize,
		pagination:  page,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Name: "sessions.list", Handler: h.List},
			{Method: "POST", Pattern: "", Name: "sessions.start", Handler: h.Start},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Name: "sessions.get", Handler: h.Get},
					{Method: "POST", Pattern: "/reply", Name: "sessions.reply", Handler: h.Reply},
					{Method: "DELETE", Pattern: "", Name: "sessions.delete", Handler: h.Delete},
				},
			},
		},
	}
}

// sessionID reads the path id and attaches it to the access log line.
func sessionID(r *http.Request) string {
	id := r.PathValue("id")
	middleware.Annotate(r.Context(), "session_id", id)
	return id
}

// List returns a page of stored session ids. Query parameters page,
// page_size, and search select the page and filter ids by substring.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result := pagination.Slice(ids, func(id string) string { return id }, req)

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Start creates a session from a JSON StartRequest and returns it suspended
// at the first prompt.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req workflow.StartRequest
	if err := handlers.DecodeJSON(w, r, h.maxBodySize, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, prompt, err := h.sys.Start(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	middleware.Annotate(r.Context(), "session_id", s.ID)

	handlers.RespondJSON(w, http.StatusCreated, View{Session: s, Prompt: prompt})
}

// Get returns the session and its pending prompt.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, prompt, err := h.sys.Get(r.Context(), sessionID(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, View{Session: s, Prompt: prompt})
}

// Reply resumes a session with a human reply. An unrecognized or blank
// reply is not an error: the response repeats the pending prompt.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	var req ReplyRequest
	if err := handlers.DecodeJSON(w, r, h.maxBodySize, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, prompt, err := h.sys.Reply(r.Context(), id, req.Reply)
	if err != nil {
		var pErr *workflow.PublishError
		if errors.As(err, &pErr) && s != nil {
			h.logger.WarnContext(r.Context(), "publish failed", "session_id", s.ID, "error", pErr.Err)
			handlers.RespondJSON(w, http.StatusBadGateway, FailedView{Error: err.Error(), Session: s})
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, View{Session: s, Prompt: prompt})
}

// Delete removes a stored session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), sessionID(r)); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
