// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pulsetrack/pulsetrack/internal/adapters/repository"
)

// SessionsHandler handles session intake and lookup.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandlePostSession handles POST /sessions requests.
func (h *SessionsHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}

	sess := req.toSession(r.Context())

	// Idempotency check on the import id; mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), sess.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SessionID: sess.ID, Duplicate: true})
		return
	}

	if err := h.deps.SubmitSession(r.Context(), sess); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SessionID: sess.ID, Duplicate: true})
			return
		}
		// Roll back the seen mark so the submission can be retried.
		h.deps.Unrecord(r.Context(), sess.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SessionID: sess.ID, Duplicate: false})
}

// HandleGetSession handles GET /sessions/{id} requests.
func (h *SessionsHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sess, err := h.deps.Session(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
