package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/scoring"
	"github.com/ayusman/musclemap/internal/store"
	"github.com/google/uuid"
)

// SessionHandler handles HTTP requests for session resources.
type SessionHandler struct {
	store    *store.Store
	registry *Registry
}

// NewSessionHandler creates a new SessionHandler with the given store and
// live session registry.
func NewSessionHandler(s *store.Store, reg *Registry) *SessionHandler {
	return &SessionHandler{store: s, registry: reg}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
// Expected paths: /api/sessions, /api/sessions/{id}, /api/sessions/{id}/summary
// and /api/sessions/{id}/reset.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.rename(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "summary":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.summary(w, r, id)
	case "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.reset(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type createSessionRequest struct {
	Name            string `json:"name"`
	Source          string `json:"source"`
	TargetRegion    string `json:"target_region"`
	ContractionMode string `json:"contraction_mode"`
}

type renameSessionRequest struct {
	Name string `json:"name"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// create handles POST /api/sessions. Region and mode default to FULL and
// ISOTONIC.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ctx := scoring.DefaultContext()
	if req.TargetRegion != "" {
		ctx.Target = anatomy.Target(req.TargetRegion)
	}
	if req.ContractionMode != "" {
		ctx.Mode = motion.ContractionMode(req.ContractionMode)
	}
	if err := ctx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := &store.Session{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Source:          req.Source,
		TargetRegion:    string(ctx.Target),
		ContractionMode: string(ctx.Mode),
	}
	if err := h.store.Sessions().Create(sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// rename handles PUT /api/sessions/{id}.
func (h *SessionHandler) rename(w http.ResponseWriter, r *http.Request, id string) {
	var req renameSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := h.store.Sessions().Rename(id, req.Name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to rename session")
		return
	}

	h.get(w, r, id)
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.registry.Drop(id)
	w.WriteHeader(http.StatusNoContent)
}

// summary handles GET /api/sessions/{id}/summary.
func (h *SessionHandler) summary(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	sum, err := h.store.Results().Summarize(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize session")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// reset handles POST /api/sessions/{id}/reset and clears the live scoring
// state. Stored results are kept.
func (h *SessionHandler) reset(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.registry.Reset(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to reset session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
