package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/musclemap/internal/scoring"
	"github.com/ayusman/musclemap/internal/store"
)

// FramesHandler scores submitted frames and lists stored frame results.
type FramesHandler struct {
	store    *store.Store
	registry *Registry
}

// NewFramesHandler creates a new FramesHandler.
func NewFramesHandler(s *store.Store, reg *Registry) *FramesHandler {
	return &FramesHandler{store: s, registry: reg}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/sessions/{id}/frames
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[0] == "" || parts[1] != "frames" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	sessionID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, sessionID)
	case http.MethodPost:
		h.score(w, r, sessionID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type scoreFramesRequest struct {
	Frames []FrameInput `json:"frames"`
}

type scoreFramesResponse struct {
	Results []scoring.Result `json:"results"`
}

type listFramesResponse struct {
	Frames []store.FrameResult `json:"frames"`
}

// list handles GET /api/sessions/{id}/frames with optional offset and limit
// query parameters.
func (h *FramesHandler) list(w http.ResponseWriter, r *http.Request, sessionID string) {
	offset, err := queryInt(r, "offset")
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	if _, err := h.store.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	frames, err := h.store.Results().List(sessionID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list frames")
		return
	}
	if frames == nil {
		frames = []store.FrameResult{}
	}
	writeJSON(w, http.StatusOK, listFramesResponse{Frames: frames})
}

// score handles POST /api/sessions/{id}/frames. Frames are scored in order
// through the session's live state and the results are stored.
func (h *FramesHandler) score(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req scoreFramesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Frames) == 0 {
		writeError(w, http.StatusBadRequest, "At least one frame is required")
		return
	}

	results, err := h.registry.Score(sessionID, req.Frames)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Session not found")
		case errors.Is(err, ErrMissingLandmarks):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to score frames")
		}
		return
	}

	writeJSON(w, http.StatusOK, scoreFramesResponse{Results: results})
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
