// Package api provides HTTP API handlers for analysis sessions and their
// scored frames.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// FrameInput is one landmark frame submitted for scoring. Landmarks are
// accepted either as an object keyed by landmark name or as an array in
// landmark index order. Dt is the seconds since the previous frame.
type FrameInput struct {
	Landmarks pose.Frame `json:"landmarks"`
	Dt        float64    `json:"dt"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *FrameInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Landmarks json.RawMessage `json:"landmarks"`
		Dt        float64         `json:"dt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in.Dt = raw.Dt
	in.Landmarks = nil

	trimmed := bytes.TrimSpace(raw.Landmarks)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil
	case trimmed[0] == '[':
		var points []geometry.Point3D
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return err
		}
		in.Landmarks = pose.FromSlice(points)
		return nil
	default:
		return json.Unmarshal(trimmed, &in.Landmarks)
	}
}
