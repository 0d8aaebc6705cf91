package detector

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
)

// response is one reply line of the pose service.
type response struct {
	// Landmarks holds the 33 pose landmarks in MediaPipe index order, or
	// nothing when no person was found.
	Landmarks []jsonLandmark `json:"landmarks"`
	Error     string         `json:"error,omitempty"`
}

type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// parseResponse decodes a service reply into a frame. Extra landmarks
// beyond the pose model's 33 are ignored.
func parseResponse(line []byte) (pose.Frame, bool, error) {
	var r response
	if err := json.Unmarshal(line, &r); err != nil {
		return nil, false, fmt.Errorf("parse response: %w", err)
	}
	if r.Error != "" {
		return nil, false, fmt.Errorf("pose service: %s", r.Error)
	}
	if len(r.Landmarks) == 0 {
		return nil, false, nil
	}

	points := make([]geometry.Point3D, 0, len(r.Landmarks))
	for _, lm := range r.Landmarks {
		points = append(points, geometry.Point3D{
			X:          lm.X,
			Y:          lm.Y,
			Z:          lm.Z,
			Confidence: lm.Visibility,
		})
	}
	return pose.FromSlice(points), true, nil
}
