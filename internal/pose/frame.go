package pose

import (
	"encoding/json"

	"github.com/ayusman/musclemap/internal/geometry"
)

// DefaultMinConfidence is the landmark confidence below which a point is
// treated as absent.
const DefaultMinConfidence = 0.5

// Frame holds the landmarks of one sampled instant. A missing key is an
// absent landmark.
type Frame map[Landmark]geometry.Point3D

// Get returns the landmark and whether it is present.
func (f Frame) Get(l Landmark) (geometry.Point3D, bool) {
	p, ok := f[l]
	return p, ok
}

// Has reports whether every given landmark is present.
func (f Frame) Has(ls ...Landmark) bool {
	for _, l := range ls {
		if _, ok := f[l]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of f.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	for l, p := range f {
		out[l] = p
	}
	return out
}

// Reliable returns a copy of f without landmarks whose confidence is below
// min or whose coordinates are not finite.
func (f Frame) Reliable(min float64) Frame {
	out := make(Frame, len(f))
	for l, p := range f {
		if !l.Valid() || p.Confidence < min || !p.IsFinite() {
			continue
		}
		out[l] = p
	}
	return out
}

// Midpoint returns the midpoint of a pair when both sides are present, or
// the single present side otherwise.
func (f Frame) Midpoint(p Pair) (geometry.Point3D, bool) {
	l, lok := f[p.Left]
	r, rok := f[p.Right]
	switch {
	case lok && rok:
		return l.Midpoint(r), true
	case lok:
		return l, true
	case rok:
		return r, true
	default:
		return geometry.Point3D{}, false
	}
}

// BothMidpoint is Midpoint but requires both sides of the pair.
func (f Frame) BothMidpoint(p Pair) (geometry.Point3D, bool) {
	l, lok := f[p.Left]
	r, rok := f[p.Right]
	if !lok || !rok {
		return geometry.Point3D{}, false
	}
	return l.Midpoint(r), true
}

// FromSlice builds a frame from landmarks in index order. Extra entries
// beyond the known landmark set are ignored.
func FromSlice(points []geometry.Point3D) Frame {
	f := make(Frame, len(points))
	for i, p := range points {
		if i >= int(NumLandmarks) {
			break
		}
		f[Landmark(i)] = p
	}
	return f
}

// MarshalJSON encodes the frame as an object keyed by landmark name.
func (f Frame) MarshalJSON() ([]byte, error) {
	m := make(map[string]geometry.Point3D, len(f))
	for l, p := range f {
		if l.Valid() {
			m[l.String()] = p
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by landmark name. Unknown names are
// ignored.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var m map[string]geometry.Point3D
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		*f = nil
		return nil
	}
	out := make(Frame, len(m))
	for name, p := range m {
		if l, ok := ParseLandmark(name); ok {
			out[l] = p
		}
	}
	*f = out
	return nil
}
