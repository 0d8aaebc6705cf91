package pose

import "github.com/ayusman/musclemap/internal/geometry"

// minScale is the torso length below which a frame cannot be normalized.
const minScale = 1e-6

// Anchor records which torso landmarks fixed the origin and scale of a
// normalized frame. Positions from two frames are only comparable when their
// anchors are equal: a hip dropping out moves the origin to the remaining
// hip.
type Anchor uint8

// AnchorNone marks a frame left in image units.
const AnchorNone Anchor = 0

const (
	anchorLeftShoulder Anchor = 1 << iota
	anchorRightShoulder
	anchorLeftHip
	anchorRightHip
)

// Normalized reports whether the frame was rescaled into torso units.
func (a Anchor) Normalized() bool {
	return a != AnchorNone
}

// Normalizer rescales frames into a body-centric frame: the hip midpoint is
// the origin and the shoulder-midpoint to hip-midpoint distance is 1. A
// single shoulder or hip stands in for its missing partner.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a new, normalized frame. Confidence values are kept.
// When no shoulder or no hip is present, or the torso has collapsed to a
// point, a copy of the input is returned unchanged.
func (n *Normalizer) Normalize(f Frame) Frame {
	origin, scale, anchor := reference(f)
	if !anchor.Normalized() {
		return f.Clone()
	}

	out := make(Frame, len(f))
	for l, p := range f {
		q := p.Sub(origin).Scale(1 / scale)
		q.Confidence = p.Confidence
		out[l] = q
	}
	return out
}

// AnchorOf returns the anchor Normalize uses for f. Normalizing keeps the
// landmark set and gives a unit torso, so AnchorOf(Normalize(f)) equals
// AnchorOf(f).
func AnchorOf(f Frame) Anchor {
	_, _, anchor := reference(f)
	return anchor
}

func reference(f Frame) (origin geometry.Point3D, scale float64, anchor Anchor) {
	shoulders, sok := f.Midpoint(Shoulders)
	hips, hok := f.Midpoint(Hips)
	if !sok || !hok {
		return geometry.Point3D{}, 0, AnchorNone
	}

	scale = shoulders.Distance(hips)
	// Avoid division by zero
	if scale < minScale || !geometry.IsFinite(scale) {
		return geometry.Point3D{}, 0, AnchorNone
	}

	for l, bit := range map[Landmark]Anchor{
		LeftShoulder:  anchorLeftShoulder,
		RightShoulder: anchorRightShoulder,
		LeftHip:       anchorLeftHip,
		RightHip:      anchorRightHip,
	} {
		if f.Has(l) {
			anchor |= bit
		}
	}
	return hips, scale, anchor
}

// TorsoLength returns the shoulder-midpoint to hip-midpoint distance of f,
// using whichever sides are present.
func TorsoLength(f Frame) (float64, bool) {
	s, sok := f.Midpoint(Shoulders)
	h, hok := f.Midpoint(Hips)
	if !sok || !hok {
		return 0, false
	}
	d := s.Distance(h)
	if d < minScale {
		return 0, false
	}
	return d, true
}
