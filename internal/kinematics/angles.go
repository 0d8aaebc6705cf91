package kinematics

import (
	"math"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
)

// AngleSet maps joints to their angle in radians for one frame. Joints whose
// landmarks are missing are absent.
type AngleSet map[anatomy.Joint]float64

// Get returns the angle of j and whether it was measured.
func (a AngleSet) Get(j anatomy.Joint) (float64, bool) {
	v, ok := a[j]
	return v, ok
}

// Degrees returns the set keyed by joint name in degrees, clamped to
// [0, 180] and rounded to 0.1.
func (a AngleSet) Degrees() map[string]float64 {
	out := make(map[string]float64, len(a))
	for j, rad := range a {
		deg := geometry.Clamp(geometry.Degrees(rad), 0, 180)
		if !geometry.IsFinite(deg) {
			deg = 0
		}
		out[j.String()] = math.Round(deg*10) / 10
	}
	return out
}

// Clone returns a copy of a.
func (a AngleSet) Clone() AngleSet {
	out := make(AngleSet, len(a))
	for j, v := range a {
		out[j] = v
	}
	return out
}

// up is the image-space direction pointing from the feet to the head.
var up = geometry.Point3D{Y: -1}

// limb describes the landmarks of one sided joint angle.
type limb struct {
	joint anatomy.Joint
	// The angle is measured at vertex between a and c. When trunk is set,
	// the trunk midpoint of that pair takes the place of c.
	a, vertex, c pose.Landmark
	trunk        pose.Pair
	planar       bool
}

var limbs = []limb{
	{joint: anatomy.LeftShoulder, a: pose.LeftElbow, vertex: pose.LeftShoulder, trunk: pose.Hips},
	{joint: anatomy.RightShoulder, a: pose.RightElbow, vertex: pose.RightShoulder, trunk: pose.Hips},
	{joint: anatomy.LeftElbow, a: pose.LeftShoulder, vertex: pose.LeftElbow, c: pose.LeftWrist},
	{joint: anatomy.RightElbow, a: pose.RightShoulder, vertex: pose.RightElbow, c: pose.RightWrist},
	{joint: anatomy.LeftHip, a: pose.LeftKnee, vertex: pose.LeftHip, trunk: pose.Shoulders, planar: true},
	{joint: anatomy.RightHip, a: pose.RightKnee, vertex: pose.RightHip, trunk: pose.Shoulders, planar: true},
	{joint: anatomy.LeftKnee, a: pose.LeftHip, vertex: pose.LeftKnee, c: pose.LeftAnkle, planar: true},
	{joint: anatomy.RightKnee, a: pose.RightHip, vertex: pose.RightKnee, c: pose.RightAnkle, planar: true},
	{joint: anatomy.LeftAnkle, a: pose.LeftKnee, vertex: pose.LeftAnkle, c: pose.LeftFootIndex, planar: true},
	{joint: anatomy.RightAnkle, a: pose.RightKnee, vertex: pose.RightAnkle, c: pose.RightFootIndex, planar: true},
}

// AngleCalculator computes joint angles from a normalized frame.
type AngleCalculator struct{}

// NewAngleCalculator creates an AngleCalculator.
func NewAngleCalculator() *AngleCalculator {
	return &AngleCalculator{}
}

// Compute returns the joint angles of f. When sideView is set, lower body
// and spine angles are measured on the image plane only, since depth is
// unreliable in profile.
func (c *AngleCalculator) Compute(f pose.Frame, sideView bool) AngleSet {
	angles := make(AngleSet, anatomy.NumJoints)

	for _, l := range limbs {
		a, aok := f[l.a]
		b, bok := f[l.vertex]
		if !aok || !bok {
			continue
		}

		var end geometry.Point3D
		if l.trunk != (pose.Pair{}) {
			ref, ok := trunkRef(f, l.trunk, l.joint.Side())
			if !ok {
				continue
			}
			end = ref
		} else {
			p, ok := f[l.c]
			if !ok {
				continue
			}
			end = p
		}

		if sideView && l.planar {
			angles[l.joint] = geometry.Angle2D(a, b, end)
		} else {
			angles[l.joint] = geometry.Angle(a, b, end)
		}
	}

	if lean, ok := TrunkLean(f, sideView); ok {
		angles[anatomy.SpineJoint] = lean
	}
	return angles
}

// TrunkLean returns the angle between the hip-to-shoulder vector and image
// up, in radians.
func TrunkLean(f pose.Frame, planar bool) (float64, bool) {
	shoulders, sok := f.Midpoint(pose.Shoulders)
	hips, hok := f.Midpoint(pose.Hips)
	if !sok || !hok {
		return 0, false
	}
	trunk := shoulders.Sub(hips)
	if planar {
		trunk = trunk.Flat()
	}
	if trunk.Norm() == 0 {
		return 0, false
	}
	return geometry.VectorAngle(trunk, up), true
}

// trunkRef returns the midpoint of the pair, falling back to the landmark
// on the requested side when the other side is missing.
func trunkRef(f pose.Frame, pair pose.Pair, side anatomy.Side) (geometry.Point3D, bool) {
	if mid, ok := f.BothMidpoint(pair); ok {
		return mid, true
	}
	l := pair.Left
	if side == anatomy.Right {
		l = pair.Right
	}
	p, ok := f[l]
	return p, ok
}
