// Package posetest builds synthetic landmark frames for tests and mocks.
//
// Poses use image coordinates (y grows downward, negative z is toward the
// camera) with the hip midpoint at the origin and a torso of unit length.
// Frontal poses are exactly mirror symmetric: the right side is the left
// side with x negated.
package posetest

import (
	"math"

	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
)

const (
	shoulderHalfWidth = 0.25
	hipHalfWidth      = 0.125
	upperArm          = 0.5
	forearm           = 0.5
	thigh             = 1.0
	shin              = 1.0
	foot              = 0.25
)

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// sagittal returns a unit direction in the y/z plane at angle deg from
// straight down, rotating toward the camera.
func sagittal(deg float64) geometry.Point3D {
	return geometry.Point3D{Y: math.Cos(rad(deg)), Z: -math.Sin(rad(deg))}
}

// mirrored sets the left landmark to p and the right landmark to p with x
// negated.
func mirrored(f pose.Frame, pair pose.Pair, p geometry.Point3D) {
	p.Confidence = 1
	f[pair.Left] = p
	r := p
	r.X = -p.X
	f[pair.Right] = r
}

// frontal builds a symmetric frontal pose.
//
// lean tilts the trunk toward the camera, thighDeg and shinDeg set the leg
// segment angles from vertical, armDeg sets the upper arm angle from
// vertical and elbowDeg the elbow angle.
func frontal(lean, thighDeg, shinDeg, armDeg, elbowDeg float64) pose.Frame {
	f := make(pose.Frame, pose.NumLandmarks)

	trunk := geometry.Point3D{Y: -math.Cos(rad(lean)), Z: -math.Sin(rad(lean))}
	shoulder := geometry.Point3D{X: shoulderHalfWidth}.Add(trunk)
	hip := geometry.Point3D{X: hipHalfWidth}

	mirrored(f, pose.Shoulders, shoulder)
	mirrored(f, pose.Hips, hip)

	head := shoulder.Add(trunk.Scale(0.375))
	mirrored(f, pose.Ears, geometry.Point3D{X: 0.125, Y: head.Y, Z: head.Z})
	nose := geometry.Point3D{Y: head.Y, Z: head.Z - 0.125, Confidence: 1}
	f[pose.Nose] = nose

	elbow := shoulder.Add(sagittal(armDeg).Scale(upperArm))
	wrist := elbow.Add(sagittal(armDeg + 180 - elbowDeg).Scale(forearm))
	mirrored(f, pose.Elbows, elbow)
	mirrored(f, pose.Wrists, wrist)

	knee := hip.Add(sagittal(thighDeg).Scale(thigh))
	ankle := knee.Add(sagittal(-shinDeg).Scale(shin))
	toe := ankle.Add(geometry.Point3D{Z: -foot})
	mirrored(f, pose.Knees, knee)
	mirrored(f, pose.Ankles, ankle)
	mirrored(f, pose.FootTips, toe)

	return f
}

// Standing returns an upright frontal pose with the arms hanging straight.
func Standing() pose.Frame {
	return frontal(0, 0, 0, 0, 180)
}

// Squat returns a frontal squat at depth in [0, 1]. The knees and hips flex
// together while the arms hang.
func Squat(depth float64) pose.Frame {
	return frontal(20*depth, 80*depth, 30*depth, 0, 180)
}

// Press returns a frontal press at extension in [0, 1]: the elbow opens from
// 90 to 180 degrees while the upper arm rises to horizontal.
func Press(extension float64) pose.Frame {
	return frontal(0, 0, 0, 45+45*extension, 90+90*extension)
}

// Curl returns a frontal biceps curl at flexion in [0, 1]: the elbow closes
// from 180 to 60 degrees with the upper arm hanging.
func Curl(flexion float64) pose.Frame {
	return frontal(0, 0, 0, 0, 180-120*flexion)
}

// Shrug returns a standing pose with the shoulders raised toward the ears by
// amount in [0, 1].
func Shrug(amount float64) pose.Frame {
	f := Standing()
	lift := geometry.Point3D{Y: -0.3 * amount, Confidence: 1}
	for _, l := range []pose.Landmark{
		pose.LeftShoulder, pose.RightShoulder,
		pose.LeftElbow, pose.RightElbow,
		pose.LeftWrist, pose.RightWrist,
	} {
		f[l] = f[l].Add(lift)
	}
	return f
}

// Hinge returns a profile view of a hip hinge with the trunk leaning lean
// degrees forward, legs straight and arms hanging vertically.
// Both sides share the same x, so the frame reads as a side view.
func Hinge(lean float64) pose.Frame {
	f := make(pose.Frame, pose.NumLandmarks)

	// In profile the subject faces +x; the left side is nearer the camera.
	shoulder := geometry.NewPoint(math.Sin(rad(lean)), -math.Cos(rad(lean)), 0)
	set := func(pair pose.Pair, p geometry.Point3D) {
		p.Confidence = 1
		l, r := p, p
		l.Z -= 0.125
		r.Z += 0.125
		f[pair.Left] = l
		f[pair.Right] = r
	}

	set(pose.Shoulders, shoulder)
	set(pose.Hips, geometry.NewPoint(0, 0, 0))
	set(pose.Ears, shoulder.Add(geometry.Point3D{X: 0.375 * math.Sin(rad(lean)), Y: -0.375 * math.Cos(rad(lean))}))
	f[pose.Nose] = f[pose.LeftEar].Add(geometry.NewPoint(0.1, 0, 0))

	set(pose.Elbows, shoulder.Add(geometry.Point3D{Y: upperArm}))
	set(pose.Wrists, shoulder.Add(geometry.Point3D{Y: upperArm + forearm}))
	set(pose.Knees, geometry.NewPoint(0, thigh, 0))
	set(pose.Ankles, geometry.NewPoint(0, thigh+shin, 0))
	set(pose.FootTips, geometry.NewPoint(foot, thigh+shin, 0))

	return f
}

// Transform scales f by s and then shifts it by offset, as a camera at a
// different distance and framing would.
func Transform(f pose.Frame, s float64, offset geometry.Point3D) pose.Frame {
	out := make(pose.Frame, len(f))
	for l, p := range f {
		q := p.Scale(s).Add(offset)
		q.Confidence = p.Confidence
		out[l] = q
	}
	return out
}

// Without returns a copy of f with the given landmarks removed.
func Without(f pose.Frame, ls ...pose.Landmark) pose.Frame {
	out := f.Clone()
	for _, l := range ls {
		delete(out, l)
	}
	return out
}
