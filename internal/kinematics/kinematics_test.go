package kinematics

import (
	"math"
	"testing"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
	"github.com/ayusman/musclemap/internal/pose/posetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threshold = 0.15

func deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func TestIsSideView(t *testing.T) {
	tests := []struct {
		name  string
		frame pose.Frame
		want  bool
	}{
		{"frontal", posetest.Standing(), false},
		{"profile", posetest.Hinge(0), true},
		{"one shoulder occluded in profile", posetest.Without(posetest.Hinge(10), pose.RightShoulder, pose.RightHip), true},
		{"wide shoulders but narrow hips", posetest.Without(posetest.Standing(), pose.RightHip), false},
		{"no torso landmarks", posetest.Without(posetest.Standing(), pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSideView(tt.frame, threshold))
		})
	}
}

func TestAngleCalculator_Standing(t *testing.T) {
	angles := NewAngleCalculator().Compute(posetest.Standing(), false)

	for _, j := range anatomy.AllJoints() {
		_, ok := angles.Get(j)
		assert.True(t, ok, "%s should be measured", j)
	}

	assert.InDelta(t, 180, deg(angles[anatomy.LeftElbow]), 1e-9)
	assert.InDelta(t, 180, deg(angles[anatomy.RightKnee]), 1e-9)
	assert.InDelta(t, 90, deg(angles[anatomy.LeftAnkle]), 1e-9)
	assert.InDelta(t, 0, deg(angles[anatomy.SpineJoint]), 1e-9)
	assert.Equal(t, angles[anatomy.LeftHip], angles[anatomy.RightHip], "mirrored input gives equal angles")
	assert.Equal(t, angles[anatomy.LeftShoulder], angles[anatomy.RightShoulder])
}

func TestAngleCalculator_Hinge(t *testing.T) {
	calc := NewAngleCalculator()
	for _, lean := range []float64{0, 20, 45} {
		angles := calc.Compute(posetest.Hinge(lean), true)

		assert.InDelta(t, 180-lean, deg(angles[anatomy.LeftHip]), 1e-4, "hip at lean %v", lean)
		assert.InDelta(t, lean, deg(angles[anatomy.SpineJoint]), 1e-4, "spine at lean %v", lean)
		assert.InDelta(t, 180, deg(angles[anatomy.LeftElbow]), 1e-4)
		assert.InDelta(t, 180, deg(angles[anatomy.LeftKnee]), 1e-4)
	}
}

func TestAngleCalculator_Curl(t *testing.T) {
	angles := NewAngleCalculator().Compute(posetest.Curl(1), false)
	assert.InDelta(t, 60, deg(angles[anatomy.LeftElbow]), 1e-4)
	assert.InDelta(t, 60, deg(angles[anatomy.RightElbow]), 1e-4)
}

func TestAngleCalculator_MissingLandmarks(t *testing.T) {
	f := posetest.Without(posetest.Standing(), pose.LeftWrist, pose.RightHip)
	angles := NewAngleCalculator().Compute(f, false)

	_, ok := angles.Get(anatomy.LeftElbow)
	assert.False(t, ok, "elbow needs the wrist")
	_, ok = angles.Get(anatomy.RightHip)
	assert.False(t, ok, "hip needs the hip")

	_, ok = angles.Get(anatomy.LeftShoulder)
	assert.True(t, ok, "shoulder falls back to the same-side hip")
	_, ok = angles.Get(anatomy.RightShoulder)
	assert.False(t, ok, "right shoulder has no hip reference")
}

func TestAngleSet_Degrees(t *testing.T) {
	set := AngleSet{
		anatomy.LeftElbow: math.Pi / 2,
		anatomy.LeftKnee:  math.NaN(),
		anatomy.RightKnee: geometry.Radians(123.456),
	}
	got := set.Degrees()
	require.Len(t, got, 3)
	assert.Equal(t, 90.0, got["left_elbow"])
	assert.Equal(t, 0.0, got["left_knee"])
	assert.Equal(t, 123.5, got["right_knee"])
}

func TestTrunkLean_Planar(t *testing.T) {
	f := posetest.Hinge(30)
	lean, ok := TrunkLean(f, true)
	require.True(t, ok)
	assert.InDelta(t, 30, deg(lean), 1e-6)

	_, ok = TrunkLean(posetest.Without(f, pose.LeftHip, pose.RightHip), true)
	assert.False(t, ok)
}
