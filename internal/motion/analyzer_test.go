package motion

import (
	"testing"

	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/kinematics"
	"github.com/ayusman/musclemap/internal/pose"
	"github.com/ayusman/musclemap/internal/pose/posetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 0.1

// feed runs frames through a fresh analyzer and returns every result.
func feed(t *testing.T, mode ContractionMode, frames []pose.Frame) []Result {
	t.Helper()
	a := NewAnalyzer(config.Default().Motion, mode)
	return feedInto(a, frames)
}

func feedInto(a *Analyzer, frames []pose.Frame) []Result {
	norm := pose.NewNormalizer()
	calc := kinematics.NewAngleCalculator()

	results := make([]Result, 0, len(frames))
	for _, f := range frames {
		n := norm.Normalize(f)
		side := kinematics.IsSideView(n, 0.15)
		results = append(results, a.Update(n, calc.Compute(n, side), dt))
	}
	return results
}

func sequence(steps int, build func(x float64) pose.Frame) []pose.Frame {
	frames := make([]pose.Frame, 0, steps+1)
	for i := 0; i <= steps; i++ {
		frames = append(frames, build(float64(i)/float64(steps)))
	}
	return frames
}

func TestAnalyzer_FirstFrameStabilizing(t *testing.T) {
	results := feed(t, ModeIsotonic, []pose.Frame{posetest.Standing()})
	require.Len(t, results, 1)
	assert.Equal(t, StateStabilizing, results[0].State)
	assert.Equal(t, PatternUnknown, results[0].Pattern)
	assert.True(t, results[0].Stabilizing())
}

func TestAnalyzer_AnchorChangeIsNotMovement(t *testing.T) {
	still := posetest.Transform(posetest.Standing(), 0.3, geometry.NewPoint(0.5, 0.5, 0))

	tests := []struct {
		name    string
		dropped []pose.Landmark
	}{
		{"one hip", []pose.Landmark{pose.RightHip}},
		{"one shoulder", []pose.Landmark{pose.LeftShoulder}},
		{"both hips", []pose.Landmark{pose.LeftHip, pose.RightHip}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := []pose.Frame{still, still, still, posetest.Without(still, tt.dropped...), still, still}
			for i, r := range feed(t, ModeIsotonic, frames) {
				assert.Equal(t, StateStabilizing, r.State, "frame %d", i)
				assert.Equal(t, 0.0, r.Speed, "frame %d", i)
				assert.Equal(t, 0.0, r.Intent, "frame %d", i)
			}
		})
	}
}

func TestAnalyzer_StillFramesStabilizing(t *testing.T) {
	frames := sequence(5, func(float64) pose.Frame { return posetest.Standing() })
	for i, r := range feed(t, ModeIsotonic, frames) {
		assert.Equal(t, StateStabilizing, r.State, "frame %d", i)
		assert.Equal(t, PatternUnknown, r.Pattern, "frame %d", i)
		assert.Equal(t, 0.0, r.Intent, "frame %d", i)
	}
}

func TestAnalyzer_IsometricHold(t *testing.T) {
	frames := sequence(5, func(float64) pose.Frame { return posetest.Press(0.5) })
	results := feed(t, ModeIsometric, frames)

	assert.Equal(t, StateStabilizing, results[0].State, "history is cold on the first frame")
	for _, r := range results[1:] {
		assert.Equal(t, StateIsometric, r.State)
		assert.Equal(t, PatternGeneral, r.Pattern)
	}
}

func TestAnalyzer_Patterns(t *testing.T) {
	tests := []struct {
		name    string
		build   func(x float64) pose.Frame
		pattern Pattern
		state   State
	}{
		{"hinge lowering", func(x float64) pose.Frame { return posetest.Hinge(50 * x) }, PatternHinge, StateEccentric},
		{"hinge rising", func(x float64) pose.Frame { return posetest.Hinge(50 * (1 - x)) }, PatternHinge, StateConcentric},
		{"squat descent", posetest.Squat, PatternSquat, StateEccentric},
		{"press", posetest.Press, PatternPush, StateConcentric},
		{"curl", posetest.Curl, PatternPull, StateConcentric},
		{"curl lowering", func(x float64) pose.Frame { return posetest.Curl(1 - x) }, PatternPull, StateEccentric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := feed(t, ModeIsotonic, sequence(10, tt.build))
			last := results[len(results)-1]
			assert.Equal(t, tt.pattern, last.Pattern)
			assert.Equal(t, tt.state, last.State)
			assert.Greater(t, last.Speed, 0.15)
		})
	}
}

func TestAnalyzer_Intent(t *testing.T) {
	push := feed(t, ModeIsotonic, sequence(10, posetest.Press))
	assert.Greater(t, push[len(push)-1].Intent, 0.0)

	pull := feed(t, ModeIsotonic, sequence(10, func(x float64) pose.Frame { return posetest.Press(1 - x) }))
	assert.Less(t, pull[len(pull)-1].Intent, 0.0)

	for _, r := range append(push, pull...) {
		assert.GreaterOrEqual(t, r.Intent, -1.0)
		assert.LessOrEqual(t, r.Intent, 1.0)
	}
}

func TestAnalyzer_Reset(t *testing.T) {
	a := NewAnalyzer(config.Default().Motion, ModeIsotonic)
	feedInto(a, sequence(10, func(x float64) pose.Frame { return posetest.Hinge(50 * x) }))
	assert.Equal(t, 10, a.Len(), "history is capped")

	a.Reset()
	assert.Equal(t, 0, a.Len())

	results := feedInto(a, []pose.Frame{posetest.Press(0)})
	assert.Equal(t, StateStabilizing, results[0].State)
}

func TestAnalyzer_Hysteresis(t *testing.T) {
	a := NewAnalyzer(config.Default().Motion, ModeIsotonic)

	assert.Equal(t, PatternGeneral, a.commit(PatternGeneral), "first pattern commits at once")
	assert.Equal(t, PatternGeneral, a.commit(PatternHinge))
	assert.Equal(t, PatternGeneral, a.commit(PatternHinge))
	assert.Equal(t, PatternHinge, a.commit(PatternHinge), "third consecutive frame commits")

	assert.Equal(t, PatternHinge, a.commit(PatternSquat))
	assert.Equal(t, PatternHinge, a.commit(PatternPush), "interrupted streak restarts")
	assert.Equal(t, PatternHinge, a.commit(PatternSquat))
	assert.Equal(t, PatternHinge, a.commit(PatternHinge), "committed pattern clears the candidate")
	assert.Equal(t, PatternHinge, a.commit(PatternSquat))
}

func TestAnalyzer_ZeroDt(t *testing.T) {
	a := NewAnalyzer(config.Default().Motion, ModeIsotonic)
	calc := kinematics.NewAngleCalculator()
	for i := 0; i < 3; i++ {
		f := posetest.Hinge(float64(i) * 10)
		r := a.Update(f, calc.Compute(f, true), 0)
		assert.Equal(t, StateStabilizing, r.State)
		assert.Equal(t, 0.0, r.Speed)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("ISOKINETIC")
	require.NoError(t, err)
	assert.Equal(t, ModeIsokinetic, m)

	_, err = ParseMode("isotonic")
	assert.Error(t, err)
}

func TestAnalyzer_PullMargins(t *testing.T) {
	snap := snapshot{points: map[pose.Landmark]geometry.Point3D{
		pose.LeftShoulder:  geometry.NewPoint(-0.2, -1, 0),
		pose.RightShoulder: geometry.NewPoint(0.2, -1, 0),
		pose.LeftElbow:     geometry.NewPoint(-0.2, -0.7, 0),
		pose.RightElbow:    geometry.NewPoint(0.2, -0.7, 0),
		pose.LeftWrist:     geometry.NewPoint(-0.2, -0.5, 0),
		pose.RightWrist:    geometry.NewPoint(0.2, -0.5, 0),
	}}

	tests := []struct {
		name        string
		elbowBehind float64
		wristBelow  float64
		want        bool
	}{
		{"wrists below margin", 10, 0.4, true},
		{"wrists above margin", 10, 0.6, false},
		{"elbow margin ignores wrists", 0.4, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Motion
			cfg.PullElbowBehind = tt.elbowBehind
			cfg.PullWristBelow = tt.wristBelow
			a := NewAnalyzer(cfg, ModeIsotonic)
			a.history = append(a.history, snap)
			assert.Equal(t, tt.want, a.pulling())
		})
	}
}
