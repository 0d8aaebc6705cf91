package energy

import (
	"testing"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/stability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformStress(v float64) anatomy.JointStress {
	s := make(anatomy.JointStress)
	for _, j := range anatomy.AllJoints() {
		s[j] = v
	}
	return s
}

func TestWeights_Complete(t *testing.T) {
	for g := anatomy.MuscleGroup(0); g < anatomy.NumMuscleGroups; g++ {
		row, ok := weights[g]
		require.True(t, ok, "no weights for %s", g)
		for _, p := range motion.Patterns {
			w, ok := row[p]
			assert.True(t, ok, "%s has no weight for %s", g, p)
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
		}
	}
}

func TestWeight_Fallbacks(t *testing.T) {
	assert.Equal(t, Weight(anatomy.Lats, motion.PatternGeneral), Weight(anatomy.Lats, motion.PatternUnknown))
	assert.Equal(t, 0.0, Weight(anatomy.NumMuscleGroups, motion.PatternPush))
	assert.Equal(t, 1.0, Involvement(motion.PatternGeneral, anatomy.Knee))
	assert.Equal(t, 0.5, Involvement(motion.PatternHinge, anatomy.Knee))
}

func TestSplit_NoLeak(t *testing.T) {
	e := NewEngine(config.Default())
	out := e.Split(Input{
		Stress:  uniformStress(0.5),
		Pattern: motion.PatternPush,
		Target:  anatomy.TargetFull,
	})

	assert.InDelta(t, 0.5, out.Effective[anatomy.Muscle{Group: anatomy.Pectorals, Side: anatomy.Left}], 1e-12)
	assert.InDelta(t, 0.4, out.Effective[anatomy.Muscle{Group: anatomy.Triceps, Side: anatomy.Right}], 1e-12)
	assert.Equal(t, 0.0, out.LeakRatio)
	for m, v := range out.Compensation {
		assert.Equal(t, 0.0, v, m.String())
	}
	assert.Len(t, out.Effective, len(anatomy.AllMuscles()))
}

func TestSplit_ElevationLeaksToTraps(t *testing.T) {
	e := NewEngine(config.Default())
	out := e.Split(Input{
		Stress:  uniformStress(0.5),
		Metrics: stability.Metrics{Elevation: 0.8},
		Pattern: motion.PatternPush,
		Target:  anatomy.TargetFull,
	})

	pec := anatomy.Muscle{Group: anatomy.Pectorals, Side: anatomy.Left}
	traps := anatomy.Muscle{Group: anatomy.UpperTraps, Side: anatomy.Right}
	assert.InDelta(t, 0.5*0.7, out.Effective[pec], 1e-12, "prime movers lose the leak fraction")
	assert.InDelta(t, 0.3*0.5, out.Compensation[traps], 1e-12, "sink gains fraction of mean stress")
	assert.InDelta(t, 0.3, out.LeakRatio, 1e-12)

	merged := out.Merged()
	assert.InDelta(t, 0.5*0.3+0.3*0.5, merged[traps], 1e-12)
}

func TestSplit_RegionSelectsSources(t *testing.T) {
	e := NewEngine(config.Default())
	in := Input{
		Stress:  uniformStress(0.6),
		Metrics: stability.Metrics{Valgus: 0.5},
		Pattern: motion.PatternSquat,
		Target:  anatomy.TargetUpper,
	}

	out := e.Split(in)
	quads := anatomy.Muscle{Group: anatomy.Quadriceps, Side: anatomy.Left}
	assert.InDelta(t, 0.6, out.Effective[quads], 1e-12, "lower body is off target, so not a prime mover")
	assert.Equal(t, 0.0, out.LeakRatio)
	assert.Greater(t, out.Compensation[anatomy.Muscle{Group: anatomy.Adductors, Side: anatomy.Left}], 0.0)

	in.Target = anatomy.TargetLower
	out = e.Split(in)
	assert.InDelta(t, 0.6*0.75, out.Effective[quads], 1e-12)
}

func TestSplit_SpineLean(t *testing.T) {
	e := NewEngine(config.Default())
	erector := anatomy.Muscle{Group: anatomy.ErectorSpinae, Side: anatomy.Center}

	squat := e.Split(Input{
		Stress:    uniformStress(0.4),
		Pattern:   motion.PatternSquat,
		Target:    anatomy.TargetFull,
		SpineLean: geometry.Radians(45),
	})
	assert.InDelta(t, 0.25*0.4, squat.Compensation[erector], 1e-12)

	hinge := e.Split(Input{
		Stress:    uniformStress(0.4),
		Pattern:   motion.PatternHinge,
		Target:    anatomy.TargetFull,
		SpineLean: geometry.Radians(45),
	})
	assert.Equal(t, 0.0, hinge.Compensation[erector], "a hinge is meant to lean")
}

func TestSplit_Bounded(t *testing.T) {
	e := NewEngine(config.Default())
	out := e.Split(Input{
		Stress:    uniformStress(1),
		Metrics:   stability.Metrics{Elevation: 1, Valgus: 1, Retraction: -1, PelvicTilt: 1},
		Pattern:   motion.PatternGeneral,
		Target:    anatomy.TargetFull,
		SpineLean: geometry.Radians(80),
	})
	for m, v := range out.Merged() {
		assert.GreaterOrEqual(t, v, 0.0, m.String())
		assert.LessOrEqual(t, v, 1.0, m.String())
	}
	assert.LessOrEqual(t, out.LeakRatio, 1.0)
}

func TestSplit_EmptyStress(t *testing.T) {
	e := NewEngine(config.Default())
	out := e.Split(Input{Pattern: motion.PatternHinge, Target: anatomy.TargetFull, Metrics: stability.Metrics{Elevation: 1}})
	for _, v := range out.Merged() {
		assert.Equal(t, 0.0, v)
	}
}
