// Package energy maps joint stress onto muscles and splits the result into
// force reaching the intended prime movers and force leaking into
// compensating muscles.
package energy

import (
	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/stability"
)

// Input is everything the engine needs for one frame.
type Input struct {
	Stress    anatomy.JointStress
	Metrics   stability.Metrics
	Pattern   motion.Pattern
	Target    anatomy.Target
	SpineLean float64 // radians
}

// Output holds the muscle scores of one frame on a 0..1 scale.
type Output struct {
	Effective    anatomy.Usage
	Compensation anatomy.Usage
	// LeakRatio is the share of prime mover force moved to compensation.
	LeakRatio float64
}

// Merged returns effective plus compensation, capped at 1.
func (o Output) Merged() anatomy.Usage {
	out := o.Effective.Clone()
	for m, v := range o.Compensation {
		out[m] = geometry.Clamp(out[m]+v, 0, 1)
	}
	return out
}

// rule moves a fraction of the prime mover force to a sink when a stability
// signal passes its cutoff.
type rule struct {
	fraction float64
	sources  anatomy.Region // RegionCore selects every prime mover
	sink     anatomy.MuscleGroup
}

// Engine computes energy leak splits.
type Engine struct {
	cfg  config.LeakTuning
	stab config.StabilityTuning
}

// NewEngine creates an Engine from the tuning table.
func NewEngine(t *config.Tuning) *Engine {
	return &Engine{cfg: t.Leak, stab: t.Stability}
}

// Split computes the effective and compensation scores of a frame.
//
// Every muscle starts with the stress of its source joint times its pattern
// weight. Each triggered leak rule then takes its fraction from the prime
// movers in its source region and credits the sink with the fraction times
// the mean joint stress.
func (e *Engine) Split(in Input) Output {
	out := Output{
		Effective:    make(anatomy.Usage),
		Compensation: make(anatomy.Usage),
	}

	var primes []anatomy.Muscle
	var before float64
	for _, m := range anatomy.AllMuscles() {
		w := Weight(m.Group, in.Pattern)
		v := clamp01(in.Stress[m.SourceJoint()] * w)
		out.Effective[m] = v
		if w >= e.cfg.PrimeMoverWeight && in.Target.Includes(m.Region()) {
			primes = append(primes, m)
			before += v
		}
	}

	mean := meanStress(in.Stress)
	var moved float64
	for _, r := range e.rules(in) {
		for _, m := range primes {
			if r.sources != anatomy.RegionCore && m.Region() != r.sources {
				continue
			}
			take := out.Effective[m] * r.fraction
			out.Effective[m] -= take
			moved += take
		}
		credit := r.fraction * mean
		for _, m := range anatomy.AllMuscles() {
			if m.Group == r.sink {
				out.Compensation[m] = clamp01(out.Compensation[m] + credit)
			}
		}
	}

	if before > 0 {
		out.LeakRatio = clamp01(moved / before)
	}
	return out
}

// rules returns the leak rules triggered by the frame.
func (e *Engine) rules(in Input) []rule {
	var rules []rule
	m := in.Metrics
	if m.Elevation > e.stab.ElevationWarn {
		rules = append(rules, rule{e.cfg.ElevationFraction, anatomy.RegionUpper, anatomy.UpperTraps})
	}
	if m.Valgus > e.stab.ValgusWarn {
		rules = append(rules, rule{e.cfg.ValgusFraction, anatomy.RegionLower, anatomy.Adductors})
	}
	if m.Retraction < e.stab.RetractionWarn {
		rules = append(rules, rule{e.cfg.RetractionFraction, anatomy.RegionUpper, anatomy.AnteriorDeltoid})
	}
	if m.PelvicTilt > e.stab.PelvicTiltWarn {
		rules = append(rules, rule{e.cfg.PelvicTiltFraction, anatomy.RegionLower, anatomy.Obliques})
	}
	if geometry.Degrees(in.SpineLean) > e.cfg.SpineNeutral && in.Pattern != motion.PatternHinge {
		rules = append(rules, rule{e.cfg.SpineLeanFraction, anatomy.RegionCore, anatomy.ErectorSpinae})
	}
	return rules
}

func meanStress(s anatomy.JointStress) float64 {
	if len(s) == 0 {
		return 0
	}
	return clamp01(s.Total() / float64(len(s)))
}

func clamp01(v float64) float64 {
	if !geometry.IsFinite(v) {
		return 0
	}
	return geometry.Clamp(v, 0, 1)
}
