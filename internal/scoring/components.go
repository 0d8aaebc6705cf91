package scoring

import (
	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/energy"
	"github.com/ayusman/musclemap/internal/kinematics"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/pose"
	"github.com/ayusman/musclemap/internal/stability"
)

// Normalizer maps a raw frame into body-centric coordinates.
type Normalizer interface {
	Normalize(f pose.Frame) pose.Frame
}

// AngleCalculator derives joint angles from a normalized frame.
type AngleCalculator interface {
	Compute(f pose.Frame, sideView bool) kinematics.AngleSet
}

// StabilityEstimator derives compensation metrics and warnings.
type StabilityEstimator interface {
	Estimate(f pose.Frame, sideView bool) stability.Metrics
	Warnings(m stability.Metrics) string
}

// MotionClassifier classifies motion using its own frame history.
type MotionClassifier interface {
	Update(f pose.Frame, angles kinematics.AngleSet, dt float64) motion.Result
	Reset()
}

// JointController runs the per-joint spring-damper models in chain order.
type JointController interface {
	Step(angles map[anatomy.Joint]float64, dt float64, weight func(anatomy.Joint) float64) anatomy.JointStress
	SkipAll(dt float64)
	Reset()
}

// EnergyLeakEngine splits joint stress into effective and compensation
// muscle scores.
type EnergyLeakEngine interface {
	Split(in energy.Input) energy.Output
}
