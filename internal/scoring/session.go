// Package scoring turns a stream of landmark frames into per-frame muscle
// and joint usage scores.
package scoring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/energy"
	"github.com/ayusman/musclemap/internal/joint"
	"github.com/ayusman/musclemap/internal/kinematics"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/pose"
	"github.com/ayusman/musclemap/internal/stability"
	"go.uber.org/zap"
)

// ErrNilFrame is returned when Process is called without a frame.
var ErrNilFrame = errors.New("nil landmark frame")

// Context is fixed for the lifetime of a session.
type Context struct {
	Target anatomy.Target         `json:"target_region"`
	Mode   motion.ContractionMode `json:"contraction_mode"`
}

// DefaultContext scores the full body for isotonic exercise.
func DefaultContext() Context {
	return Context{Target: anatomy.TargetFull, Mode: motion.ModeIsotonic}
}

// Validate checks the context values.
func (c Context) Validate() error {
	if _, err := anatomy.ParseTarget(string(c.Target)); err != nil {
		return err
	}
	if _, err := motion.ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

// Option configures a Session.
type Option func(*Session)

// WithTuning replaces the default tuning table.
func WithTuning(t *config.Tuning) Option {
	return func(s *Session) {
		s.tuning = t
	}
}

// WithLogger sets the logger used for session diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithNormalizer replaces the normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(s *Session) {
		s.normalizer = n
	}
}

// WithMotionClassifier replaces the motion classifier.
func WithMotionClassifier(m MotionClassifier) Option {
	return func(s *Session) {
		s.motion = m
	}
}

// WithEnergyLeakEngine replaces the energy leak engine.
func WithEnergyLeakEngine(e EnergyLeakEngine) Option {
	return func(s *Session) {
		s.energy = e
	}
}

// Session scores one independent sequence of frames. It owns the motion
// history and joint controller state of that sequence, so frames must be
// fed in temporal order and unrelated sequences need their own Session.
// Calls are serialized; a Session may be shared between goroutines that
// take turns.
type Session struct {
	ctx    Context
	tuning *config.Tuning
	logger *zap.Logger

	normalizer Normalizer
	angles     AngleCalculator
	stability  StabilityEstimator
	motion     MotionClassifier
	joints     JointController
	energy     EnergyLeakEngine

	frames int
	mu     sync.Mutex
}

// NewSession creates a session for the given context.
func NewSession(ctx Context, opts ...Option) (*Session, error) {
	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}

	s := &Session{ctx: ctx}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.tuning == nil {
		s.tuning = config.Default()
	}
	if err := s.tuning.Validate(); err != nil {
		return nil, err
	}

	if s.normalizer == nil {
		s.normalizer = pose.NewNormalizer()
	}
	if s.angles == nil {
		s.angles = kinematics.NewAngleCalculator()
	}
	if s.stability == nil {
		s.stability = stability.NewEstimator(s.tuning.Stability)
	}
	if s.motion == nil {
		s.motion = motion.NewAnalyzer(s.tuning.Motion, ctx.Mode)
	}
	if s.joints == nil {
		set, err := joint.NewSet(s.tuning)
		if err != nil {
			return nil, err
		}
		s.joints = set
	}
	if s.energy == nil {
		s.energy = energy.NewEngine(s.tuning)
	}

	s.logger.Debug("scoring session created",
		zap.String("target", string(ctx.Target)),
		zap.String("mode", string(ctx.Mode)))
	return s, nil
}

// Context returns the session context.
func (s *Session) Context() Context {
	return s.ctx
}

// Frames returns the number of frames processed since creation or the last
// Reset.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Process scores one frame taken dt seconds after the previous one.
//
// Frames must arrive in temporal order. Degenerate geometry never fails:
// unusable landmarks are dropped and non-finite scores become zero. Only a
// nil frame is rejected.
func (s *Session) Process(f pose.Frame, dt float64) (Result, error) {
	if f == nil {
		return Result{}, ErrNilFrame
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++

	t := s.tuning
	frame := s.normalizer.Normalize(f.Reliable(t.MinConfidence))
	sideView := kinematics.IsSideView(frame, t.SideViewThreshold)
	angles := s.angles.Compute(frame, sideView)
	metrics := s.stability.Estimate(frame, sideView)
	warning := s.stability.Warnings(metrics)

	mres := s.motion.Update(frame, angles, dt)
	if mres.Stabilizing() {
		s.joints.SkipAll(dt)
		return EmptyResult(), nil
	}

	modeFactor := s.modeFactor()
	stress := s.joints.Step(angles, dt, func(j anatomy.Joint) float64 {
		return energy.Involvement(mres.Pattern, j.Kind()) * modeFactor
	})

	split := s.energy.Split(energy.Input{
		Stress:    stress,
		Metrics:   metrics,
		Pattern:   mres.Pattern,
		Target:    s.ctx.Target,
		SpineLean: angles[anatomy.SpineJoint],
	})

	usage := split.Merged()
	applyTension(usage, frame, angles, t.Tension)
	applyInhibition(usage, mres.Intent, t.Inhibition)
	if sideView {
		mirror(usage)
	}
	applyTargetGain(usage, s.ctx.Target, t.Output.OffTargetGain)

	jointScores := make(map[string]float64, len(stress))
	for j, v := range stress {
		jointScores[j.String()] = Sanitize(v * 100)
	}

	return Result{
		DetailedMuscleUsage: finalize(usage, t.Output.ZeroGate),
		RomData:             angles.Degrees(),
		BiomechPattern:      string(mres.Pattern),
		StabilityWarning:    warning,
		MovementState:       string(mres.State),
		JointStress:         jointScores,
	}, nil
}

// Reset clears all cross-frame state so the session can score an unrelated
// sequence.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.motion.Reset()
	s.joints.Reset()
	s.frames = 0
	s.logger.Debug("scoring session reset")
}

func (s *Session) modeFactor() float64 {
	c := s.tuning.Chain
	switch s.ctx.Mode {
	case motion.ModeIsometric:
		return c.IsometricFactor
	case motion.ModeIsokinetic:
		return c.IsokineticFactor
	default:
		return c.IsotonicFactor
	}
}
