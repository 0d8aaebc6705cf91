// Package joint models each joint as a spring-damper with friction that
// turns angle changes into a bounded stress score.
package joint

import (
	"math"

	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
)

// Params are the physical parameters of one joint. Angles are in radians.
type Params struct {
	AngleMin        float64
	AngleMax        float64
	RestAngle       float64
	Stiffness       float64
	Damping         float64
	StaticFriction  float64
	KineticFriction float64
}

// ParamsFromConfig converts tuning parameters, given in degrees.
func ParamsFromConfig(p config.JointParams) Params {
	return Params{
		AngleMin:        geometry.Radians(p.AngleMin),
		AngleMax:        geometry.Radians(p.AngleMax),
		RestAngle:       geometry.Radians(p.RestAngle),
		Stiffness:       p.Stiffness,
		Damping:         p.Damping,
		StaticFriction:  p.StaticFriction,
		KineticFriction: p.KineticFriction,
	}
}

// Input is the per-frame input of a controller.
type Input struct {
	// Angle is the current joint angle in radians.
	Angle float64
	// Dt is the time since the previous frame in seconds.
	Dt float64
	// ForceWeight scales the spring and damping terms by how much the
	// current movement loads this joint.
	ForceWeight float64
	// Upstream is the stress of the preceding joint in the kinetic chain, or
	// zero for chain roots.
	Upstream float64
}

// Controller holds the state of one joint across frames. It is not safe for
// concurrent use; each analysis owns its controllers.
type Controller struct {
	params Params
	chain  config.ChainTuning

	prevAngle float64
	hasPrev   bool
	// pending is time elapsed over frames where the joint was not seen.
	pending float64
	stress  float64
}

// NewController creates a controller with no angle history.
func NewController(params Params, chain config.ChainTuning) *Controller {
	return &Controller{params: params, chain: chain}
}

// Update computes the stress for the current frame and records the angle
// for the next one. The result is in [0, 1].
//
// stress = (stiffness*|angle-rest|/span + limitGain*stiffness*excess/span +
// damping*|velocity|) * forceWeight - friction + coupling*upstream
//
// Friction is static below the static velocity and kinetic above it. The
// first frame, and any frame with a non-positive dt, has zero velocity.
func (c *Controller) Update(in Input) float64 {
	p := c.params
	dt := in.Dt + c.pending
	c.pending = 0

	var velocity float64
	if c.hasPrev && dt > 0 {
		velocity = (in.Angle - c.prevAngle) / dt
	}
	if !geometry.IsFinite(velocity) {
		velocity = 0
	}

	span := p.AngleMax - p.AngleMin
	if span <= 0 {
		span = math.Pi
	}

	var excess float64
	switch {
	case in.Angle < p.AngleMin:
		excess = p.AngleMin - in.Angle
	case in.Angle > p.AngleMax:
		excess = in.Angle - p.AngleMax
	}

	spring := p.Stiffness * math.Abs(in.Angle-p.RestAngle) / span
	limit := c.chain.LimitGain * p.Stiffness * excess / span
	damping := p.Damping * math.Abs(velocity)

	friction := p.KineticFriction
	if math.Abs(velocity) < c.chain.StaticVelocity {
		friction = p.StaticFriction
	}

	stress := (spring+limit+damping)*in.ForceWeight - friction + c.chain.Coupling*in.Upstream
	stress = geometry.Clamp(stress, 0, 1)
	if !geometry.IsFinite(stress) {
		stress = 0
	}

	if geometry.IsFinite(in.Angle) {
		c.prevAngle = in.Angle
		c.hasPrev = true
	}
	c.stress = stress
	return stress
}

// Skip records a frame in which the joint was not measured, so the next
// velocity spans the full elapsed time.
func (c *Controller) Skip(dt float64) {
	if dt > 0 {
		c.pending += dt
	}
	c.stress = 0
}

// Stress returns the stress computed by the last Update, or zero after a
// Skip.
func (c *Controller) Stress() float64 {
	return c.stress
}

// Reset forgets the angle history.
func (c *Controller) Reset() {
	c.prevAngle = 0
	c.hasPrev = false
	c.pending = 0
	c.stress = 0
}
