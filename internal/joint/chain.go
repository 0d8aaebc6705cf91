package joint

import (
	"fmt"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
)

// Order lists the joints in update order: every joint comes after its
// upstream joint in the kinetic chain.
var Order = []anatomy.Joint{
	anatomy.SpineJoint,
	anatomy.LeftShoulder, anatomy.RightShoulder,
	anatomy.LeftElbow, anatomy.RightElbow,
	anatomy.LeftHip, anatomy.RightHip,
	anatomy.LeftKnee, anatomy.RightKnee,
	anatomy.LeftAnkle, anatomy.RightAnkle,
}

// Upstream returns the preceding joint of j in its kinetic chain:
// shoulder to elbow and hip to knee to ankle, on the same side.
func Upstream(j anatomy.Joint) (anatomy.Joint, bool) {
	var kind anatomy.JointKind
	switch j.Kind() {
	case anatomy.Elbow:
		kind = anatomy.Shoulder
	case anatomy.Knee:
		kind = anatomy.Hip
	case anatomy.Ankle:
		kind = anatomy.Knee
	default:
		return 0, false
	}
	return anatomy.JointOf(kind, j.Side())
}

// Set is the full set of joint controllers of one analysis.
type Set struct {
	controllers map[anatomy.Joint]*Controller
}

// NewSet creates one controller per joint from the tuning table.
func NewSet(t *config.Tuning) (*Set, error) {
	s := &Set{controllers: make(map[anatomy.Joint]*Controller, anatomy.NumJoints)}
	for _, j := range anatomy.AllJoints() {
		p, ok := t.Joint(j.Kind().String())
		if !ok {
			return nil, fmt.Errorf("no tuning for joint %s", j.Kind())
		}
		s.controllers[j] = NewController(ParamsFromConfig(p), t.Chain)
	}
	return s, nil
}

// Controller returns the controller of j.
func (s *Set) Controller(j anatomy.Joint) *Controller {
	return s.controllers[j]
}

// Step runs every controller once in chain order. Joints missing from
// angles are skipped and report zero stress. weight returns the force
// weight of a joint.
func (s *Set) Step(angles map[anatomy.Joint]float64, dt float64, weight func(anatomy.Joint) float64) anatomy.JointStress {
	stress := make(anatomy.JointStress, len(angles))
	for _, j := range Order {
		c := s.controllers[j]
		angle, ok := angles[j]
		if !ok {
			c.Skip(dt)
			continue
		}

		var upstream float64
		if u, ok := Upstream(j); ok {
			upstream = stress[u]
		}
		stress[j] = c.Update(Input{
			Angle:       angle,
			Dt:          dt,
			ForceWeight: weight(j),
			Upstream:    upstream,
		})
	}
	return stress
}

// Reset forgets the history of every controller.
func (s *Set) Reset() {
	for _, c := range s.controllers {
		c.Reset()
	}
}

// SkipAll records a frame in which no joint was scored.
func (s *Set) SkipAll(dt float64) {
	for _, c := range s.controllers {
		c.Skip(dt)
	}
}
