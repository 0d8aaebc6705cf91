package scoring

import (
	"math"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/kinematics"
	"github.com/ayusman/musclemap/internal/pose"
)

type armSide struct {
	side                   anatomy.Side
	shoulder, elbow, wrist pose.Landmark
	elbowJoint             anatomy.Joint
}

var arms = []armSide{
	{anatomy.Left, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, anatomy.LeftElbow},
	{anatomy.Right, pose.RightShoulder, pose.RightElbow, pose.RightWrist, anatomy.RightElbow},
}

// applyTension adjusts upper body scores from arm geometry:
//   - upper arm parallel to the spine: lats up, upper traps down
//   - elbow behind the shoulder: mid traps up
//   - elbow brought across and in front of the chest: pectorals up, triceps
//     down
//   - wrist held in front of the shoulder with a bent elbow: pectorals carry
//     at least an isometric floor
func applyTension(u anatomy.Usage, f pose.Frame, angles kinematics.AngleSet, cfg config.TensionTuning) {
	shoulders, sok := f.Midpoint(pose.Shoulders)
	hips, hok := f.Midpoint(pose.Hips)
	var spine geometry.Point3D
	if sok && hok {
		spine = shoulders.Sub(hips)
	}

	for _, arm := range arms {
		s, ok := f[arm.shoulder]
		if !ok {
			continue
		}
		muscle := func(g anatomy.MuscleGroup) anatomy.Muscle {
			return anatomy.Muscle{Group: g, Side: arm.side}
		}

		e, eok := f[arm.elbow]
		if eok {
			if sok && hok && math.Abs(geometry.Cos(e.Sub(s), spine)) > cfg.ArmSpineCos {
				u.Scale(muscle(anatomy.Lats), cfg.LatBoost)
				u.Scale(muscle(anatomy.UpperTraps), cfg.TrapCut)
			}

			if e.Z-s.Z > cfg.ElbowBehind {
				u.Scale(muscle(anatomy.MidTraps), cfg.MidTrapBoost)
			}

			if sok && math.Abs(e.X-shoulders.X) < math.Abs(s.X-shoulders.X) && s.Z-e.Z > cfg.AdductionDepth {
				u.Scale(muscle(anatomy.Pectorals), cfg.PecBoost)
				u.Scale(muscle(anatomy.Triceps), cfg.TricepsCut)
			}
		}

		w, wok := f[arm.wrist]
		elbowAngle, aok := angles[arm.elbowJoint]
		if wok && aok && s.Z-w.Z > cfg.WristAnterior && geometry.Degrees(elbowAngle) < cfg.UnlockedElbow {
			pec := muscle(anatomy.Pectorals)
			u[pec] = math.Max(u[pec], cfg.IsometricPecMin)
		}
	}

	capUsage(u)
}

// applyInhibition suppresses the antagonists of a strong push or pull
// intent. Intent within the threshold changes nothing.
func applyInhibition(u anatomy.Usage, intent float64, cfg config.InhibitionTuning) {
	var suppressed []anatomy.MuscleGroup
	switch {
	case intent > cfg.Threshold:
		suppressed = []anatomy.MuscleGroup{anatomy.Lats, anatomy.UpperTraps, anatomy.MidTraps, anatomy.Biceps}
	case intent < -cfg.Threshold:
		suppressed = []anatomy.MuscleGroup{anatomy.Pectorals, anatomy.Triceps}
	}
	for _, g := range suppressed {
		u.ScaleGroup(g, cfg.Factor)
	}
}

// mirror assigns the larger side of every symmetric pair to both sides.
func mirror(u anatomy.Usage) {
	for _, pair := range anatomy.SymmetricPairs() {
		v := math.Max(u[pair[0]], u[pair[1]])
		u[pair[0]] = v
		u[pair[1]] = v
	}
}

// applyTargetGain attenuates muscles outside the target region.
func applyTargetGain(u anatomy.Usage, target anatomy.Target, gain float64) {
	for m, v := range u {
		if !target.Includes(m.Region()) {
			u[m] = v * gain
		}
	}
}

// finalize gates small scores to zero and converts to the output scale.
func finalize(u anatomy.Usage, gate float64) map[string]float64 {
	out := make(map[string]float64, len(u))
	for m, v := range u {
		if !geometry.IsFinite(v) || v < gate {
			v = 0
		}
		out[m.String()] = Sanitize(v * 100)
	}
	return out
}

func capUsage(u anatomy.Usage) {
	for m, v := range u {
		u[m] = geometry.Clamp(v, 0, 1)
	}
}
