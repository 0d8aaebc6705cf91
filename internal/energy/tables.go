package energy

import (
	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/motion"
)

// weights is how strongly each muscle group works in each pattern.
var weights = map[anatomy.MuscleGroup]map[motion.Pattern]float64{
	anatomy.Pectorals:       {motion.PatternGeneral: 0.4, motion.PatternPush: 1.0, motion.PatternPull: 0.2, motion.PatternHinge: 0.1, motion.PatternSquat: 0.1},
	anatomy.AnteriorDeltoid: {motion.PatternGeneral: 0.4, motion.PatternPush: 0.8, motion.PatternPull: 0.2, motion.PatternHinge: 0.1, motion.PatternSquat: 0.1},
	anatomy.RearDeltoid:     {motion.PatternGeneral: 0.3, motion.PatternPush: 0.2, motion.PatternPull: 0.7, motion.PatternHinge: 0.2, motion.PatternSquat: 0.1},
	anatomy.Lats:            {motion.PatternGeneral: 0.4, motion.PatternPush: 0.2, motion.PatternPull: 1.0, motion.PatternHinge: 0.6, motion.PatternSquat: 0.2},
	anatomy.UpperTraps:      {motion.PatternGeneral: 0.3, motion.PatternPush: 0.3, motion.PatternPull: 0.5, motion.PatternHinge: 0.4, motion.PatternSquat: 0.2},
	anatomy.MidTraps:        {motion.PatternGeneral: 0.3, motion.PatternPush: 0.2, motion.PatternPull: 0.8, motion.PatternHinge: 0.4, motion.PatternSquat: 0.2},
	anatomy.Biceps:          {motion.PatternGeneral: 0.5, motion.PatternPush: 0.1, motion.PatternPull: 0.8, motion.PatternHinge: 0.1, motion.PatternSquat: 0.05},
	anatomy.Triceps:         {motion.PatternGeneral: 0.5, motion.PatternPush: 0.8, motion.PatternPull: 0.2, motion.PatternHinge: 0.1, motion.PatternSquat: 0.05},
	anatomy.Glutes:          {motion.PatternGeneral: 0.5, motion.PatternPush: 0.05, motion.PatternPull: 0.1, motion.PatternHinge: 1.0, motion.PatternSquat: 0.8},
	anatomy.Quadriceps:      {motion.PatternGeneral: 0.5, motion.PatternPush: 0.05, motion.PatternPull: 0.05, motion.PatternHinge: 0.3, motion.PatternSquat: 1.0},
	anatomy.Hamstrings:      {motion.PatternGeneral: 0.4, motion.PatternPush: 0.05, motion.PatternPull: 0.05, motion.PatternHinge: 0.9, motion.PatternSquat: 0.4},
	anatomy.Adductors:       {motion.PatternGeneral: 0.3, motion.PatternPush: 0.05, motion.PatternPull: 0.05, motion.PatternHinge: 0.3, motion.PatternSquat: 0.5},
	anatomy.Calves:          {motion.PatternGeneral: 0.4, motion.PatternPush: 0.05, motion.PatternPull: 0.05, motion.PatternHinge: 0.2, motion.PatternSquat: 0.3},
	anatomy.ErectorSpinae:   {motion.PatternGeneral: 0.5, motion.PatternPush: 0.2, motion.PatternPull: 0.4, motion.PatternHinge: 0.9, motion.PatternSquat: 0.5},
	anatomy.RectusAbdominis: {motion.PatternGeneral: 0.3, motion.PatternPush: 0.3, motion.PatternPull: 0.2, motion.PatternHinge: 0.2, motion.PatternSquat: 0.3},
	anatomy.Obliques:        {motion.PatternGeneral: 0.3, motion.PatternPush: 0.3, motion.PatternPull: 0.3, motion.PatternHinge: 0.3, motion.PatternSquat: 0.3},
}

// involvement is how much each joint type carries the load of a pattern.
var involvement = map[motion.Pattern]map[anatomy.JointKind]float64{
	motion.PatternHinge: {anatomy.Spine: 1, anatomy.Hip: 1, anatomy.Knee: 0.5, anatomy.Ankle: 0.3, anatomy.Shoulder: 0.6, anatomy.Elbow: 0.3},
	motion.PatternSquat: {anatomy.Spine: 0.6, anatomy.Hip: 1, anatomy.Knee: 1, anatomy.Ankle: 0.7, anatomy.Shoulder: 0.3, anatomy.Elbow: 0.2},
	motion.PatternPush:  {anatomy.Spine: 0.4, anatomy.Hip: 0.2, anatomy.Knee: 0.2, anatomy.Ankle: 0.1, anatomy.Shoulder: 1, anatomy.Elbow: 1},
	motion.PatternPull:  {anatomy.Spine: 0.5, anatomy.Hip: 0.3, anatomy.Knee: 0.2, anatomy.Ankle: 0.1, anatomy.Shoulder: 1, anatomy.Elbow: 1},
}

// Weight returns the weight of group g in pattern p. Unknown patterns use
// the general weights; unknown groups weigh zero.
func Weight(g anatomy.MuscleGroup, p motion.Pattern) float64 {
	row, ok := weights[g]
	if !ok {
		return 0
	}
	if w, ok := row[p]; ok {
		return w
	}
	return row[motion.PatternGeneral]
}

// Involvement returns how much joint type k is loaded by pattern p. Patterns
// without a row, such as GENERAL, load every joint fully.
func Involvement(p motion.Pattern, k anatomy.JointKind) float64 {
	row, ok := involvement[p]
	if !ok {
		return 1
	}
	if v, ok := row[k]; ok {
		return v
	}
	return 1
}
