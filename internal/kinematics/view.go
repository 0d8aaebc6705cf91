// Package kinematics derives camera view and joint angles from a normalized
// landmark frame.
package kinematics

import (
	"math"

	"github.com/ayusman/musclemap/internal/pose"
)

// IsSideView reports whether the subject is filmed in profile: at least one
// of the shoulder or hip pairs is known and every known pair has a
// horizontal left/right separation below threshold. A pair with only one
// side present counts as collapsed, since the far side is occluded.
func IsSideView(f pose.Frame, threshold float64) bool {
	known := 0
	for _, pair := range []pose.Pair{pose.Shoulders, pose.Hips} {
		sep, ok := separation(f, pair)
		if !ok {
			continue
		}
		known++
		if sep >= threshold {
			return false
		}
	}
	return known > 0
}

func separation(f pose.Frame, pair pose.Pair) (float64, bool) {
	l, lok := f[pair.Left]
	r, rok := f[pair.Right]
	switch {
	case lok && rok:
		return math.Abs(l.X - r.X), true
	case lok || rok:
		return 0, true
	default:
		return 0, false
	}
}
