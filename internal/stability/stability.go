// Package stability estimates postural compensation from frame geometry.
package stability

import (
	"math"
	"strings"

	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
)

const minWidth = 1e-6

// Metrics holds the compensation signals of one frame. Every value is a
// scale-free ratio. A metric whose landmarks are missing is zero.
type Metrics struct {
	// Elevation in [0, 1] grows as the shoulders rise toward the ears.
	Elevation float64 `json:"elevation"`
	// Valgus in [0, 1] is the medial knee drift relative to hip width.
	Valgus float64 `json:"valgus"`
	// Retraction in [-1, 1] is the elbow depth behind the shoulder; negative
	// values mean the shoulders are rounded forward.
	Retraction float64 `json:"retraction"`
	// PelvicTilt in [0, 1] is the hip line deviation from horizontal.
	PelvicTilt float64 `json:"pelvic_tilt"`
}

// Estimator computes Metrics and their warnings.
type Estimator struct {
	cfg config.StabilityTuning
}

// NewEstimator creates an Estimator with the given cutoffs.
func NewEstimator(cfg config.StabilityTuning) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate computes the metrics of a normalized frame. Valgus and pelvic
// tilt need a frontal view and are left at zero in side view.
func (e *Estimator) Estimate(f pose.Frame, sideView bool) Metrics {
	var m Metrics

	torso, ok := pose.TorsoLength(f)
	if ok {
		m.Elevation = e.elevation(f, torso)
		m.Retraction = retraction(f, torso)
	}
	if !sideView {
		m.Valgus = valgus(f)
		m.PelvicTilt = pelvicTilt(f)
	}
	return m
}

// Warnings returns the warning text for m, joined with ", ", or "" when no
// metric is past its cutoff.
func (e *Estimator) Warnings(m Metrics) string {
	var warnings []string
	if m.Elevation > e.cfg.ElevationWarn {
		warnings = append(warnings, "shoulder shrug")
	}
	if m.Valgus > e.cfg.ValgusWarn {
		warnings = append(warnings, "knee valgus")
	}
	if m.Retraction < e.cfg.RetractionWarn {
		warnings = append(warnings, "rounded shoulders")
	}
	if m.PelvicTilt > e.cfg.PelvicTiltWarn {
		warnings = append(warnings, "pelvic tilt")
	}
	return strings.Join(warnings, ", ")
}

func (e *Estimator) elevation(f pose.Frame, torso float64) float64 {
	var sum float64
	var n int
	for _, side := range []struct{ ear, shoulder pose.Landmark }{
		{pose.LeftEar, pose.LeftShoulder},
		{pose.RightEar, pose.RightShoulder},
	} {
		s, ok := f[side.shoulder]
		if !ok {
			continue
		}
		head, ok := f[side.ear]
		if !ok {
			head, ok = f[pose.Nose]
		}
		if !ok {
			continue
		}
		sum += head.Distance(s)
		n++
	}
	if n == 0 {
		return 0
	}

	d := sum / float64(n) / torso
	neutral := e.cfg.ElevationNeutral
	return finite(geometry.Clamp((neutral-d)/neutral, 0, 1))
}

func valgus(f pose.Frame) float64 {
	lh, lok := f[pose.LeftHip]
	rh, rok := f[pose.RightHip]
	if !lok || !rok {
		return 0
	}
	width := math.Abs(lh.X - rh.X)
	if width < minWidth {
		return 0
	}
	midX := (lh.X + rh.X) / 2

	worst := 0.0
	for _, leg := range []struct{ hip, knee, ankle pose.Landmark }{
		{pose.LeftHip, pose.LeftKnee, pose.LeftAnkle},
		{pose.RightHip, pose.RightKnee, pose.RightAnkle},
	} {
		if !f.Has(leg.knee, leg.ankle) {
			continue
		}
		h, k, a := f[leg.hip], f[leg.knee], f[leg.ankle]

		span := a.Y - h.Y
		if math.Abs(span) < minWidth {
			continue
		}
		t := (k.Y - h.Y) / span
		lineX := h.X + (a.X-h.X)*t

		medial := math.Copysign(1, midX-h.X)
		drift := (k.X - lineX) * medial / width
		worst = math.Max(worst, drift)
	}
	return finite(geometry.Clamp(worst, 0, 1))
}

func retraction(f pose.Frame, torso float64) float64 {
	var sum float64
	var n int
	for _, pair := range []struct{ shoulder, elbow pose.Landmark }{
		{pose.LeftShoulder, pose.LeftElbow},
		{pose.RightShoulder, pose.RightElbow},
	} {
		if !f.Has(pair.shoulder, pair.elbow) {
			continue
		}
		sum += f[pair.elbow].Z - f[pair.shoulder].Z
		n++
	}
	if n == 0 {
		return 0
	}
	return finite(geometry.Clamp(sum/float64(n)/torso, -1, 1))
}

func pelvicTilt(f pose.Frame) float64 {
	lh, lok := f[pose.LeftHip]
	rh, rok := f[pose.RightHip]
	if !lok || !rok {
		return 0
	}
	width := math.Abs(lh.X - rh.X)
	if width < minWidth {
		return 0
	}
	return finite(geometry.Clamp(math.Abs(lh.Y-rh.Y)/width, 0, 1))
}

func finite(v float64) float64 {
	if !geometry.IsFinite(v) {
		return 0
	}
	return v
}
