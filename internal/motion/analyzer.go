package motion

import (
	"math"
	"sort"
	"sync"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/kinematics"
	"github.com/ayusman/musclemap/internal/pose"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// tracked are the limb landmarks whose displacement measures movement.
var tracked = []pose.Landmark{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
	pose.LeftAnkle, pose.RightAnkle,
}

// snapshot is the reduced form of a frame kept in history.
type snapshot struct {
	points map[pose.Landmark]geometry.Point3D
	angles kinematics.AngleSet
	dt     float64
	anchor pose.Anchor
}

// Analyzer classifies motion from a rolling history of frames. One Analyzer
// belongs to one analysis; call Reset before feeding an unrelated sequence.
type Analyzer struct {
	cfg  config.MotionTuning
	mode ContractionMode

	history []snapshot

	// pattern is the committed pattern; candidate and streak implement the
	// hysteresis that guards it.
	pattern   Pattern
	candidate Pattern
	streak    int

	mu sync.Mutex
}

// NewAnalyzer creates an Analyzer for the given contraction mode.
func NewAnalyzer(cfg config.MotionTuning, mode ContractionMode) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		mode:    mode,
		history: make([]snapshot, 0, cfg.HistorySize),
	}
}

// Update adds a normalized frame and its angles to the history and returns
// the classification of that frame.
//
// Algorithm:
//  1. Append the reduced frame, keeping at most HistorySize snapshots
//  2. Mean landmark speed over the last SpeedWindow steps
//  3. Fewer than 2 snapshots or speed below StillSpeed: STABILIZING, unless
//     the exercise is isometric and the history is warm
//  4. Pattern from the joint ROM over the history, guarded by hysteresis
//  5. State from the angular velocity of the pattern's primary joint
func (a *Analyzer) Update(f pose.Frame, angles kinematics.AngleSet, dt float64) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := snapshot{
		points: make(map[pose.Landmark]geometry.Point3D, len(tracked)),
		angles: angles.Clone(),
		dt:     dt,
		anchor: pose.AnchorOf(f),
	}
	for _, l := range tracked {
		if p, ok := f[l]; ok {
			snap.points[l] = p
		}
	}

	if len(a.history) == a.cfg.HistorySize {
		copy(a.history, a.history[1:])
		a.history = a.history[:len(a.history)-1]
	}
	a.history = append(a.history, snap)

	res := Result{
		Pattern: PatternUnknown,
		State:   StateStabilizing,
	}
	if len(a.history) < 2 {
		return res
	}

	res.Speed = a.speed()
	res.Intent = a.intent()

	if res.Speed < a.cfg.StillSpeed {
		if a.mode != ModeIsometric {
			res.Intent = 0
			return res
		}
		res.Pattern = a.pattern
		if res.Pattern == "" {
			res.Pattern = PatternGeneral
		}
		res.State = StateIsometric
		return res
	}

	res.Pattern = a.commit(a.classify())
	res.State = a.state(res.Pattern)
	return res
}

// Reset clears the history and the committed pattern.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = a.history[:0]
	a.pattern = ""
	a.candidate = ""
	a.streak = 0
}

// Len returns the number of snapshots in the history.
func (a *Analyzer) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history)
}

// speed returns the mean active landmark speed over the speed window. The
// active landmarks of a step are the fastest third of the tracked ones, so a
// single moving limb is not averaged away by a still body. Steps across a
// change of anchor are skipped because their positions are in different
// units or origins.
func (a *Analyzer) speed() float64 {
	start := len(a.history) - a.cfg.SpeedWindow
	if start < 1 {
		start = 1
	}

	var speeds []float64
	moved := make([]float64, 0, len(tracked))
	for i := start; i < len(a.history); i++ {
		prev, cur := a.history[i-1], a.history[i]
		if cur.dt <= 0 || !sameReference(prev, cur) {
			continue
		}
		moved = moved[:0]
		for _, l := range tracked {
			p, ok := prev.points[l]
			if !ok {
				continue
			}
			c, ok := cur.points[l]
			if !ok {
				continue
			}
			moved = append(moved, c.Distance(p))
		}
		if len(moved) == 0 {
			continue
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(moved)))
		active := moved[:max(1, len(moved)/3)]
		speeds = append(speeds, floats.Sum(active)/float64(len(active))/cur.dt)
	}
	if len(speeds) == 0 {
		return 0
	}
	return finite(stat.Mean(speeds, nil))
}

// intent compares the hands' reach and depth between the last two snapshots.
func (a *Analyzer) intent() float64 {
	prev, cur := a.history[len(a.history)-2], a.history[len(a.history)-1]
	if cur.dt <= 0 || !sameReference(prev, cur) {
		return 0
	}

	pr, pz, ok1 := reach(prev)
	cr, cz, ok2 := reach(cur)
	if !ok1 || !ok2 {
		return 0
	}

	reachVel := (cr - pr) / cur.dt
	// Negative z is toward the camera, so forward motion is a drop in z.
	depthVel := -(cz - pz) / cur.dt
	v := a.cfg.IntentReachGain*reachVel + a.cfg.IntentDepthGain*depthVel
	return finite(geometry.Clamp(v, -1, 1))
}

// sameReference reports whether positions of two snapshots share a reference.
func sameReference(prev, cur snapshot) bool {
	return prev.anchor == cur.anchor
}

// reach returns the mean wrist-to-shoulder distance and mean wrist depth.
func reach(s snapshot) (dist, depth float64, ok bool) {
	var n int
	for _, side := range [][2]pose.Landmark{
		{pose.LeftShoulder, pose.LeftWrist},
		{pose.RightShoulder, pose.RightWrist},
	} {
		sh, sok := s.points[side[0]]
		wr, wok := s.points[side[1]]
		if !sok || !wok {
			continue
		}
		dist += wr.Distance(sh)
		depth += wr.Z
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return dist / float64(n), depth / float64(n), true
}

// rom returns the largest range of motion, in degrees, among the given
// joints over the history.
func (a *Analyzer) rom(joints ...anatomy.Joint) float64 {
	best := 0.0
	values := make([]float64, 0, len(a.history))
	for _, j := range joints {
		values = values[:0]
		for _, s := range a.history {
			if v, ok := s.angles[j]; ok {
				values = append(values, geometry.Degrees(v))
			}
		}
		if len(values) < 2 {
			continue
		}
		best = math.Max(best, floats.Max(values)-floats.Min(values))
	}
	return best
}

func (a *Analyzer) classify() Pattern {
	c := a.cfg
	hip := a.rom(anatomy.LeftHip, anatomy.RightHip)
	knee := a.rom(anatomy.LeftKnee, anatomy.RightKnee)
	upper := a.rom(anatomy.LeftElbow, anatomy.RightElbow)
	lower := math.Max(hip, knee)

	switch {
	case hip >= c.HingeMinROM && knee < c.HingeKneeRatio*hip && hip > upper:
		return PatternHinge
	case knee >= c.SquatKneeROM && hip >= c.SquatHipROM && lower > upper:
		return PatternSquat
	case upper >= c.UpperMinROM:
		if a.pulling() {
			return PatternPull
		}
		return PatternPush
	default:
		return PatternGeneral
	}
}

// pulling reports whether the current frame has the elbows behind the
// shoulders or the wrists hanging below them.
func (a *Analyzer) pulling() bool {
	cur := a.history[len(a.history)-1]

	behind, bok := meanOffset(cur, pose.Elbows, func(e, s geometry.Point3D) float64 { return e.Z - s.Z })
	if bok && behind > a.cfg.PullElbowBehind {
		return true
	}
	below, wok := meanOffset(cur, pose.Wrists, func(w, s geometry.Point3D) float64 { return w.Y - s.Y })
	return wok && below > a.cfg.PullWristBelow
}

// meanOffset averages off(limb, shoulder) over the sides where both exist.
func meanOffset(s snapshot, limb pose.Pair, off func(p, shoulder geometry.Point3D) float64) (float64, bool) {
	var sum float64
	var n int
	for _, side := range [][2]pose.Landmark{
		{limb.Left, pose.LeftShoulder},
		{limb.Right, pose.RightShoulder},
	} {
		p, pok := s.points[side[0]]
		sh, sok := s.points[side[1]]
		if !pok || !sok {
			continue
		}
		sum += off(p, sh)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// commit applies hysteresis: a new pattern replaces the committed one only
// after it has been seen on Hysteresis consecutive frames.
func (a *Analyzer) commit(raw Pattern) Pattern {
	switch {
	case a.pattern == "":
		a.pattern = raw
		a.candidate, a.streak = "", 0
	case raw == a.pattern:
		a.candidate, a.streak = "", 0
	case raw == a.candidate:
		a.streak++
	default:
		a.candidate, a.streak = raw, 1
	}
	if a.candidate != "" && a.streak >= a.cfg.Hysteresis {
		a.pattern = a.candidate
		a.candidate, a.streak = "", 0
	}
	return a.pattern
}

// primaryJoints returns the joints whose motion defines the state of p.
func primaryJoints(p Pattern) []anatomy.Joint {
	switch p {
	case PatternHinge:
		return []anatomy.Joint{anatomy.LeftHip, anatomy.RightHip}
	case PatternSquat:
		return []anatomy.Joint{anatomy.LeftKnee, anatomy.RightKnee}
	case PatternPush, PatternPull:
		return []anatomy.Joint{anatomy.LeftElbow, anatomy.RightElbow}
	default:
		return nil
	}
}

// state derives the movement state from the primary joint velocity. The
// concentric direction is extension except for pulls.
func (a *Analyzer) state(p Pattern) State {
	joints := primaryJoints(p)
	if joints == nil {
		return StateDynamic
	}

	prev, cur := a.history[len(a.history)-2], a.history[len(a.history)-1]
	if cur.dt <= 0 {
		return StateIsometric
	}

	var sum float64
	var n int
	for _, j := range joints {
		before, ok1 := prev.angles[j]
		after, ok2 := cur.angles[j]
		if !ok1 || !ok2 {
			continue
		}
		sum += geometry.Degrees(after-before) / cur.dt
		n++
	}
	if n == 0 {
		return StateDynamic
	}

	velocity := sum / float64(n)
	if math.Abs(velocity) < a.cfg.IsometricVelocity {
		return StateIsometric
	}
	extending := velocity > 0
	if extending != (p == PatternPull) {
		return StateConcentric
	}
	return StateEccentric
}

func finite(v float64) float64 {
	if !geometry.IsFinite(v) {
		return 0
	}
	return v
}
