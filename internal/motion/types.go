// Package motion classifies the movement pattern and contraction state of a
// frame from a short rolling history of landmark positions and joint angles.
package motion

import "fmt"

// Pattern is a movement pattern.
type Pattern string

const (
	PatternUnknown Pattern = "UNKNOWN"
	PatternGeneral Pattern = "GENERAL"
	PatternHinge   Pattern = "HINGE"
	PatternSquat   Pattern = "SQUAT"
	PatternPush    Pattern = "PUSH"
	PatternPull    Pattern = "PULL"
)

// Patterns lists every scored pattern.
var Patterns = []Pattern{PatternGeneral, PatternHinge, PatternSquat, PatternPush, PatternPull}

// State is the movement state of a frame.
type State string

const (
	// StateStabilizing marks frames with noise-level movement. They are not
	// scored.
	StateStabilizing State = "STABILIZING"
	StateIsometric   State = "ISOMETRIC"
	StateConcentric  State = "CONCENTRIC"
	StateEccentric   State = "ECCENTRIC"
	StateDynamic     State = "DYNAMIC"
)

// ContractionMode is the contraction type the exercise is performed with.
type ContractionMode string

const (
	ModeIsotonic   ContractionMode = "ISOTONIC"
	ModeIsometric  ContractionMode = "ISOMETRIC"
	ModeIsokinetic ContractionMode = "ISOKINETIC"
)

// ParseMode parses a contraction mode name.
func ParseMode(s string) (ContractionMode, error) {
	switch m := ContractionMode(s); m {
	case ModeIsotonic, ModeIsometric, ModeIsokinetic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown contraction mode %q", s)
	}
}

// Result is the motion classification of one frame.
type Result struct {
	Pattern Pattern `json:"pattern"`
	State   State   `json:"movement_state"`
	// Intent in [-1, 1] is positive when the hands move away from the body
	// (push) and negative when they move toward it (pull).
	Intent float64 `json:"intent"`
	// Speed is the mean landmark speed over the window in torso lengths per
	// second.
	Speed float64 `json:"speed"`
}

// Stabilizing reports whether the frame should be skipped by scoring.
func (r Result) Stabilizing() bool {
	return r.State == StateStabilizing
}
