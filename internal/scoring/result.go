package scoring

import (
	"math"

	"github.com/ayusman/musclemap/internal/motion"
)

// Result is the scored output of one frame. Muscle and joint scores are in
// [0, 100]; rom_data holds joint angles in degrees.
type Result struct {
	DetailedMuscleUsage map[string]float64 `json:"detailed_muscle_usage"`
	RomData             map[string]float64 `json:"rom_data"`
	BiomechPattern      string             `json:"biomech_pattern"`
	StabilityWarning    string             `json:"stability_warning"`
	MovementState       string             `json:"movement_state,omitempty"`
	JointStress         map[string]float64 `json:"joint_stress,omitempty"`
}

// EmptyResult is returned for frames without meaningful movement.
func EmptyResult() Result {
	return Result{
		DetailedMuscleUsage: map[string]float64{},
		RomData:             map[string]float64{},
		BiomechPattern:      string(motion.PatternUnknown),
		StabilityWarning:    "",
	}
}

// IsEmpty reports whether r carries no scores.
func (r Result) IsEmpty() bool {
	return len(r.DetailedMuscleUsage) == 0 && len(r.RomData) == 0 && len(r.JointStress) == 0
}

// Sanitize maps a score onto the output scale: NaN and infinities become 0,
// the value is clamped to [0, 100] and rounded to one decimal.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Max(0, math.Min(100, v))
	return math.Round(v*10) / 10
}
