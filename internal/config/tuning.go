// Package config holds the tuning table: every threshold, gain and joint
// parameter used by the scoring heuristics, with YAML loading on top of the
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTuning is returned when a tuning table fails validation.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning is the complete set of numeric parameters of the scoring pipeline.
type Tuning struct {
	// MinConfidence is the landmark confidence below which a landmark is
	// treated as absent.
	MinConfidence float64 `yaml:"min_confidence"`
	// SideViewThreshold is the normalized left/right horizontal separation
	// below which a pair is considered collapsed.
	SideViewThreshold float64 `yaml:"side_view_threshold"`

	Stability  StabilityTuning        `yaml:"stability"`
	Motion     MotionTuning           `yaml:"motion"`
	Joints     map[string]JointParams `yaml:"joints"`
	Chain      ChainTuning            `yaml:"chain"`
	Leak       LeakTuning             `yaml:"leak"`
	Tension    TensionTuning          `yaml:"tension"`
	Inhibition InhibitionTuning       `yaml:"inhibition"`
	Output     OutputTuning           `yaml:"output"`
}

// StabilityTuning holds the compensation metric cutoffs.
type StabilityTuning struct {
	// ElevationNeutral is the ear-to-shoulder distance, in torso lengths, at
	// which elevation is zero.
	ElevationNeutral float64 `yaml:"elevation_neutral"`
	ElevationWarn    float64 `yaml:"elevation_warn"`
	ValgusWarn       float64 `yaml:"valgus_warn"`
	RetractionWarn   float64 `yaml:"retraction_warn"`
	PelvicTiltWarn   float64 `yaml:"pelvic_tilt_warn"`
}

// MotionTuning holds the motion analyzer windows and classification cutoffs.
// ROM values and velocities are in degrees.
type MotionTuning struct {
	HistorySize int `yaml:"history_size"`
	SpeedWindow int `yaml:"speed_window"`
	// StillSpeed is the mean landmark speed, in torso lengths per second,
	// below which the frame is stabilizing.
	StillSpeed        float64 `yaml:"still_speed"`
	IsometricVelocity float64 `yaml:"isometric_velocity"`
	HingeMinROM       float64 `yaml:"hinge_min_rom"`
	HingeKneeRatio    float64 `yaml:"hinge_knee_ratio"`
	SquatKneeROM      float64 `yaml:"squat_knee_rom"`
	SquatHipROM       float64 `yaml:"squat_hip_rom"`
	UpperMinROM       float64 `yaml:"upper_min_rom"`
	// PullElbowBehind and PullWristBelow are torso-length margins for the
	// elbows behind and the wrists below the shoulders that mark a pull.
	PullElbowBehind   float64 `yaml:"pull_elbow_behind"`
	PullWristBelow    float64 `yaml:"pull_wrist_below"`
	Hysteresis        int     `yaml:"hysteresis"`
	IntentReachGain   float64 `yaml:"intent_reach_gain"`
	IntentDepthGain   float64 `yaml:"intent_depth_gain"`
}

// JointParams are the spring-damper parameters of one joint type. Angles
// are in degrees.
type JointParams struct {
	AngleMin        float64 `yaml:"angle_min"`
	AngleMax        float64 `yaml:"angle_max"`
	RestAngle       float64 `yaml:"rest_angle"`
	Stiffness       float64 `yaml:"stiffness"`
	Damping         float64 `yaml:"damping"`
	StaticFriction  float64 `yaml:"static_friction"`
	KineticFriction float64 `yaml:"kinetic_friction"`
}

// ChainTuning holds the parameters shared by all joint controllers.
type ChainTuning struct {
	// Coupling is the weight of the upstream joint stress.
	Coupling  float64 `yaml:"coupling"`
	LimitGain float64 `yaml:"limit_gain"`
	// StaticVelocity is the angular speed, in rad/s, below which static
	// friction applies.
	StaticVelocity   float64 `yaml:"static_velocity"`
	IsotonicFactor   float64 `yaml:"isotonic_factor"`
	IsometricFactor  float64 `yaml:"isometric_factor"`
	IsokineticFactor float64 `yaml:"isokinetic_factor"`
}

// LeakTuning holds the energy leak fractions.
type LeakTuning struct {
	PrimeMoverWeight   float64 `yaml:"prime_mover_weight"`
	ElevationFraction  float64 `yaml:"elevation_fraction"`
	ValgusFraction     float64 `yaml:"valgus_fraction"`
	RetractionFraction float64 `yaml:"retraction_fraction"`
	PelvicTiltFraction float64 `yaml:"pelvic_tilt_fraction"`
	SpineLeanFraction  float64 `yaml:"spine_lean_fraction"`
	// SpineNeutral is the trunk lean, in degrees, beyond which the erector
	// spinae absorb force in patterns other than the hinge.
	SpineNeutral float64 `yaml:"spine_neutral"`
}

// TensionTuning holds the pose geometry heuristics.
type TensionTuning struct {
	ArmSpineCos     float64 `yaml:"arm_spine_cos"`
	LatBoost        float64 `yaml:"lat_boost"`
	TrapCut         float64 `yaml:"trap_cut"`
	ElbowBehind     float64 `yaml:"elbow_behind"`
	MidTrapBoost    float64 `yaml:"mid_trap_boost"`
	AdductionDepth  float64 `yaml:"adduction_depth"`
	PecBoost        float64 `yaml:"pec_boost"`
	TricepsCut      float64 `yaml:"triceps_cut"`
	WristAnterior   float64 `yaml:"wrist_anterior"`
	UnlockedElbow   float64 `yaml:"unlocked_elbow"`
	IsometricPecMin float64 `yaml:"isometric_pec_min"`
}

// InhibitionTuning holds the reciprocal inhibition parameters.
type InhibitionTuning struct {
	Threshold float64 `yaml:"threshold"`
	Factor    float64 `yaml:"factor"`
}

// OutputTuning holds the final output gates.
type OutputTuning struct {
	OffTargetGain float64 `yaml:"off_target_gain"`
	ZeroGate      float64 `yaml:"zero_gate"`
}

// JointNames lists the joint types every tuning table must define.
var JointNames = []string{"shoulder", "elbow", "hip", "knee", "ankle", "spine"}

// Default returns the built-in tuning table.
func Default() *Tuning {
	return &Tuning{
		MinConfidence:     0.5,
		SideViewThreshold: 0.15,
		Stability: StabilityTuning{
			ElevationNeutral: 0.35,
			ElevationWarn:    0.5,
			ValgusWarn:       0.3,
			RetractionWarn:   -0.5,
			PelvicTiltWarn:   0.15,
		},
		Motion: MotionTuning{
			HistorySize:       10,
			SpeedWindow:       5,
			StillSpeed:        0.15,
			IsometricVelocity: 5,
			HingeMinROM:       20,
			HingeKneeRatio:    0.6,
			SquatKneeROM:      20,
			SquatHipROM:       10,
			UpperMinROM:       15,
			PullElbowBehind:   0.15,
			PullWristBelow:    0.15,
			Hysteresis:        3,
			IntentReachGain:   0.5,
			IntentDepthGain:   0.5,
		},
		Joints: map[string]JointParams{
			"shoulder": {AngleMin: 0, AngleMax: 180, RestAngle: 20, Stiffness: 0.8, Damping: 0.15, StaticFriction: 0.05, KineticFriction: 0.02},
			"elbow":    {AngleMin: 30, AngleMax: 180, RestAngle: 175, Stiffness: 0.7, Damping: 0.12, StaticFriction: 0.05, KineticFriction: 0.02},
			"hip":      {AngleMin: 40, AngleMax: 180, RestAngle: 175, Stiffness: 0.9, Damping: 0.2, StaticFriction: 0.05, KineticFriction: 0.02},
			"knee":     {AngleMin: 30, AngleMax: 180, RestAngle: 175, Stiffness: 0.9, Damping: 0.2, StaticFriction: 0.05, KineticFriction: 0.02},
			"ankle":    {AngleMin: 60, AngleMax: 150, RestAngle: 100, Stiffness: 0.6, Damping: 0.1, StaticFriction: 0.05, KineticFriction: 0.02},
			"spine":    {AngleMin: 0, AngleMax: 90, RestAngle: 0, Stiffness: 0.9, Damping: 0.2, StaticFriction: 0.05, KineticFriction: 0.02},
		},
		Chain: ChainTuning{
			Coupling:         0.3,
			LimitGain:        2,
			StaticVelocity:   0.05,
			IsotonicFactor:   1.0,
			IsometricFactor:  0.9,
			IsokineticFactor: 1.1,
		},
		Leak: LeakTuning{
			PrimeMoverWeight:   0.7,
			ElevationFraction:  0.3,
			ValgusFraction:     0.25,
			RetractionFraction: 0.2,
			PelvicTiltFraction: 0.2,
			SpineLeanFraction:  0.25,
			SpineNeutral:       30,
		},
		Tension: TensionTuning{
			ArmSpineCos:     0.9,
			LatBoost:        1.3,
			TrapCut:         0.5,
			ElbowBehind:     0.1,
			MidTrapBoost:    1.4,
			AdductionDepth:  0.05,
			PecBoost:        1.3,
			TricepsCut:      0.8,
			WristAnterior:   0.2,
			UnlockedElbow:   160,
			IsometricPecMin: 0.3,
		},
		Inhibition: InhibitionTuning{
			Threshold: 0.3,
			Factor:    0.5,
		},
		Output: OutputTuning{
			OffTargetGain: 0.15,
			ZeroGate:      0.05,
		},
	}
}

// Joint returns the parameters of a joint type.
func (t *Tuning) Joint(name string) (JointParams, bool) {
	p, ok := t.Joints[name]
	return p, ok
}

// Validate checks that every parameter is usable by the pipeline.
func (t *Tuning) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(t.MinConfidence >= 0 && t.MinConfidence <= 1, "min_confidence %v out of [0,1]", t.MinConfidence)
	check(t.SideViewThreshold > 0, "side_view_threshold must be positive")
	check(t.Stability.ElevationNeutral > 0, "stability.elevation_neutral must be positive")

	m := t.Motion
	check(m.HistorySize >= 2, "motion.history_size must be at least 2")
	check(m.SpeedWindow >= 1 && m.SpeedWindow < m.HistorySize, "motion.speed_window must be in [1, history_size)")
	check(m.Hysteresis >= 1, "motion.hysteresis must be at least 1")
	check(m.StillSpeed >= 0, "motion.still_speed must not be negative")

	for _, name := range JointNames {
		p, ok := t.Joints[name]
		if !ok {
			errs = append(errs, fmt.Errorf("joints.%s is missing", name))
			continue
		}
		check(p.AngleMax > p.AngleMin, "joints.%s: angle_max must exceed angle_min", name)
		check(p.RestAngle >= p.AngleMin && p.RestAngle <= p.AngleMax, "joints.%s: rest_angle outside limits", name)
		check(p.Stiffness >= 0 && p.Damping >= 0, "joints.%s: stiffness and damping must not be negative", name)
		check(p.StaticFriction >= 0 && p.KineticFriction >= 0, "joints.%s: friction must not be negative", name)
	}

	check(t.Chain.Coupling >= 0 && t.Chain.Coupling <= 1, "chain.coupling out of [0,1]")
	check(t.Chain.StaticVelocity >= 0, "chain.static_velocity must not be negative")

	check(t.Inhibition.Factor >= 0 && t.Inhibition.Factor <= 1, "inhibition.factor out of [0,1]")
	check(t.Output.OffTargetGain > 0 && t.Output.OffTargetGain <= 1, "output.off_target_gain out of (0,1]")
	check(t.Output.ZeroGate >= 0 && t.Output.ZeroGate < 1, "output.zero_gate out of [0,1)")

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, errors.Join(errs...))
	}
	return nil
}

// LoadTuning reads a YAML tuning file and overlays it on the defaults.
// Keys absent from the file keep their default value. A joint entry in the
// file replaces the whole default entry for that joint.
func LoadTuning(path string) (*Tuning, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening tuning file: %w", err)
	}
	defer r.Close()

	t := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading tuning %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Encode writes the tuning table to w as YAML that LoadTuning accepts.
func (t *Tuning) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("error encoding tuning: %w", err)
	}
	return enc.Close()
}

// Save writes the tuning table as YAML.
func (t *Tuning) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error writing tuning: %w", err)
	}
	if err := t.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
