package anatomy

import "fmt"

// Region is a coarse body region used for target filtering.
type Region int

const (
	// RegionCore muscles stabilise the trunk and count as on-target for
	// every target region.
	RegionCore Region = iota
	RegionUpper
	RegionLower
)

// String returns the region name.
func (r Region) String() string {
	switch r {
	case RegionUpper:
		return "upper"
	case RegionLower:
		return "lower"
	default:
		return "core"
	}
}

// MuscleGroup is a muscle without side qualification.
type MuscleGroup int

const (
	Pectorals MuscleGroup = iota
	AnteriorDeltoid
	RearDeltoid
	Lats
	UpperTraps
	MidTraps
	Biceps
	Triceps
	Glutes
	Quadriceps
	Hamstrings
	Adductors
	Calves
	ErectorSpinae
	RectusAbdominis
	Obliques
	NumMuscleGroups
)

type groupInfo struct {
	name      string
	region    Region
	bilateral bool
	source    JointKind
}

var groups = [NumMuscleGroups]groupInfo{
	Pectorals:       {"pectorals", RegionUpper, true, Shoulder},
	AnteriorDeltoid: {"anterior_deltoid", RegionUpper, true, Shoulder},
	RearDeltoid:     {"rear_deltoid", RegionUpper, true, Shoulder},
	Lats:            {"lats", RegionUpper, true, Shoulder},
	UpperTraps:      {"upper_traps", RegionUpper, true, Shoulder},
	MidTraps:        {"mid_traps", RegionUpper, true, Shoulder},
	Biceps:          {"biceps", RegionUpper, true, Elbow},
	Triceps:         {"triceps", RegionUpper, true, Elbow},
	Glutes:          {"glutes", RegionLower, true, Hip},
	Quadriceps:      {"quadriceps", RegionLower, true, Knee},
	Hamstrings:      {"hamstrings", RegionLower, true, Hip},
	Adductors:       {"adductors", RegionLower, true, Hip},
	Calves:          {"calves", RegionLower, true, Ankle},
	ErectorSpinae:   {"erector_spinae", RegionCore, false, Spine},
	RectusAbdominis: {"rectus_abdominis", RegionCore, false, Spine},
	Obliques:        {"obliques", RegionCore, false, Spine},
}

// String returns the group name.
func (g MuscleGroup) String() string {
	if g < 0 || g >= NumMuscleGroups {
		return fmt.Sprintf("muscle_group(%d)", int(g))
	}
	return groups[g].name
}

// Bilateral reports whether the group exists on both body sides.
func (g MuscleGroup) Bilateral() bool {
	return g >= 0 && g < NumMuscleGroups && groups[g].bilateral
}

// Region returns the body region of the group.
func (g MuscleGroup) Region() Region {
	if g < 0 || g >= NumMuscleGroups {
		return RegionCore
	}
	return groups[g].region
}

// SourceJoint returns the joint type whose stress drives this group.
func (g MuscleGroup) SourceJoint() JointKind {
	if g < 0 || g >= NumMuscleGroups {
		return Spine
	}
	return groups[g].source
}

// Muscle is a concrete muscle key: a group, side-qualified when bilateral.
type Muscle struct {
	Group MuscleGroup
	Side  Side
}

// String returns the output key, e.g. "left_lats" or "erector_spinae".
func (m Muscle) String() string {
	if m.Side == Center {
		return m.Group.String()
	}
	return m.Side.String() + "_" + m.Group.String()
}

// Mirror returns the same group on the opposite side.
func (m Muscle) Mirror() Muscle {
	return Muscle{Group: m.Group, Side: m.Side.Opposite()}
}

// Region returns the body region of the muscle.
func (m Muscle) Region() Region {
	return m.Group.Region()
}

// SourceJoint returns the concrete joint whose stress drives this muscle.
// Bilateral muscles read the joint on their own side; midline muscles read
// the spine.
func (m Muscle) SourceJoint() Joint {
	j, ok := JointOf(m.Group.SourceJoint(), m.Side)
	if !ok {
		return SpineJoint
	}
	return j
}

// AllMuscles lists every muscle key: bilateral groups as left then right,
// midline groups once.
func AllMuscles() []Muscle {
	var out []Muscle
	for g := MuscleGroup(0); g < NumMuscleGroups; g++ {
		if g.Bilateral() {
			out = append(out, Muscle{g, Left}, Muscle{g, Right})
			continue
		}
		out = append(out, Muscle{g, Center})
	}
	return out
}

// SymmetricPairs returns the left/right pair for every bilateral group.
func SymmetricPairs() [][2]Muscle {
	var out [][2]Muscle
	for g := MuscleGroup(0); g < NumMuscleGroups; g++ {
		if g.Bilateral() {
			out = append(out, [2]Muscle{{g, Left}, {g, Right}})
		}
	}
	return out
}

// ParseMuscle looks up a muscle by its output key.
func ParseMuscle(key string) (Muscle, bool) {
	for _, m := range AllMuscles() {
		if m.String() == key {
			return m, true
		}
	}
	return Muscle{}, false
}

// MarshalText implements encoding.TextMarshaler so muscles can key JSON maps.
func (m Muscle) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Muscle) UnmarshalText(text []byte) error {
	parsed, ok := ParseMuscle(string(text))
	if !ok {
		return fmt.Errorf("unknown muscle %q", string(text))
	}
	*m = parsed
	return nil
}

// Usage maps muscles to a score. Lookups of absent muscles return 0.
type Usage map[Muscle]float64

// Get returns the score of m, or 0 if absent.
func (u Usage) Get(m Muscle) float64 {
	return u[m]
}

// Clone returns a copy of u.
func (u Usage) Clone() Usage {
	out := make(Usage, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Scale multiplies the score of m by f if present.
func (u Usage) Scale(m Muscle, f float64) {
	if v, ok := u[m]; ok {
		u[m] = v * f
	}
}

// ScaleGroup multiplies every side of group g by f.
func (u Usage) ScaleGroup(g MuscleGroup, f float64) {
	for m := range u {
		if m.Group == g {
			u[m] *= f
		}
	}
}

// Keyed converts the usage map to its string-keyed output form.
func (u Usage) Keyed() map[string]float64 {
	out := make(map[string]float64, len(u))
	for m, v := range u {
		out[m.String()] = v
	}
	return out
}

// JointStress maps joints to a stress score.
type JointStress map[Joint]float64

// Keyed converts the stress map to its string-keyed output form.
func (s JointStress) Keyed() map[string]float64 {
	out := make(map[string]float64, len(s))
	for j, v := range s {
		out[j.String()] = v
	}
	return out
}

// Total returns the sum of all joint stresses.
func (s JointStress) Total() float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum
}

// Target is the body region an exercise is meant to load.
type Target string

const (
	TargetUpper Target = "UPPER"
	TargetLower Target = "LOWER"
	TargetFull  Target = "FULL"
)

// ParseTarget parses a target region name, case-sensitively.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetUpper, TargetLower, TargetFull:
		return t, nil
	default:
		return "", fmt.Errorf("unknown target region %q", s)
	}
}

// Includes reports whether muscles of region r are on target. Core muscles
// are on target for every region.
func (t Target) Includes(r Region) bool {
	switch t {
	case TargetUpper:
		return r == RegionUpper || r == RegionCore
	case TargetLower:
		return r == RegionLower || r == RegionCore
	default:
		return true
	}
}
