// Package anatomy defines the closed sets of joints, muscles, body sides and
// regions the scoring pipeline works with.
package anatomy

import "fmt"

// Side identifies the body side of a bilateral structure.
type Side int

const (
	// Center is used for midline structures such as the spine.
	Center Side = iota
	Left
	Right
)

// String returns the lowercase side name.
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "center"
	}
}

// Opposite returns the other side. Center is its own opposite.
func (s Side) Opposite() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return Center
	}
}

// JointKind is a joint type without side qualification.
type JointKind int

const (
	Shoulder JointKind = iota
	Elbow
	Hip
	Knee
	Ankle
	Spine
)

var jointKindNames = [...]string{"shoulder", "elbow", "hip", "knee", "ankle", "spine"}

// String returns the joint kind name.
func (k JointKind) String() string {
	if int(k) < 0 || int(k) >= len(jointKindNames) {
		return fmt.Sprintf("joint_kind(%d)", int(k))
	}
	return jointKindNames[k]
}

// Joint identifies one tracked joint.
type Joint int

const (
	LeftShoulder Joint = iota
	RightShoulder
	LeftElbow
	RightElbow
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	SpineJoint
	NumJoints
)

type jointInfo struct {
	name string
	kind JointKind
	side Side
}

var joints = [NumJoints]jointInfo{
	LeftShoulder:  {"left_shoulder", Shoulder, Left},
	RightShoulder: {"right_shoulder", Shoulder, Right},
	LeftElbow:     {"left_elbow", Elbow, Left},
	RightElbow:    {"right_elbow", Elbow, Right},
	LeftHip:       {"left_hip", Hip, Left},
	RightHip:      {"right_hip", Hip, Right},
	LeftKnee:      {"left_knee", Knee, Left},
	RightKnee:     {"right_knee", Knee, Right},
	LeftAnkle:     {"left_ankle", Ankle, Left},
	RightAnkle:    {"right_ankle", Ankle, Right},
	SpineJoint:    {"spine", Spine, Center},
}

// AllJoints lists every joint in declaration order.
func AllJoints() []Joint {
	out := make([]Joint, 0, NumJoints)
	for j := Joint(0); j < NumJoints; j++ {
		out = append(out, j)
	}
	return out
}

// Valid reports whether j is a known joint.
func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

// String returns the snake_case key, e.g. "left_elbow".
func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return joints[j].name
}

// Kind returns the joint type.
func (j Joint) Kind() JointKind {
	if !j.Valid() {
		return -1
	}
	return joints[j].kind
}

// Side returns the body side of the joint.
func (j Joint) Side() Side {
	if !j.Valid() {
		return Center
	}
	return joints[j].side
}

// JointOf returns the joint of the given kind on the given side.
func JointOf(kind JointKind, side Side) (Joint, bool) {
	for j := Joint(0); j < NumJoints; j++ {
		if joints[j].kind == kind && joints[j].side == side {
			return j, true
		}
	}
	return 0, false
}

// ParseJoint looks up a joint by its key.
func ParseJoint(name string) (Joint, bool) {
	for j := Joint(0); j < NumJoints; j++ {
		if joints[j].name == name {
			return j, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler so joints can key JSON maps.
func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("unknown joint %d", int(j))
	}
	return []byte(j.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *Joint) UnmarshalText(text []byte) error {
	parsed, ok := ParseJoint(string(text))
	if !ok {
		return fmt.Errorf("unknown joint %q", string(text))
	}
	*j = parsed
	return nil
}
