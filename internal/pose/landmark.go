// Package pose provides body landmark frames as produced by pose estimation
// and their normalization into a body-centric coordinate frame.
package pose

import "fmt"

// Landmark identifies one body landmark.
// Values follow the MediaPipe Pose landmark indices.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
type Landmark int

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	NumLandmarks
)

var landmarkNames = [NumLandmarks]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

var landmarksByName = func() map[string]Landmark {
	m := make(map[string]Landmark, NumLandmarks)
	for i, name := range landmarkNames {
		m[name] = Landmark(i)
	}
	return m
}()

// Valid reports whether l is a known landmark.
func (l Landmark) Valid() bool {
	return l >= 0 && l < NumLandmarks
}

// String returns the snake_case landmark name.
func (l Landmark) String() string {
	if !l.Valid() {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// ParseLandmark looks up a landmark by name.
func ParseLandmark(name string) (Landmark, bool) {
	l, ok := landmarksByName[name]
	return l, ok
}

// Pair is a left/right landmark pair.
type Pair struct {
	Left, Right Landmark
}

var (
	Shoulders = Pair{LeftShoulder, RightShoulder}
	Elbows    = Pair{LeftElbow, RightElbow}
	Wrists    = Pair{LeftWrist, RightWrist}
	Hips      = Pair{LeftHip, RightHip}
	Knees     = Pair{LeftKnee, RightKnee}
	Ankles    = Pair{LeftAnkle, RightAnkle}
	Ears      = Pair{LeftEar, RightEar}
	FootTips  = Pair{LeftFootIndex, RightFootIndex}
)
