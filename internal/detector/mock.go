package detector

import (
	"sync"

	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/ayusman/musclemap/internal/pose"
	"github.com/ayusman/musclemap/internal/pose/posetest"
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued frames are returned one per Detect call in order; once the queue is
// empty the last frame keeps being returned, or nothing if none was queued.
type MockDetector struct {
	mu     sync.Mutex
	frames []pose.Frame
	last   pose.Frame
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// Queue appends frames to be returned by Detect. A nil frame is reported as
// no detection.
func (m *MockDetector) Queue(frames ...pose.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Detect calls.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued frame or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (pose.Frame, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, false, m.err
	}
	if len(m.frames) > 0 {
		m.last = m.frames[0]
		m.frames = m.frames[1:]
	}
	if m.last == nil {
		return nil, false, nil
	}
	return m.last.Clone(), true, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// toImage places a body-centric pose in normalized image coordinates the
// way the pose model reports them: a person about 0.6 of the frame tall,
// centered horizontally.
func toImage(f pose.Frame) pose.Frame {
	return posetest.Transform(f, 0.18, geometry.Point3D{X: 0.5, Y: 0.45})
}

// StandingFrame returns an upright frontal pose in image coordinates.
func StandingFrame() pose.Frame {
	return toImage(posetest.Standing())
}

// HingeFrame returns a profile hip hinge with the trunk leaning deg degrees
// forward, in image coordinates.
func HingeFrame(deg float64) pose.Frame {
	return toImage(posetest.Hinge(deg))
}

// SquatFrame returns a frontal squat at depth in [0, 1], in image
// coordinates.
func SquatFrame(depth float64) pose.Frame {
	return toImage(posetest.Squat(depth))
}
