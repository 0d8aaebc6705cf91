package detector

import (
	"time"

	"github.com/ayusman/musclemap/internal/pose"
	"gocv.io/x/gocv"
)

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the body landmarks in image
	// coordinates. ok is false when no person is visible.
	Detect(frame *gocv.Mat) (f pose.Frame, ok bool, err error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ModelComplexity selects the pose model: 0 (lite), 1 (full) or 2
	// (heavy).
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeout stops the detection service after this long without a
	// request. It is restarted on the next Detect.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
