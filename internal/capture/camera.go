// Package capture reads video frames from cameras and files using GoCV
// (OpenCV) and samples them at the analysis frame rate.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrSourceNotOpen is returned when reading from a source that is not open.
	ErrSourceNotOpen = errors.New("video source is not open")
	// ErrEndOfStream is returned once a finite source has no more frames.
	ErrEndOfStream = errors.New("end of video stream")
)

// Source defines the interface for video frame sources.
type Source interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller is responsible for
	// closing the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	// FPS returns the native frame rate of the source.
	FPS() float64
	// FrameCount returns the number of frames of a finite source, or 0 when
	// unknown.
	FrameCount() int
	IsOpen() bool
}

// videoSource manages video capture from a camera device or a file.
type videoSource struct {
	target  any
	camera  bool
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     float64
	frames  int
}

// NewCamera creates a Source reading from the camera with the given device
// ID at 640x480.
func NewCamera(deviceID int) Source {
	return &videoSource{
		target: deviceID,
		camera: true,
		fps:    DefaultFPS,
	}
}

// NewVideoFile creates a Source reading the video file at path.
func NewVideoFile(path string) Source {
	return &videoSource{
		target: path,
		fps:    DefaultFPS,
	}
}

// Open opens the underlying capture device or file.
func (s *videoSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(s.target)
	if err != nil {
		return fmt.Errorf("open video %v: %w", s.target, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %v: capture not opened", s.target)
	}

	if s.camera {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	} else {
		s.frames = int(capture.Get(gocv.VideoCaptureFrameCount))
	}

	// Some containers and webcams report 0.
	if fps := capture.Get(gocv.VideoCaptureFPS); fps > 0 {
		s.fps = fps
	}

	s.capture = capture
	s.running = true

	return nil
}

// Close releases the capture.
func (s *videoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.capture == nil {
		s.running = false
		return nil
	}

	err := s.capture.Close()
	s.capture = nil
	s.running = false

	return err
}

// ReadFrame reads a single frame.
func (s *videoSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.capture == nil {
		return nil, ErrSourceNotOpen
	}

	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok {
		mat.Close()
		if s.camera {
			return nil, errors.New("failed to read frame from camera")
		}
		return nil, ErrEndOfStream
	}

	if mat.Empty() {
		mat.Close()
		if s.camera {
			return nil, errors.New("captured frame is empty")
		}
		return nil, ErrEndOfStream
	}

	return &mat, nil
}

// FPS returns the native frame rate, known once the source is open.
func (s *videoSource) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fps
}

// FrameCount returns the frame count reported by the file container.
func (s *videoSource) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.frames
}

// IsOpen returns true if the source is currently open.
func (s *videoSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}
