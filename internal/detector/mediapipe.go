package detector

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/musclemap/internal/pose"
	"gocv.io/x/gocv"
)

// MediaPipeDetector implements Detector using a Python MediaPipe Pose
// subprocess. The process starts on the first Detect, stops after
// IdleTimeout without requests and restarts on demand. A broken exchange
// stops the process so the next call starts a fresh one.
type MediaPipeDetector struct {
	config Config
	script string
	python string

	mu   sync.Mutex
	svc  *poseService
	idle *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := findScript()
	if script == "" {
		return nil, fmt.Errorf("%s not found (set %s)", scriptName, scriptEnv)
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: findPython(),
	}, nil
}

// Detect encodes frame as JPEG, sends it to the pose service and parses the
// returned landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (pose.Frame, bool, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, false, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.svc == nil {
		svc, err := startPoseService(d.python, d.script, d.config)
		if err != nil {
			return nil, false, err
		}
		d.svc = svc
	}

	line, err := d.svc.exchange(buf.GetBytes())
	if err != nil {
		d.stopLocked()
		return nil, false, err
	}
	d.touchLocked()

	return parseResponse(line)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.svc == nil {
		return nil
	}
	err := d.svc.stop()
	d.svc = nil
	return err
}

// touchLocked restarts the idle countdown.
func (d *MediaPipeDetector) touchLocked() {
	if d.idle != nil {
		d.idle.Reset(d.config.IdleTimeout)
		return
	}
	d.idle = time.AfterFunc(d.config.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stopLocked()
	})
}
