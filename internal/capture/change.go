package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// BlurSize is the Gaussian kernel size applied before differencing.
	BlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as changed.
	DiffThreshold = 25
)

// ChangeDetector reports whether a frame differs visibly from the last frame
// that was reported as changed. A still subject produces no change, which
// lets the pipeline reuse the previous pose instead of running detection
// again.
type ChangeDetector struct {
	threshold float64 // percent of pixels
	reference gocv.Mat
	hasRef    bool
	mu        sync.Mutex
}

// NewChangeDetector creates a detector that reports a change once more
// than threshold percent of the pixels differ from the reference frame.
func NewChangeDetector(threshold float64) *ChangeDetector {
	return &ChangeDetector{
		threshold: threshold,
		reference: gocv.NewMat(),
	}
}

// Changed compares frame against the reference frame and returns whether it
// changed and the changed pixel percentage. The first frame always counts as
// changed and becomes the reference. The reference only moves on a change,
// so slow drift accumulates until it crosses the threshold.
func (c *ChangeDetector) Changed(frame *gocv.Mat) (bool, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	prepare(frame, &blurred)

	if !c.hasRef {
		blurred.CopyTo(&c.reference)
		c.hasRef = true
		return true, 100
	}

	percent := changedPercent(blurred, c.reference)
	if percent <= c.threshold {
		return false, percent
	}
	blurred.CopyTo(&c.reference)
	return true, percent
}

// prepare converts frame to a blurred grayscale image in dst.
func prepare(frame *gocv.Mat, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, dst, image.Point{X: BlurSize, Y: BlurSize}, 0, 0, gocv.BorderDefault)
}

func changedPercent(a, b gocv.Mat) float64 {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100
}

// Reset drops the reference frame.
func (c *ChangeDetector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release()
}

// Close releases the reference frame. The detector may be used again after
// Close, starting from a fresh reference.
func (c *ChangeDetector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release()
}

func (c *ChangeDetector) release() {
	if !c.reference.Empty() {
		c.reference.Close()
		c.reference = gocv.NewMat()
	}
	c.hasRef = false
}

// SetThreshold sets the change threshold in percent of pixels.
// Values less than or equal to 0 are ignored.
func (c *ChangeDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.threshold = threshold
}
