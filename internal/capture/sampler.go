package capture

import (
	"math"

	"gocv.io/x/gocv"
)

// Sampler decimates a source to a target analysis frame rate. Timing comes
// from the source's native frame rate, not the wall clock, so a file is
// analyzed identically however fast it is decoded.
type Sampler struct {
	src    Source
	step   float64 // seconds between emitted frames
	native float64

	read    int     // frames read from the source
	nextAt  float64 // earliest timestamp of the next emitted frame
	lastAt  float64
	emitted int
}

// NewSampler samples src at fps frames per second. A non-positive fps, or
// one above the native rate, emits every frame.
func NewSampler(src Source, fps float64) *Sampler {
	native := src.FPS()
	if native <= 0 {
		native = DefaultFPS
	}
	if fps <= 0 || fps > native {
		fps = native
	}
	return &Sampler{
		src:    src,
		step:   1 / fps,
		native: native,
	}
}

// Next returns the next sampled frame and the seconds elapsed since the
// previously sampled one. dt is 0 for the first frame. Skipped frames are
// closed. The caller closes the returned Mat.
func (s *Sampler) Next() (*gocv.Mat, float64, error) {
	const eps = 1e-9
	for {
		mat, err := s.src.ReadFrame()
		if err != nil {
			return nil, 0, err
		}
		at := float64(s.read) / s.native
		s.read++

		if at+eps < s.nextAt {
			mat.Close()
			continue
		}

		var dt float64
		if s.emitted > 0 {
			dt = at - s.lastAt
		}
		s.lastAt = at
		s.emitted++
		s.nextAt += s.step
		for s.nextAt <= at+eps {
			s.nextAt += s.step
		}
		return mat, dt, nil
	}
}

// Emitted returns the number of frames returned so far.
func (s *Sampler) Emitted() int {
	return s.emitted
}

// Expected estimates how many frames a finite source will yield, or 0 when
// the source length is unknown.
func (s *Sampler) Expected() int {
	n := s.src.FrameCount()
	if n <= 0 {
		return 0
	}
	perFrame := s.native * s.step // source frames per emitted frame
	return int(math.Ceil(float64(n)/perFrame - 1e-9))
}
