package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/musclemap/internal/capture"
	"github.com/ayusman/musclemap/internal/detector"
	"github.com/ayusman/musclemap/internal/pose"
	"github.com/ayusman/musclemap/internal/scoring"
	"github.com/ayusman/musclemap/internal/store"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// pipeline is the state of one running analysis.
type pipeline struct {
	analyzer *Analyzer
	sampler  *capture.Sampler
	change   *capture.ChangeDetector
	detector detector.Detector
	session  *scoring.Session
	report   *Report
	logger   *zap.Logger

	last    pose.Frame
	pending float64 // time since the last scored frame, across missed frames
	batch   []store.FrameResult
}

// run processes frames until the source ends or ctx is done.
//
// Per sampled frame:
//  1. Gate on pixel change: an unchanged frame reuses the last landmarks
//  2. Detect landmarks; frames without a person are recorded as empty and
//     their time carried to the next scored frame
//  3. Score with the session and buffer the result for the store
func (p *pipeline) run(ctx context.Context) error {
	total := p.sampler.Expected()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		mat, dt, err := p.sampler.Next()
		if errors.Is(err, capture.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		frame, ok, err := p.landmarks(mat)
		mat.Close()
		if err != nil {
			return fmt.Errorf("detect frame %d: %w", p.report.Frames, err)
		}

		p.report.Frames++
		p.pending += dt

		res := scoring.EmptyResult()
		if ok {
			res, err = p.session.Process(frame, p.pending)
			if err != nil {
				return err
			}
			p.pending = 0
			if res.MovementState != "" {
				p.report.Scored++
			}
		} else {
			p.report.Missed++
		}

		if err := p.record(dt, res); err != nil {
			return err
		}
		if fn := p.analyzer.config.Progress; fn != nil {
			fn(p.report.Source, p.report.Frames, total)
		}
	}
}

func (p *pipeline) landmarks(mat *gocv.Mat) (pose.Frame, bool, error) {
	if p.change != nil && p.last != nil {
		if changed, _ := p.change.Changed(mat); !changed {
			return p.last, true, nil
		}
	}

	frame, ok, err := p.detector.Detect(mat)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		p.last = nil
		return nil, false, nil
	}
	if p.change != nil && p.last == nil {
		// Make this frame the change reference.
		p.change.Reset()
		p.change.Changed(mat)
	}
	p.last = frame
	return frame, true, nil
}

func (p *pipeline) record(dt float64, res scoring.Result) error {
	if p.analyzer.config.Store == nil {
		return nil
	}
	p.batch = append(p.batch, store.FrameResult{
		Dt:            dt,
		Pattern:       res.BiomechPattern,
		MovementState: res.MovementState,
		Warning:       res.StabilityWarning,
		MuscleUsage:   res.DetailedMuscleUsage,
		RomData:       res.RomData,
		JointStress:   res.JointStress,
	})
	if len(p.batch) < BatchSize {
		return nil
	}
	return p.flush()
}

func (p *pipeline) flush() error {
	if len(p.batch) == 0 || p.analyzer.config.Store == nil {
		return nil
	}
	if err := p.analyzer.config.Store.Results().Append(p.report.SessionID, p.batch); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	p.logger.Debug("results stored", zap.Int("count", len(p.batch)))
	p.batch = p.batch[:0]
	return nil
}
