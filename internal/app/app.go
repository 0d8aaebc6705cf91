// Package app runs the video analysis pipeline: frames are sampled from a
// source, landmarks detected, scored by a fresh scoring session and stored.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ayusman/musclemap/internal/capture"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/detector"
	"github.com/ayusman/musclemap/internal/scoring"
	"github.com/ayusman/musclemap/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline defaults.
const (
	// DefaultFPS is the analysis frame rate.
	DefaultFPS = 10
	// BatchSize is the number of frame results written per transaction.
	BatchSize = 50
)

// ProgressFunc is called after every sampled frame of a source. total is 0
// when the source length is unknown.
type ProgressFunc func(name string, done, total int)

// Config holds configuration options for the analyzer.
type Config struct {
	Store   *store.Store
	Tuning  *config.Tuning
	Context scoring.Context
	Logger  *zap.Logger

	// FPS is the analysis frame rate; 0 uses DefaultFPS.
	FPS float64
	// ChangeThresh enables pixel change gating when positive: frames that
	// differ from the last detected one by less than this percentage of
	// pixels reuse its landmarks instead of running detection.
	ChangeThresh float64
	// Workers bounds how many sources AnalyzeFiles runs at once; 0 means
	// one per file.
	Workers int

	// NewDetector creates the detector for one source. Each source gets
	// its own detector, since pose trackers carry state between frames.
	NewDetector func() (detector.Detector, error)
	// NewSource opens a path. It defaults to capture.NewVideoFile.
	NewSource func(path string) capture.Source

	Progress ProgressFunc
}

// Report describes one analyzed source.
type Report struct {
	SessionID string         `json:"session_id"`
	Source    string         `json:"source"`
	Frames    int            `json:"frames"`
	Scored    int            `json:"scored"`
	Missed    int            `json:"missed"`
	Summary   *store.Summary `json:"summary,omitempty"`
}

// Analyzer analyzes video sources.
type Analyzer struct {
	config Config
	logger *zap.Logger
}

// New creates a new Analyzer with the given configuration.
func New(cfg Config) (*Analyzer, error) {
	if cfg.NewDetector == nil {
		return nil, errors.New("no detector factory configured")
	}
	if cfg.Context == (scoring.Context{}) {
		cfg.Context = scoring.DefaultContext()
	}
	if err := cfg.Context.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tuning == nil {
		cfg.Tuning = config.Default()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.NewSource == nil {
		cfg.NewSource = capture.NewVideoFile
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{config: cfg, logger: logger}, nil
}

// AnalyzeFile analyzes the video file at path in a new session.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Report, error) {
	return a.AnalyzeSource(ctx, a.config.NewSource(path), path)
}

// AnalyzeSource analyzes src until it ends or ctx is cancelled. Results are
// stored under a new session named after name when a store is configured.
// Cancellation is not an error for endless sources such as cameras: the
// frames analyzed so far are kept and reported.
func (a *Analyzer) AnalyzeSource(ctx context.Context, src capture.Source, name string) (*Report, error) {
	logger := a.logger.With(zap.String("source", name))

	sess, err := scoring.NewSession(a.config.Context,
		scoring.WithTuning(a.config.Tuning),
		scoring.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	det, err := a.config.NewDetector()
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}
	defer det.Close()

	if err := src.Open(); err != nil {
		return nil, err
	}
	defer src.Close()

	report := &Report{SessionID: uuid.NewString(), Source: name}
	if s := a.config.Store; s != nil {
		err := s.Sessions().Create(&store.Session{
			ID:              report.SessionID,
			Name:            filepath.Base(name),
			Source:          name,
			TargetRegion:    string(a.config.Context.Target),
			ContractionMode: string(a.config.Context.Mode),
		})
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	logger.Info("analysis started",
		zap.String("session", report.SessionID),
		zap.Float64("fps", a.config.FPS))

	p := &pipeline{
		analyzer: a,
		sampler:  capture.NewSampler(src, a.config.FPS),
		detector: det,
		session:  sess,
		report:   report,
		logger:   logger,
	}
	if a.config.ChangeThresh > 0 {
		p.change = capture.NewChangeDetector(a.config.ChangeThresh)
		defer p.change.Close()
	}

	runErr := p.run(ctx)
	if err := p.flush(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return report, runErr
	}

	if s := a.config.Store; s != nil {
		summary, err := s.Results().Summarize(report.SessionID)
		if err != nil {
			return report, fmt.Errorf("summarize: %w", err)
		}
		report.Summary = summary
	}

	logger.Info("analysis finished",
		zap.String("session", report.SessionID),
		zap.Int("frames", report.Frames),
		zap.Int("scored", report.Scored),
		zap.Int("missed", report.Missed))

	return report, nil
}

// AnalyzeFiles analyzes every file concurrently, each in its own session.
// Reports are returned in the order of paths. The first failure cancels the
// remaining analyses.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]*Report, error) {
	reports := make([]*Report, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if a.config.Workers > 0 {
		g.SetLimit(a.config.Workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			r, err := a.AnalyzeFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
