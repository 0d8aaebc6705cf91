package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/app"
	"github.com/ayusman/musclemap/internal/capture"
	"github.com/ayusman/musclemap/internal/detector"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/scoring"
	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	fps             float64
	region          string
	mode            string
	workers         int
	changeThreshold float64
	camera          int
	modelComplexity int
	jsonOutput      bool
	noProgress      bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [video...]",
		Short: "Score recorded videos or a live camera",
		Long: `analyze detects pose landmarks in each video, scores every sampled frame
and stores the results in a new session per video. With --camera it reads
from a camera until interrupted instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.camera < 0 {
				return errors.New("no videos given and no --camera selected")
			}
			if len(args) > 0 && opts.camera >= 0 {
				return errors.New("--camera cannot be combined with video files")
			}
			return runAnalyze(cmd.Context(), root, opts, args, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.fps, "fps", app.DefaultFPS, "analysis frame rate")
	f.StringVar(&opts.region, "region", string(anatomy.TargetFull), "target region: UPPER, LOWER or FULL")
	f.StringVar(&opts.mode, "mode", string(motion.ModeIsotonic), "contraction mode: ISOTONIC, ISOMETRIC or ISOKINETIC")
	f.IntVar(&opts.workers, "workers", 0, "videos analyzed at once (0 for all)")
	f.Float64Var(&opts.changeThreshold, "change-threshold", 0, "skip detection when under this percentage of pixels changed (0 disables)")
	f.IntVar(&opts.camera, "camera", -1, "camera device to analyze instead of files")
	f.IntVar(&opts.modelComplexity, "model-complexity", detector.DefaultConfig().ModelComplexity, "pose model complexity: 0, 1 or 2")
	f.BoolVar(&opts.jsonOutput, "json", false, "print reports as JSON")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

func runAnalyze(ctx context.Context, root *rootOptions, opts *analyzeOptions, paths []string, out io.Writer) error {
	target, err := anatomy.ParseTarget(opts.region)
	if err != nil {
		return err
	}
	mode, err := motion.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	logger, err := newLogger(root.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tuning, err := loadTuning(root.tuning)
	if err != nil {
		return err
	}

	st, err := openStore(root.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	detCfg := detector.DefaultConfig()
	detCfg.ModelComplexity = opts.modelComplexity

	var progress *progressBar
	if !opts.noProgress {
		progress = newProgressBar(os.Stderr)
		defer progress.finish()
	}

	cfg := app.Config{
		Store:        st,
		Tuning:       tuning,
		Context:      scoring.Context{Target: target, Mode: mode},
		Logger:       logger,
		FPS:          opts.fps,
		ChangeThresh: opts.changeThreshold,
		Workers:      opts.workers,
		NewDetector: func() (detector.Detector, error) {
			return detector.NewMediaPipeDetector(detCfg)
		},
	}
	if progress != nil {
		cfg.Progress = progress.update
	}

	analyzer, err := app.New(cfg)
	if err != nil {
		return err
	}

	var reports []*app.Report
	if opts.camera >= 0 {
		name := fmt.Sprintf("camera-%d", opts.camera)
		r, err := analyzer.AnalyzeSource(ctx, capture.NewCamera(opts.camera), name)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	} else {
		reports, err = analyzer.AnalyzeFiles(ctx, paths)
		if err != nil {
			return err
		}
	}

	if progress != nil {
		progress.finish()
	}
	return printReports(out, reports, opts.jsonOutput)
}

func printReports(w io.Writer, reports []*app.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, r := range reports {
		fmt.Fprintf(w, "%s\n  session %s: %d frames, %d scored, %d missed\n",
			r.Source, r.SessionID, r.Frames, r.Scored, r.Missed)
		if r.Summary == nil || r.Summary.Scored == 0 {
			continue
		}
		fmt.Fprintf(w, "  patterns: %s\n", formatCounts(r.Summary.Patterns))
		if len(r.Summary.Warnings) > 0 {
			fmt.Fprintf(w, "  warnings: %s\n", formatCounts(r.Summary.Warnings))
		}
		for _, m := range topMuscles(r.Summary.Mean, 5) {
			fmt.Fprintf(w, "  %-22s mean %5.1f  peak %5.1f\n", m, r.Summary.Mean[m], r.Summary.Peak[m])
		}
	}
	return nil
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

// topMuscles returns the n muscles with the highest mean usage.
func topMuscles(mean map[string]float64, n int) []string {
	names := make([]string, 0, len(mean))
	for m := range mean {
		names = append(names, m)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case mean[a] > mean[b]:
			return -1
		case mean[a] < mean[b]:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// progressBar aggregates per-source progress into one terminal bar.
type progressBar struct {
	mu      sync.Mutex
	bar     *pb.ProgressBar
	done    map[string]int
	total   map[string]int
	stopped bool
}

func newProgressBar(w io.Writer) *progressBar {
	bar := pb.New(0)
	bar.SetWriter(w)
	bar.Start()
	return &progressBar{
		bar:   bar,
		done:  make(map[string]int),
		total: make(map[string]int),
	}
}

func (p *progressBar) update(name string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done[name] = done
	p.total[name] = total

	var sumDone, sumTotal int
	for k, d := range p.done {
		sumDone += d
		sumTotal += max(p.total[k], d)
	}
	p.bar.SetTotal(int64(sumTotal))
	p.bar.SetCurrent(int64(sumDone))
}

func (p *progressBar) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.bar.Finish()
		p.stopped = true
	}
}
