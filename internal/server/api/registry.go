package api

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/musclemap/internal/anatomy"
	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/motion"
	"github.com/ayusman/musclemap/internal/scoring"
	"github.com/ayusman/musclemap/internal/store"
	"go.uber.org/zap"
)

// ErrMissingLandmarks is returned when a submitted frame carries no
// landmarks.
var ErrMissingLandmarks = errors.New("frame has no landmarks")

// liveSession is the in-memory scoring state of one stored session.
type liveSession struct {
	mu      sync.Mutex
	session *scoring.Session
}

// Registry keeps the live scoring state of stored sessions. Frames for one
// session are scored and stored strictly in submission order; different
// sessions proceed in parallel.
type Registry struct {
	store  *store.Store
	tuning *config.Tuning
	logger *zap.Logger

	mu   sync.Mutex
	live map[string]*liveSession
}

// NewRegistry creates a registry backed by s. A nil tuning uses the
// defaults and a nil logger discards output.
func NewRegistry(s *store.Store, tuning *config.Tuning, logger *zap.Logger) *Registry {
	if tuning == nil {
		tuning = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:  s,
		tuning: tuning,
		logger: logger,
		live:   make(map[string]*liveSession),
	}
}

// Len returns the number of sessions with live state.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// lookup returns the live state of a stored session, creating it from the
// stored context on first use.
func (r *Registry) lookup(id string) (*liveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ls, ok := r.live[id]; ok {
		return ls, nil
	}

	stored, err := r.store.Sessions().GetByID(id)
	if err != nil {
		return nil, err
	}
	ctx := scoring.Context{
		Target: anatomy.Target(stored.TargetRegion),
		Mode:   motion.ContractionMode(stored.ContractionMode),
	}
	sess, err := scoring.NewSession(ctx,
		scoring.WithTuning(r.tuning),
		scoring.WithLogger(r.logger.With(zap.String("session", id))),
	)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	ls := &liveSession{session: sess}
	r.live[id] = ls
	return ls, nil
}

// Open prepares the live state of session id, returning store.ErrNotFound
// for an unknown session.
func (r *Registry) Open(id string) error {
	_, err := r.lookup(id)
	return err
}

// Score runs frames through the live state of session id in order and
// appends the results to the store. Nothing is scored if any frame lacks
// landmarks. If the results cannot be stored the live state is reset.
func (r *Registry) Score(id string, frames []FrameInput) ([]scoring.Result, error) {
	for i, in := range frames {
		if len(in.Landmarks) == 0 {
			return nil, fmt.Errorf("frame %d: %w", i, ErrMissingLandmarks)
		}
	}

	ls, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	results := make([]scoring.Result, 0, len(frames))
	stored := make([]store.FrameResult, 0, len(frames))
	for _, in := range frames {
		res, err := ls.session.Process(in.Landmarks, in.Dt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		stored = append(stored, store.FrameResult{
			Dt:            in.Dt,
			Pattern:       res.BiomechPattern,
			MovementState: res.MovementState,
			Warning:       res.StabilityWarning,
			MuscleUsage:   res.DetailedMuscleUsage,
			RomData:       res.RomData,
			JointStress:   res.JointStress,
		})
	}

	if err := r.store.Results().Append(id, stored); err != nil {
		r.discard(id, ls, err)
		return nil, err
	}
	return results, nil
}

// discard rolls back live state that advanced over frames the store did not
// take. The session restarts from an empty history, so resending the batch
// scores it from scratch; a session deleted underneath is forgotten. The
// caller holds ls.mu.
func (r *Registry) discard(id string, ls *liveSession, cause error) {
	ls.session.Reset()
	if errors.Is(cause, store.ErrNotFound) {
		r.Drop(id)
	}
	r.logger.Warn("discarded live state after store failure",
		zap.String("session", id), zap.Error(cause))
}

// Reset clears the live state of session id. Stored results are kept.
func (r *Registry) Reset(id string) error {
	ls, err := r.lookup(id)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.session.Reset()
	return nil
}

// Drop forgets the live state of session id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
}
