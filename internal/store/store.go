// Package store owns the live Answers aggregate. It merges patches
// synchronously, decides when the reconciler runs, persists the results and
// feeds a debounced stream of snapshots to heavy consumers.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/forecast"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/metrics"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
)

// Reconciler derives the complete answer set. *forecast.Reconciler
// implements it.
type Reconciler interface {
	Run(a answers.Answers) forecast.Result
}

// Store holds the current aggregate. All methods are safe for concurrent use.
type Store struct {
	logger         *zap.Logger
	clock          Clock
	persister      Persister
	metrics        *metrics.Recorder
	reconciler     Reconciler
	debounce       time.Duration
	heavyDebounce  time.Duration
	persistTimeout time.Duration

	mu      sync.Mutex
	current answers.Answers
	// generation counts merged edits; a reconcile result computed from an
	// older generation is discarded.
	generation uint64
	dirty      bool

	calculating bool
	pending     bool
	idle        chan struct{}

	recalcTimer  Timer
	heavyTimer   Timer
	persistTimer Timer

	subscribers map[int]chan answers.Answers
	nextSub     int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the real clock, typically with a ManualClock.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithPersister sets where the aggregate is loaded from and saved to.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithMetrics records reconcile and persistence metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Store) {
		s.metrics = r
	}
}

// WithDebounce sets the recalculation and heavy-stream delays. Negative
// values are ignored.
func WithDebounce(recalc, heavy time.Duration) Option {
	return func(s *Store) {
		if recalc >= 0 {
			s.debounce = recalc
		}
		if heavy >= 0 {
			s.heavyDebounce = heavy
		}
	}
}

// WithReconciler replaces the default reconciler.
func WithReconciler(r Reconciler) Option {
	return func(s *Store) {
		if r != nil {
			s.reconciler = r
		}
	}
}

// WithPersistTimeout bounds each persister call.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// Open creates a Store and loads the persisted aggregate. When nothing is
// persisted, or the persisted document cannot be read, the store starts
// from the example data.
func Open(ctx context.Context, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		logger:         logger.With(zap.String("session", uuid.NewString())),
		clock:          RealClock{},
		persister:      &MemoryPersister{},
		debounce:       constants.DefaultRecalcDebounce,
		heavyDebounce:  constants.DefaultHeavyDebounce,
		persistTimeout: constants.DefaultPersistTimeout,
		subscribers:    make(map[int]chan answers.Answers),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reconciler == nil {
		s.reconciler = forecast.NewReconciler(s.logger)
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	a, err := s.persister.Load(loadCtx)
	switch {
	case err == nil:
		s.logger.Info("loaded persisted answers", zap.String("op", "store.Open"))
		s.metrics.ObservePersistence("load", nil)
	case errors.Is(err, ErrNotFound):
		s.logger.Info("no persisted answers, starting from example data", zap.String("op", "store.Open"))
		a = answers.Example()
		s.dirty = true
	default:
		s.logger.Error("failed to load persisted answers, starting from example data",
			zap.String("op", "store.Open"),
			zap.Error(err),
		)
		s.metrics.ObservePersistence("load", err)
		a = answers.Example()
		s.dirty = true
	}
	s.current = a

	if s.dirty {
		s.mu.Lock()
		s.scheduleRecalcLocked()
		s.mu.Unlock()
	}
	return s
}

// Answers returns a snapshot of the current aggregate.
func (s *Store) Answers() answers.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// UpdateAnswers merges p into the aggregate. Readers see the merged values
// immediately; derived values follow after the debounced reconcile.
func (s *Store) UpdateAnswers(p answers.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(p)
}

func (s *Store) applyLocked(p answers.Patch) error {
	if len(p) == 0 {
		return nil
	}

	prev := s.current
	p = withRegionDefault(prev, p)
	change := Classify(p)

	next, err := prev.Apply(p)
	if err != nil {
		s.logger.Error("failed to merge patch",
			zap.String("op", "store.UpdateAnswers"),
			zap.Strings("fields", p.Keys()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update answers: %w", err)
	}
	if change == ChangeData {
		next.IsExampleData = false
	}

	s.current = next
	s.generation++

	s.logger.Debug("merged patch",
		zap.String("op", "store.UpdateAnswers"),
		zap.Strings("fields", p.Keys()),
		zap.Stringer("change", change),
	)

	if change == ChangeData {
		s.dirty = true
		s.scheduleRecalcLocked()
		return nil
	}
	s.schedulePersistLocked()
	return nil
}

// replace swaps in a whole aggregate as a data change.
func (s *Store) replace(op string, next answers.Answers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	s.generation++
	s.dirty = true
	s.logger.Debug("replaced answers", zap.String("op", op))
	s.scheduleRecalcLocked()
}

// Reset replaces the aggregate with an empty one, keeping region and store
// type.
func (s *Store) Reset() {
	a := s.Answers()
	s.replace("store.Reset", answers.New(a.Region, a.StoreType))
}

// ResetGroup clears one group of fields together with the baselines and
// expense range derived from them.
func (s *Store) ResetGroup(g answers.Group) {
	s.replace("store.ResetGroup", s.Answers().ResetGroup(g))
}

// ResetBaselines drops the write-once baselines and expense range so the
// next reconcile regenerates them.
func (s *Store) ResetBaselines() {
	s.replace("store.ResetBaselines", s.Answers().ResetBaselines())
}

func (s *Store) scheduleRecalcLocked() {
	if s.recalcTimer != nil {
		s.recalcTimer.Stop()
	}
	s.recalcTimer = s.clock.AfterFunc(s.debounce, s.runRecalc)
}

func (s *Store) scheduleHeavyLocked() {
	if s.heavyTimer != nil {
		s.heavyTimer.Stop()
	}
	s.heavyTimer = s.clock.AfterFunc(s.heavyDebounce, s.notifyHeavy)
}

func (s *Store) schedulePersistLocked() {
	if s.persistTimer != nil {
		s.persistTimer.Stop()
	}
	s.persistTimer = s.clock.AfterFunc(s.debounce, func() {
		_ = s.persist(context.Background())
	})
}

// beginRecalc takes the in-flight guard. A trigger that finds the guard
// taken is folded into one rerun.
func (s *Store) beginRecalc() (uint64, answers.Answers, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recalcTimer = nil
	if s.calculating {
		s.pending = true
		s.metrics.ObserveCoalesced()
		return 0, answers.Answers{}, false
	}
	s.calculating = true
	s.dirty = false
	s.idle = make(chan struct{})
	return s.generation, s.current.Clone(), true
}

// endRecalc releases the guard and schedules the coalesced rerun.
func (s *Store) endRecalc() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calculating = false
	close(s.idle)
	if s.pending {
		s.pending = false
		s.dirty = true
		s.scheduleRecalcLocked()
	}
}

func (s *Store) runRecalc() {
	gen, snapshot, ok := s.beginRecalc()
	if !ok {
		return
	}
	defer s.endRecalc()

	result, err := s.reconcile(snapshot)
	if err != nil {
		s.metrics.ObserveReconcile(metrics.OutcomePanic, 0)
		s.logger.Error("reconcile failed",
			zap.String("op", "store.runRecalc"),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		// Edits landed during the run. Keep them and reconcile again.
		s.pending = true
		s.mu.Unlock()
		s.metrics.ObserveReconcile(metrics.OutcomeStale, result.Duration)
		s.logger.Debug("discarded stale reconcile result",
			zap.String("op", "store.runRecalc"),
		)
		return
	}
	s.current = result.Answers
	s.scheduleHeavyLocked()
	s.mu.Unlock()

	outcome := metrics.OutcomeConverged
	if !result.Converged {
		outcome = metrics.OutcomeNotConverged
	}
	s.metrics.ObserveReconcile(outcome, result.Duration)

	_ = s.persist(context.Background())
}

// reconcile runs the reconciler and turns a panic into an error.
func (s *Store) reconcile(a answers.Answers) (result forecast.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reconciler panic: %v", r)
		}
	}()
	return s.reconciler.Run(a), nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	if s.persistTimer != nil {
		s.persistTimer.Stop()
		s.persistTimer = nil
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	err := s.persister.Save(ctx, snapshot)
	s.metrics.ObservePersistence("save", err)
	if err != nil {
		s.logger.Error("failed to persist answers",
			zap.String("op", "store.persist"),
			zap.Error(err),
		)
		return fmt.Errorf("failed to persist answers: %w", err)
	}
	return nil
}

// Flush runs any scheduled reconcile now, waits for a running one, persists
// the result and notifies heavy subscribers.
func (s *Store) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.recalcTimer != nil {
			s.recalcTimer.Stop()
			s.recalcTimer = nil
		}
		if s.calculating {
			idle := s.idle
			s.mu.Unlock()
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		dirty := s.dirty || s.pending
		s.pending = false
		s.mu.Unlock()

		if !dirty {
			break
		}
		s.runRecalc()
	}

	if err := s.persist(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	hadHeavy := s.heavyTimer != nil && s.heavyTimer.Stop()
	s.heavyTimer = nil
	s.mu.Unlock()
	if hadHeavy {
		s.notifyHeavy()
	}
	return nil
}

// Subscribe returns a stream of reconciled snapshots, delivered after the
// heavy debounce. A slow reader loses the oldest buffered snapshot. The
// returned function unsubscribes and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan answers.Answers, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan answers.Answers, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.metrics.SetSubscribers(len(s.subscribers))
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
			s.metrics.SetSubscribers(len(s.subscribers))
		})
	}
}

func (s *Store) notifyHeavy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.heavyTimer = nil
	for _, ch := range s.subscribers {
		snapshot := s.current.Clone()
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
