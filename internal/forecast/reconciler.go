// Package forecast derives the complete answer set from the sparse answers a
// user entered: revenue cascades, regional defaults, TaxRush figures, the
// strategic expense range, baselines, prior-year mirrors and projections.
package forecast

import (
	"time"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/baseline"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"go.uber.org/zap"
)

// Reconciler runs the derivation passes over an answers snapshot.
type Reconciler struct {
	logger    *zap.Logger
	seeder    *baseline.Seeder
	growth    GrowthSource
	maxPasses int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithGrowthSource replaces the growth selections stored in the answers.
func WithGrowthSource(g GrowthSource) Option {
	return func(r *Reconciler) {
		if g != nil {
			r.growth = g
		}
	}
}

// WithMaxPasses bounds how many times the pass sequence repeats while
// looking for a fixed point.
func WithMaxPasses(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(logger *zap.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		logger:    logger,
		seeder:    baseline.NewSeeder(logger),
		growth:    AnswerGrowth{},
		maxPasses: constants.DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes one reconciliation.
type Result struct {
	Answers    answers.Answers
	Iterations int
	Converged  bool
	Duration   time.Duration
}

// Reconcile returns the derived snapshot of a. a itself is not modified and
// reconciling the result again returns it unchanged.
func (r *Reconciler) Reconcile(a answers.Answers) answers.Answers {
	return r.Run(a).Answers
}

// Run repeats the pass sequence until a sequence changes nothing or
// maxPasses sequences ran.
func (r *Reconciler) Run(a answers.Answers) Result {
	start := time.Now()
	current := a.Clone()
	passes := r.Passes()

	for i := 1; i <= r.maxPasses; i++ {
		next := current
		for _, p := range passes {
			next = p.Apply(next.Clone())
		}

		if next.Equal(current) {
			r.logger.Debug("reconciled answers",
				zap.String("op", "forecast.Reconciler.Run"),
				zap.Int("iterations", i),
			)
			return Result{Answers: next, Iterations: i, Converged: true, Duration: time.Since(start)}
		}
		current = next
	}

	r.logger.Warn("answers did not reach a fixed point",
		zap.String("op", "forecast.Reconciler.Run"),
		zap.Int("maxPasses", r.maxPasses),
	)
	return Result{Answers: current, Iterations: r.maxPasses, Converged: false, Duration: time.Since(start)}
}
