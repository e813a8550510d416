package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/forecast"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/metrics"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/bidirectional"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

const debounce = 100 * time.Millisecond

// countingReconciler wraps the real reconciler and runs hook before each
// call.
type countingReconciler struct {
	inner *forecast.Reconciler
	calls int
	hook  func(call int)
}

func (c *countingReconciler) Run(a answers.Answers) forecast.Result {
	c.calls++
	if c.hook != nil {
		c.hook(c.calls)
	}
	return c.inner.Run(a)
}

type failingPersister struct {
	MemoryPersister
}

func (f *failingPersister) Save(context.Context, answers.Answers) error {
	return errors.New("disk full")
}

type harness struct {
	store      *Store
	clock      *ManualClock
	persister  *MemoryPersister
	reconciler *countingReconciler
	metrics    *metrics.Recorder
}

// newHarness opens a store on a ManualClock. A non-nil initial is reconciled
// and persisted first, the way the store leaves it, so the store loads it
// instead of the example data.
func newHarness(t *testing.T, initial *answers.Answers) *harness {
	t.Helper()
	h := &harness{
		clock:      NewManualClock(epoch),
		persister:  &MemoryPersister{},
		reconciler: &countingReconciler{inner: forecast.NewReconciler(zaptest.NewLogger(t))},
		metrics:    metrics.NewRecorder(),
	}
	if initial != nil {
		reconciled := forecast.NewReconciler(nil).Reconcile(*initial)
		require.NoError(t, h.persister.Save(context.Background(), reconciled))
	}
	h.store = Open(context.Background(), zaptest.NewLogger(t),
		WithClock(h.clock),
		WithPersister(h.persister),
		WithReconciler(h.reconciler),
		WithMetrics(h.metrics),
	)
	return h
}

func (h *harness) flush(t *testing.T) answers.Answers {
	t.Helper()
	require.NoError(t, h.store.Flush(context.Background()))
	return h.store.Answers()
}

func (h *harness) persisted(t *testing.T) answers.Answers {
	t.Helper()
	a, err := h.persister.Load(context.Background())
	require.NoError(t, err)
	return a
}

func usNewStore() answers.Answers {
	a := answers.New(domain.RegionUS, domain.StoreNew)
	a.AvgNetFee = mathutil.Ptr(250)
	a.TaxPrepReturns = mathutil.Ptr(1600)
	return a
}

func caTaxRushStore() answers.Answers {
	a := answers.New(domain.RegionCA, domain.StoreNew)
	a.HandlesTaxRush = true
	a.AvgNetFee = mathutil.Ptr(200)
	a.TaxPrepReturns = mathutil.Ptr(1000)
	return a
}

func TestOpenStartsFromExample(t *testing.T) {
	h := newHarness(t, nil)

	a := h.store.Answers()
	assert.True(t, a.IsExampleData)
	assert.Nil(t, a.GrossFees)
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(debounce - time.Millisecond)
	assert.Equal(t, 0, h.reconciler.calls)

	h.clock.Advance(time.Millisecond)
	a = h.store.Answers()
	assert.Equal(t, 1, h.reconciler.calls)
	assert.Equal(t, 400000.0, *a.GrossFees)
	assert.Equal(t, 388000.0, *a.TaxPrepIncome)
	assert.True(t, a.IsExampleData)

	assert.True(t, h.persisted(t).Equal(a))
}

func TestOpenLoadsPersistedAnswers(t *testing.T) {
	initial := caTaxRushStore()
	h := newHarness(t, &initial)

	a := h.store.Answers()
	assert.Equal(t, domain.RegionCA, a.Region)
	assert.False(t, a.IsExampleData)
	assert.Equal(t, 0, h.clock.Pending())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Persistence.WithLabelValues("load", "ok")))
}

func TestOpenFallsBackOnUnreadableState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"avgNetFee":`), 0o600))
	rec := metrics.NewRecorder()

	s := Open(context.Background(), zaptest.NewLogger(t),
		WithClock(NewManualClock(epoch)),
		WithPersister(FilePersister{Path: path}),
		WithMetrics(rec),
	)

	assert.True(t, s.Answers().IsExampleData)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Persistence.WithLabelValues("load", "error")))

	// The next save replaces the unreadable document.
	require.NoError(t, s.Flush(context.Background()))
	a, err := FilePersister{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 400000.0, *a.GrossFees)
}

func TestUpdateAnswersMergesSynchronously(t *testing.T) {
	h := newHarness(t, nil)
	h.flush(t)

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"avgNetFee": 300.0}))

	a := h.store.Answers()
	assert.Equal(t, 300.0, *a.AvgNetFee)
	assert.Equal(t, 400000.0, *a.GrossFees)
	assert.False(t, a.IsExampleData)

	h.clock.Advance(debounce)
	a = h.store.Answers()
	assert.Equal(t, 480000.0, *a.GrossFees)
	assert.False(t, a.IsExampleData)
}

func TestUpdateAnswersDebouncesDataChanges(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"avgNetFee": 260.0}))
	h.clock.Advance(60 * time.Millisecond)
	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"avgNetFee": 270.0}))
	h.clock.Advance(60 * time.Millisecond)
	assert.Equal(t, 0, h.reconciler.calls)

	h.clock.Advance(40 * time.Millisecond)
	assert.Equal(t, 1, h.reconciler.calls)
	assert.Equal(t, 432000.0, *h.store.Answers().GrossFees)
}

func TestUpdateAnswersConfigOnlyPersistsWithoutReconcile(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"hasOtherIncome": true}))
	require.NoError(t, h.store.UpdateAnswers(answers.Patch{
		"expenseNotes": map[string]any{"rent": "lease renews in May"},
	}))
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.reconciler.calls)

	a := h.persisted(t)
	assert.True(t, a.HasOtherIncome)
	assert.Equal(t, "lease renews in May", a.ExpenseNotes[domain.ExpenseRent])
}

func TestUpdateAnswersEmptyPatch(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)

	require.NoError(t, h.store.UpdateAnswers(nil))
	assert.Equal(t, 0, h.clock.Pending())
}

func TestRegionChangeInjectsDiscountDefault(t *testing.T) {
	tests := []struct {
		name     string
		discount *float64
		patch    answers.Patch
		want     float64
	}{
		{"Default follows region", nil, answers.Patch{"region": "CA"}, 3.0},
		{"Custom percentage kept", mathutil.Ptr(5), answers.Patch{"region": "CA"}, 5.0},
		{"Explicit percentage wins", nil, answers.Patch{"region": "CA", "discountsPct": 2.5}, 2.5},
		{"Same region", nil, answers.Patch{"region": "US"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := usNewStore()
			initial.DiscountsPct = tt.discount
			h := newHarness(t, &initial)
			h.flush(t)

			require.NoError(t, h.store.UpdateAnswers(tt.patch))
			assert.Equal(t, tt.want, *h.store.Answers().DiscountsPct)
		})
	}
}

func TestRegionChangeIsDataChange(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)
	h.flush(t)
	calls := h.reconciler.calls

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"region": "CA"}))
	h.clock.Advance(debounce)

	a := h.store.Answers()
	assert.Equal(t, calls+1, h.reconciler.calls)
	assert.Equal(t, 12000.0, *a.DiscountsAmt)
	assert.Equal(t, 388000.0, *a.TaxPrepIncome)
}

func TestReconcilePanicReleasesGuard(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)
	h.reconciler.hook = func(call int) {
		if call == 1 {
			panic("boom")
		}
	}

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1700.0}))
	assert.NotPanics(t, func() { h.clock.Advance(debounce) })
	assert.Equal(t, 400000.0, *h.store.Answers().GrossFees)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Reconciles.WithLabelValues(metrics.OutcomePanic)))

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1800.0}))
	h.clock.Advance(debounce)
	assert.Equal(t, 2, h.reconciler.calls)
	assert.Equal(t, 450000.0, *h.store.Answers().GrossFees)
}

func TestTriggerDuringReconcileIsCoalesced(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)
	h.reconciler.hook = func(call int) {
		if call == 1 {
			h.store.runRecalc()
			h.store.runRecalc()
		}
	}

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1600.0}))
	h.clock.Advance(debounce)
	assert.Equal(t, 1, h.reconciler.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Coalesced))

	h.clock.Advance(debounce)
	assert.Equal(t, 2, h.reconciler.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Reconciles.WithLabelValues(metrics.OutcomeConverged)))
}

func TestStaleReconcileResultIsDiscarded(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)
	h.reconciler.hook = func(call int) {
		if call == 1 {
			require.NoError(t, h.store.UpdateAnswers(answers.Patch{"avgNetFee": 300.0}))
		}
	}

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1600.0}))
	h.clock.Advance(debounce)

	a := h.store.Answers()
	assert.Equal(t, 300.0, *a.AvgNetFee)
	assert.Equal(t, 400000.0, *a.GrossFees)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Reconciles.WithLabelValues(metrics.OutcomeStale)))

	h.clock.Advance(debounce)
	assert.Equal(t, 2, h.reconciler.calls)
	assert.Equal(t, 480000.0, *h.store.Answers().GrossFees)
}

func TestFlush(t *testing.T) {
	h := newHarness(t, nil)
	updates, cancel := h.store.Subscribe(1)
	defer cancel()

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1700.0}))
	a := h.flush(t)

	assert.Equal(t, 425000.0, *a.GrossFees)
	assert.Equal(t, 0, h.clock.Pending())
	assert.True(t, h.persisted(t).Equal(a))

	select {
	case got := <-updates:
		assert.True(t, got.Equal(a))
	default:
		t.Fatal("expected a heavy update after Flush")
	}
}

func TestFlushReportsPersistenceFailure(t *testing.T) {
	rec := metrics.NewRecorder()
	s := Open(context.Background(), zaptest.NewLogger(t),
		WithClock(NewManualClock(epoch)),
		WithPersister(&failingPersister{}),
		WithMetrics(rec),
	)

	err := s.Flush(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Persistence.WithLabelValues("save", "error")))

	// The reconciled aggregate is kept in memory.
	assert.Equal(t, 400000.0, *s.Answers().GrossFees)
}

func TestFlushHonorsContext(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)

	ctx, cancel := context.WithCancel(context.Background())
	h.reconciler.hook = func(int) {
		cancel()
		assert.ErrorIs(t, h.store.Flush(ctx), context.Canceled)
	}

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1600.0}))
	h.clock.Advance(debounce)
	assert.Equal(t, 1, h.reconciler.calls)
}

func TestSubscribe(t *testing.T) {
	initial := usNewStore()
	h := newHarness(t, &initial)
	updates, cancel := h.store.Subscribe(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Subscribers))

	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1700.0}))
	h.clock.Advance(debounce)
	select {
	case <-updates:
		t.Fatal("heavy update delivered before its debounce")
	default:
	}

	h.clock.Advance(150 * time.Millisecond)
	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"taxPrepReturns": 1800.0}))
	h.clock.Advance(250 * time.Millisecond)

	// The reader fell behind; only the newest snapshot is buffered.
	got := <-updates
	assert.Equal(t, 450000.0, *got.GrossFees)
	select {
	case <-updates:
		t.Fatal("expected a single buffered update")
	default:
	}

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.Subscribers))
}

func TestEditExpense(t *testing.T) {
	h := newHarness(t, nil)
	h.flush(t)

	tests := []struct {
		name       string
		key        domain.ExpenseKey
		side       bidirectional.Side
		value      float64
		wantAmount float64
		wantPct    float64
		wantStored float64
	}{
		{"Amount line edited as percentage", domain.ExpenseTelephone, bidirectional.SidePct, 1.5, 6000, 1.5, 6000},
		{"Amount line edited as dollars", domain.ExpenseUtilities, bidirectional.SideAmount, 4000, 4000, 1, 4000},
		{"Percentage line edited as dollars", domain.ExpenseRent, bidirectional.SideAmount, 72000, 72000, 18, 18},
		{"Percentage of tax-prep income", domain.ExpenseRoyalties, bidirectional.SidePct, 14, 54320, 14, 14},
		{"Percentage of salaries", domain.ExpenseEmpDeductions, bidirectional.SidePct, 10, 10000, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := h.store.EditExpense(tt.key, tt.side, tt.value)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantAmount, pair.Amount, 0.001)
			assert.InDelta(t, tt.wantPct, pair.Pct, 0.001)

			stored, ok := h.store.Answers().Expense(tt.key)
			require.True(t, ok)
			assert.InDelta(t, tt.wantStored, stored, 0.001)
		})
	}

	assert.False(t, h.store.Answers().IsExampleData)
}

func TestEditExpenseErrors(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.store.EditExpense("parking", bidirectional.SidePct, 1)
	assert.ErrorContains(t, err, "unknown expense line")

	_, err = h.store.EditExpense(domain.ExpenseRent, "both", 1)
	assert.ErrorContains(t, err, "unknown side")

	_, err = h.store.EditExpense(domain.ExpenseTaxRushRoyalties, bidirectional.SidePct, 40)
	assert.ErrorIs(t, err, ErrTaxRushDisabled)
}

func TestEditDiscounts(t *testing.T) {
	h := newHarness(t, nil)
	h.flush(t)

	pair, err := h.store.EditDiscounts(bidirectional.SideAmount, 8000)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, pair.Pct, 0.0001)

	a := h.flush(t)
	assert.InDelta(t, 2.0, *a.DiscountsPct, 0.0001)
	assert.Equal(t, 8000.0, *a.DiscountsAmt)
	assert.Equal(t, 392000.0, *a.TaxPrepIncome)

	pair, err = h.store.EditDiscounts(bidirectional.SidePct, 4)
	require.NoError(t, err)
	assert.Equal(t, 16000.0, pair.Amount)
	assert.Equal(t, 16000.0, *h.flush(t).DiscountsAmt)
}

func TestEditDiscountsIgnoresProjectedGross(t *testing.T) {
	h := newHarness(t, nil)
	h.flush(t)
	require.NoError(t, h.store.UpdateAnswers(answers.Patch{"returnsGrowthPct": 10.0}))
	a := h.flush(t)
	require.NotNil(t, a.ProjectedGrossFees)
	require.NotEqual(t, *a.GrossFees, *a.ProjectedGrossFees)

	pair, err := h.store.EditDiscounts(bidirectional.SideAmount, 12000)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, pair.Amount)
	assert.InDelta(t, 3.0, pair.Pct, 0.0001)

	a = h.flush(t)
	assert.Equal(t, 12000.0, *a.DiscountsAmt)
	assert.InDelta(t, pair.Pct, *a.DiscountsPct, 0.0001)
	assert.Equal(t, 388000.0, *a.TaxPrepIncome)
	assert.True(t, a.Equal(h.persisted(t)))
}

func TestEditTaxRushReturns(t *testing.T) {
	initial := caTaxRushStore()
	h := newHarness(t, &initial)
	a := h.flush(t)
	assert.Equal(t, 150.0, *a.TaxRushReturns)

	pair, err := h.store.EditTaxRushReturns(bidirectional.SideAmount, 200)
	require.NoError(t, err)
	assert.Equal(t, bidirectional.Pair{Amount: 200, Pct: 20}, pair)
	assert.True(t, h.store.Answers().TaxRushReturnsManual)

	a = h.flush(t)
	assert.Equal(t, 200.0, *a.TaxRushReturns)
	assert.Equal(t, 20.0, *a.TaxRushReturnsPct)
	assert.Equal(t, 40000.0, *a.TaxRushGrossFees)
	assert.Equal(t, 40000.0, a.Canonical().TaxRushIncome())

	pair, err = h.store.EditTaxRushReturns(bidirectional.SidePct, 12.5)
	require.NoError(t, err)
	assert.Equal(t, 125.0, pair.Amount)

	a = h.flush(t)
	assert.False(t, a.TaxRushReturnsManual)
	assert.Equal(t, 125.0, *a.TaxRushReturns)
	assert.Equal(t, 25000.0, *a.TaxRushGrossFees)
}

func TestEditTaxRushReturnsOutsideCanada(t *testing.T) {
	initial := usNewStore()
	initial.HandlesTaxRush = true
	h := newHarness(t, &initial)

	_, err := h.store.EditTaxRushReturns(bidirectional.SideAmount, 200)
	assert.ErrorIs(t, err, ErrTaxRushDisabled)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestResets(t *testing.T) {
	t.Run("Baselines regenerate", func(t *testing.T) {
		h := newHarness(t, nil)
		h.flush(t)

		h.store.ResetBaselines()
		a := h.store.Answers()
		assert.Nil(t, a.ExpenseBaselines)
		assert.Nil(t, a.CalculatedTotalExpenses)

		a = h.flush(t)
		assert.Equal(t, 4000.0, a.ExpenseBaselines[domain.ExpenseTelephone])
		assert.Equal(t, 271600.0, *a.CalculatedTotalExpenses)
	})

	t.Run("Group", func(t *testing.T) {
		h := newHarness(t, nil)
		h.flush(t)

		h.store.ResetGroup(answers.GroupTarget)
		a := h.store.Answers()
		assert.Nil(t, a.AvgNetFee)
		assert.Nil(t, a.ProjectedGrossFees)
		assert.Equal(t, 240.0, *a.PYAvgNetFee)
		assert.False(t, a.IsExampleData)
		assert.Equal(t, 1, h.clock.Pending())
	})

	t.Run("All", func(t *testing.T) {
		h := newHarness(t, nil)
		h.flush(t)

		h.store.Reset()
		a := h.flush(t)
		assert.Equal(t, domain.RegionUS, a.Region)
		assert.Equal(t, domain.StoreExisting, a.StoreType)
		assert.Nil(t, a.PYAvgNetFee)
		assert.Nil(t, a.GrossFees)
		assert.Empty(t, a.Expenses)
		assert.False(t, a.IsExampleData)
	})
}
