// Package baseline computes the write-once dollar guardrails of the expense
// lines and seeds expense inputs from them once the revenue context is known.
package baseline

import (
	"go.uber.org/zap"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// FieldExpensesSeeded is the patch key marking a completed seeding.
const FieldExpensesSeeded = "expensesSeeded"

// context is the projected revenue baselines are derived from.
type context struct {
	grossFees     float64
	taxPrepIncome float64
}

func revenueContext(a answers.Answers) (context, bool) {
	if a.ProjectedGrossFees == nil || a.ProjectedTaxPrepIncome == nil {
		return context{}, false
	}
	ctx := context{grossFees: *a.ProjectedGrossFees, taxPrepIncome: *a.ProjectedTaxPrepIncome}
	return ctx, ctx.grossFees > 0
}

// Ready reports whether the revenue context allows seeding: projected
// tax-prep income is positive and, for CA offices handling TaxRush, the
// TaxRush gross fees are resolved.
func Ready(a answers.Answers) bool {
	if a.ProjectedTaxPrepIncome == nil || *a.ProjectedTaxPrepIncome <= 0 {
		return false
	}
	if a.TaxRushEnabled() && a.ProjectedTaxRushGrossFees == nil {
		return false
	}
	return true
}

// Compute returns the baselines of a with every missing key filled from the
// projected revenue. Existing keys are returned unchanged; without projected
// gross fees nothing new is added.
func Compute(a answers.Answers) map[domain.ExpenseKey]float64 {
	out := make(map[domain.ExpenseKey]float64, len(a.ExpenseBaselines))
	for k, v := range a.ExpenseBaselines {
		out[k] = v
	}

	ctx, ok := revenueContext(a)
	if !ok {
		return out
	}

	for _, line := range domain.ExpenseLines() {
		if !line.HasBaseline() {
			continue
		}
		if _, exists := out[line.Key]; exists {
			continue
		}
		out[line.Key] = dollars(line, ctx)
	}
	return out
}

func dollars(line domain.ExpenseLine, ctx context) float64 {
	if line.RangeMax > 0 {
		return line.RangeMin
	}
	base := ctx.grossFees
	if line.BaselineBase == domain.BaseTaxPrepIncome {
		base = ctx.taxPrepIncome
	}
	return mathutil.Round(mathutil.ApplyPercentage(base, line.BaselinePct))
}

// SeedIfNeeded returns the patch that fills every absent expense input, or
// nil when seeding already happened or the revenue context is not ready.
// Percentage lines get their default percentage, amount lines their
// baseline dollars.
func SeedIfNeeded(a answers.Answers) answers.Patch {
	if a.ExpensesSeeded || !Ready(a) {
		return nil
	}

	baselines := Compute(a)
	patch := answers.Patch{FieldExpensesSeeded: true}

	for _, line := range domain.ExpenseLines() {
		if _, ok := a.Expense(line.Key); ok {
			continue
		}
		if line.TaxRushOnly && !a.TaxRushEnabled() {
			continue
		}
		switch line.Kind {
		case domain.KindPercent:
			patch[line.FieldName()] = line.DefaultPct
		case domain.KindAmount:
			if v, ok := baselines[line.Key]; ok {
				patch[line.FieldName()] = v
			}
		}
	}
	return patch
}

// Seeder freezes baselines and seeds expense inputs for the reconciler.
type Seeder struct {
	logger *zap.Logger
}

// NewSeeder creates a new Seeder.
func NewSeeder(logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{logger: logger}
}

// Baselines returns Compute(a), logging the keys frozen by this call.
func (s *Seeder) Baselines(a answers.Answers) map[domain.ExpenseKey]float64 {
	out := Compute(a)
	for key, v := range out {
		if _, existed := a.ExpenseBaselines[key]; existed {
			continue
		}
		s.logger.Debug("froze expense baseline",
			zap.String("op", "baseline.Baselines"),
			zap.String("line", string(key)),
			zap.Float64("amount", v),
		)
	}
	return out
}

// Seed returns SeedIfNeeded(a), logging why seeding was deferred and which
// lines were left out.
func (s *Seeder) Seed(a answers.Answers) answers.Patch {
	if a.ExpensesSeeded {
		return nil
	}
	if !Ready(a) {
		s.logger.Debug("revenue context not ready, seeding deferred",
			zap.String("op", "baseline.Seed"),
		)
		return nil
	}

	patch := SeedIfNeeded(a)
	for _, line := range domain.ExpenseLines() {
		if _, seeded := patch[line.FieldName()]; seeded {
			continue
		}
		reason := "already entered"
		if _, ok := a.Expense(line.Key); !ok {
			reason = "not applicable"
		}
		s.logger.Debug("skipped expense line",
			zap.String("op", "baseline.Seed"),
			zap.String("line", string(line.Key)),
			zap.String("reason", reason),
		)
	}
	s.logger.Debug("seeded expense inputs",
		zap.String("op", "baseline.Seed"),
		zap.Int("fields", len(patch)-1),
	)
	return patch
}
