package forecast

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/baseline"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
	"go.uber.org/zap"
)

// Strategic total-expense range as shares of total income.
const (
	expenseRangeMin    = 60.0
	expenseRangeTarget = 70.0
	expenseRangeMax    = 80.0
)

// Pass is one derivation step. Apply receives a private copy and returns the
// derived snapshot.
type Pass struct {
	Name  string
	Apply func(answers.Answers) answers.Answers
}

// Passes returns the derivation passes in execution order.
func (r *Reconciler) Passes() []Pass {
	return []Pass{
		{Name: "grossFees", Apply: passGrossFees},
		{Name: "discountDefault", Apply: passDiscountDefault},
		{Name: "discountAmount", Apply: passDiscountAmount},
		{Name: "taxPrepIncome", Apply: passTaxPrepIncome},
		{Name: "taxRush", Apply: passTaxRush},
		{Name: "expenseRange", Apply: passExpenseRange},
		{Name: "baselines", Apply: r.passBaselines},
		{Name: "priorYear", Apply: passPriorYear},
		{Name: "projected", Apply: r.passProjected},
		{Name: "taxRushPct", Apply: passTaxRushPct},
	}
}

func passGrossFees(a answers.Answers) answers.Answers {
	deriveGrossFees(currentYear(&a))
	return a
}

func passDiscountDefault(a answers.Answers) answers.Answers {
	deriveDiscountDefault(currentYear(&a), a.Region)
	return a
}

func passDiscountAmount(a answers.Answers) answers.Answers {
	deriveDiscountAmt(currentYear(&a))
	return a
}

func passTaxPrepIncome(a answers.Answers) answers.Answers {
	deriveTaxPrepIncome(currentYear(&a))
	return a
}

func passTaxRush(a answers.Answers) answers.Answers {
	if !a.TaxRushEnabled() {
		return a
	}
	deriveTaxRush(currentYear(&a))
	return a
}

// passExpenseRange writes the strategic total-expense range once, after the
// projected revenue context is ready.
func passExpenseRange(a answers.Answers) answers.Answers {
	if a.CalculatedTotalExpenses != nil || !baseline.Ready(a) {
		return a
	}
	income := a.Canonical().TotalIncome()
	if income <= 0 {
		return a
	}
	a.TotalExpensesMin = currency(mathutil.ApplyPercentage(income, expenseRangeMin))
	a.TotalExpensesMax = currency(mathutil.ApplyPercentage(income, expenseRangeMax))
	a.CalculatedTotalExpenses = currency(mathutil.ApplyPercentage(income, expenseRangeTarget))
	return a
}

func (r *Reconciler) passBaselines(a answers.Answers) answers.Answers {
	if computed := r.seeder.Baselines(a); len(computed) > len(a.ExpenseBaselines) {
		a.ExpenseBaselines = computed
	}

	patch := r.seeder.Seed(a)
	if patch == nil {
		return a
	}
	seeded, err := a.Apply(patch)
	if err != nil {
		r.logger.Error("failed to seed expenses",
			zap.String("op", "forecast.passBaselines"),
			zap.Error(err),
		)
		return a
	}
	return seeded
}

// passPriorYear mirrors the revenue passes on the prior-year fields.
func passPriorYear(a answers.Answers) answers.Answers {
	f := priorYear(&a)
	deriveGrossFees(f)
	deriveDiscountDefault(f, a.Region)
	deriveDiscountAmt(f)
	deriveTaxPrepIncome(f)
	if a.TaxRushEnabled() {
		deriveTaxRush(f)
	}
	return a
}

func passTaxRushPct(a answers.Answers) answers.Answers {
	if !a.TaxRushEnabled() {
		return a
	}
	deriveTaxRushPct(currentYear(&a))
	deriveTaxRushPct(priorYear(&a))
	return a
}
