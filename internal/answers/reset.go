package answers

import (
	"fmt"
)

// Group names a set of fields that can be reset together.
type Group string

const (
	GroupPriorYear Group = "priorYear"
	GroupTarget    Group = "target"
	GroupExpenses  Group = "expenses"
	GroupAll       Group = "all"
)

// ParseGroup validates a group name.
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupPriorYear, GroupTarget, GroupExpenses, GroupAll:
		return g, nil
	default:
		return "", fmt.Errorf("unknown reset group %q", s)
	}
}

// ResetGroup clears the fields of g. Every group also clears the write-once
// baselines and expense range, since they were derived from the old values.
func (a Answers) ResetGroup(g Group) Answers {
	out := a.Clone()
	switch g {
	case GroupPriorYear:
		out.clearPriorYear()
	case GroupTarget:
		out.clearTarget()
	case GroupExpenses:
		out.clearExpenses()
	case GroupAll:
		out = New(a.Region, a.StoreType)
		out.HandlesTaxRush = a.HandlesTaxRush
		out.HasOtherIncome = a.HasOtherIncome
		return out
	}
	out.IsExampleData = false
	return out.ResetBaselines()
}

// ResetBaselines drops the write-once baselines and the strategic expense
// range so the next reconcile recomputes them.
func (a Answers) ResetBaselines() Answers {
	out := a.Clone()
	out.ExpenseBaselines = nil
	out.CalculatedTotalExpenses = nil
	out.TotalExpensesMin = nil
	out.TotalExpensesMax = nil
	return out
}

func (a *Answers) clearPriorYear() {
	a.PYAvgNetFee = nil
	a.PYTaxPrepReturns = nil
	a.PYGrossFees = nil
	a.PYDiscountsPct = nil
	a.PYDiscountsAmt = nil
	a.PYTaxPrepIncome = nil
	a.PYTaxRushReturns = nil
	a.PYTaxRushReturnsPct = nil
	a.PYTaxRushAvgNetFee = nil
	a.PYTaxRushGrossFees = nil
	a.PYOtherIncome = nil
	a.PYTotalExpenses = nil
	a.PYTaxRushReturnsManual = false
}

func (a *Answers) clearTarget() {
	a.AvgNetFee = nil
	a.TaxPrepReturns = nil
	a.GrossFees = nil
	a.DiscountsPct = nil
	a.DiscountsAmt = nil
	a.TaxPrepIncome = nil
	a.TaxRushReturns = nil
	a.TaxRushReturnsPct = nil
	a.TaxRushAvgNetFee = nil
	a.TaxRushGrossFees = nil
	a.OtherIncome = nil
	a.TotalExpensesOverride = nil
	a.TaxRushReturnsManual = false

	a.ReturnsGrowthPct = nil
	a.AvgNetFeeGrowthPct = nil
	a.TaxRushGrowthPct = nil
	a.OtherIncomeGrowthPct = nil

	a.ProjectedAvgNetFee = nil
	a.ProjectedTaxPrepReturns = nil
	a.ProjectedGrossFees = nil
	a.ProjectedDiscountsPct = nil
	a.ProjectedDiscountsAmt = nil
	a.ProjectedTaxPrepIncome = nil
	a.ProjectedTaxRushReturns = nil
	a.ProjectedTaxRushGrossFees = nil
	a.ProjectedOtherIncome = nil
}

func (a *Answers) clearExpenses() {
	a.Expenses = nil
	a.ExpenseNotes = nil
	a.ExpensesSeeded = false
	a.TotalExpensesOverride = nil
}
