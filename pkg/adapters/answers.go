// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/finance"
)

// AnswersToInputs resolves the canonical values of a into engine inputs.
// TaxRush-only expense lines are dropped unless TaxRush applies.
func AnswersToInputs(a answers.Answers) finance.Inputs {
	c := a.Canonical()

	in := finance.Inputs{
		Region:         a.RegionOrDefault(),
		AvgNetFee:      c.AvgNetFee(),
		TaxPrepReturns: c.TaxPrepReturns(),
		DiscountsPct:   c.DiscountsPct(),
		OtherIncome:    c.OtherIncome(),
		Expenses:       make(map[domain.ExpenseKey]float64, len(a.Expenses)),
	}

	if a.TaxRushEnabled() {
		in.TaxRushReturns = c.TaxRushReturns()
		in.TaxRushAvgNetFee = c.TaxRushAvgNetFee()
	}

	for _, line := range domain.ExpenseLines() {
		value, ok := a.Expense(line.Key)
		if !ok {
			continue
		}
		if line.TaxRushOnly && !a.TaxRushEnabled() {
			continue
		}
		in.Expenses[line.Key] = value
	}

	if a.TotalExpensesOverride != nil {
		override := *a.TotalExpensesOverride
		in.TotalExpensesOverride = &override
	}

	return in
}

// ThresholdsFor returns the thresholds of region, replaced by an override
// when one is configured.
func ThresholdsFor(region domain.Region, overrides map[domain.Region]domain.Thresholds) domain.Thresholds {
	if th, ok := overrides[region.OrDefault()]; ok {
		return th
	}
	return domain.DefaultThresholds(region.OrDefault())
}
