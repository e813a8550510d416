package answers

import (
	"fmt"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/validation"
)

// Warnings reports suspicious answers: unknown configuration values,
// percentages outside [0, 100], negative amounts and growth below -100%.
// Warnings never block a recalculation.
func (a Answers) Warnings() []string {
	var warnings []string

	if a.Region != "" && !a.Region.Valid() {
		warnings = append(warnings, fmt.Sprintf("Unknown region '%s', using %s", a.Region, domain.RegionUS))
	}
	if a.StoreType != "" && !a.StoreType.Valid() {
		warnings = append(warnings, fmt.Sprintf("Unknown store type '%s'", a.StoreType))
	}
	if a.HandlesTaxRush && a.Region != domain.RegionCA {
		warnings = append(warnings, "TaxRush is only available to Canadian offices and will be ignored")
	}

	v := &validation.FieldValidator{
		Percents: []validation.Field{
			{Name: "pyDiscountsPct", Value: a.PYDiscountsPct},
			{Name: "pyTaxRushReturnsPct", Value: a.PYTaxRushReturnsPct},
			{Name: FieldDiscountsPct, Value: a.DiscountsPct},
			{Name: FieldTaxRushReturnsPct, Value: a.TaxRushReturnsPct},
		},
		Growth: []validation.Field{
			{Name: "returnsGrowthPct", Value: a.ReturnsGrowthPct},
			{Name: "avgNetFeeGrowthPct", Value: a.AvgNetFeeGrowthPct},
			{Name: "taxRushGrowthPct", Value: a.TaxRushGrowthPct},
			{Name: "otherIncomeGrowthPct", Value: a.OtherIncomeGrowthPct},
		},
		Amounts: []validation.Field{
			{Name: "pyAvgNetFee", Value: a.PYAvgNetFee},
			{Name: "pyTaxPrepReturns", Value: a.PYTaxPrepReturns},
			{Name: "pyTaxRushReturns", Value: a.PYTaxRushReturns},
			{Name: "pyOtherIncome", Value: a.PYOtherIncome},
			{Name: "avgNetFee", Value: a.AvgNetFee},
			{Name: "taxPrepReturns", Value: a.TaxPrepReturns},
			{Name: FieldTaxRushReturns, Value: a.TaxRushReturns},
			{Name: "taxRushAvgNetFee", Value: a.TaxRushAvgNetFee},
			{Name: "otherIncome", Value: a.OtherIncome},
			{Name: "totalExpensesOverride", Value: a.TotalExpensesOverride},
		},
	}

	for _, line := range domain.ExpenseLines() {
		value, ok := a.Expenses[line.Key]
		if !ok {
			continue
		}
		f := validation.Field{Name: line.FieldName(), Value: &value}
		if line.Kind == domain.KindPercent {
			v.Percents = append(v.Percents, f)
		} else {
			v.Amounts = append(v.Amounts, f)
		}
	}

	return append(warnings, v.ValidateAll()...)
}
