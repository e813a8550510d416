package answers

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
)

// Flat field names referenced by code outside JSON tags.
const (
	FieldRegion               = "region"
	FieldStoreType            = "storeType"
	FieldHandlesTaxRush       = "handlesTaxRush"
	FieldHasOtherIncome       = "hasOtherIncome"
	FieldDiscountsPct         = "discountsPct"
	FieldDiscountsAmt         = "discountsAmt"
	FieldTaxRushReturns       = "taxRushReturns"
	FieldTaxRushReturnsPct    = "taxRushReturnsPct"
	FieldTaxRushReturnsManual = "taxRushReturnsManual"
	FieldIsExampleData        = "_isExampleData"
	FieldExpenseNotes         = "expenseNotes"
)

// ConfigFields change visibility and gating, never arithmetic.
var ConfigFields = []string{
	FieldRegion,
	FieldStoreType,
	FieldHandlesTaxRush,
	FieldHasOtherIncome,
}

var priorYearFields = []string{
	"pyAvgNetFee",
	"pyTaxPrepReturns",
	"pyGrossFees",
	"pyDiscountsPct",
	"pyDiscountsAmt",
	"pyTaxPrepIncome",
	"pyTaxRushReturns",
	"pyTaxRushReturnsPct",
	"pyTaxRushAvgNetFee",
	"pyTaxRushGrossFees",
	"pyOtherIncome",
	"pyTotalExpenses",
	"pyTaxRushReturnsManual",
}

var targetFields = []string{
	"avgNetFee",
	"taxPrepReturns",
	"grossFees",
	FieldDiscountsPct,
	FieldDiscountsAmt,
	"taxPrepIncome",
	FieldTaxRushReturns,
	FieldTaxRushReturnsPct,
	"taxRushAvgNetFee",
	"taxRushGrossFees",
	"otherIncome",
	"totalExpensesOverride",
	FieldTaxRushReturnsManual,
}

var growthFields = []string{
	"returnsGrowthPct",
	"avgNetFeeGrowthPct",
	"taxRushGrowthPct",
	"otherIncomeGrowthPct",
}

// DataFields returns every field whose change requires a recalculation:
// prior-year figures, targets, growth selections and expense inputs.
func DataFields() []string {
	fields := make([]string, 0, len(priorYearFields)+len(targetFields)+len(growthFields)+17)
	fields = append(fields, priorYearFields...)
	fields = append(fields, targetFields...)
	fields = append(fields, growthFields...)
	for _, line := range domain.ExpenseLines() {
		fields = append(fields, line.FieldName())
	}
	return fields
}
