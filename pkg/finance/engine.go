// Package finance provides the profit-and-loss calculation engine: revenue,
// expense and KPI arithmetic over a fully resolved set of inputs.
package finance

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// Inputs is the fully resolved record consumed by Calculate. Expense values
// are the authoritative inputs: a percentage for percentage lines and annual
// dollars for amount lines. Missing lines count as zero.
type Inputs struct {
	Region           domain.Region
	AvgNetFee        float64
	TaxPrepReturns   float64
	DiscountsPct     float64
	TaxRushReturns   float64
	TaxRushAvgNetFee float64 // 0 falls back to AvgNetFee
	OtherIncome      float64
	Expenses         map[domain.ExpenseKey]float64

	// TotalExpensesOverride replaces the line sum when set.
	TotalExpensesOverride *float64
}

// LineResult is the dollar value of one expense line.
type LineResult struct {
	Key      domain.ExpenseKey `json:"key" yaml:"key"`
	Label    string            `json:"label" yaml:"label"`
	Category domain.Category   `json:"category" yaml:"category"`
	Amount   float64           `json:"amount" yaml:"amount"`
}

// Results holds the derived P&L.
type Results struct {
	GrossFees        float64 `json:"grossFees" yaml:"grossFees"`
	Discounts        float64 `json:"discounts" yaml:"discounts"`
	TaxPrepIncome    float64 `json:"taxPrepIncome" yaml:"taxPrepIncome"`
	TaxRushGrossFees float64 `json:"taxRushGrossFees" yaml:"taxRushGrossFees"`
	TaxRushIncome    float64 `json:"taxRushIncome" yaml:"taxRushIncome"`
	OtherIncome      float64 `json:"otherIncome" yaml:"otherIncome"`
	TotalRevenue     float64 `json:"totalRevenue" yaml:"totalRevenue"`

	Expenses      []LineResult `json:"expenses" yaml:"expenses"`
	TotalExpenses float64      `json:"totalExpenses" yaml:"totalExpenses"`
	NetIncome     float64      `json:"netIncome" yaml:"netIncome"`

	TotalReturns  float64 `json:"totalReturns" yaml:"totalReturns"`
	CostPerReturn float64 `json:"costPerReturn" yaml:"costPerReturn"`
	NetMarginPct  float64 `json:"netMarginPct" yaml:"netMarginPct"`

	CostPerReturnStatus domain.Status `json:"costPerReturnStatus" yaml:"costPerReturnStatus"`
	NetMarginStatus     domain.Status `json:"netMarginStatus" yaml:"netMarginStatus"`
	NetIncomeStatus     domain.Status `json:"netIncomeStatus" yaml:"netIncomeStatus"`
}

// Expense returns the dollar value computed for key, or 0.
func (r Results) Expense(key domain.ExpenseKey) float64 {
	for _, line := range r.Expenses {
		if line.Key == key {
			return line.Amount
		}
	}
	return 0
}

// Calculate derives the P&L from inputs and classifies the headline ratios
// against th. It has no side effects and never fails; divisions by zero
// yield 0.
func Calculate(in Inputs, th domain.Thresholds) Results {
	var r Results

	r.GrossFees = in.AvgNetFee * in.TaxPrepReturns
	r.Discounts = mathutil.ApplyPercentage(r.GrossFees, in.DiscountsPct)
	r.TaxPrepIncome = r.GrossFees - r.Discounts
	r.TotalReturns = in.TaxPrepReturns

	if in.Region == domain.RegionCA {
		fee := in.TaxRushAvgNetFee
		if fee == 0 {
			fee = in.AvgNetFee
		}
		r.TaxRushGrossFees = in.TaxRushReturns * fee
		r.TaxRushIncome = r.TaxRushGrossFees
		r.TotalReturns += in.TaxRushReturns
	}

	r.OtherIncome = in.OtherIncome
	r.TotalRevenue = r.TaxPrepIncome + r.TaxRushIncome + r.OtherIncome

	r.Expenses = make([]LineResult, 0, len(domain.ExpenseLines()))
	sum := 0.0
	for _, line := range domain.ExpenseLines() {
		amount := lineAmount(line, in.Expenses[line.Key], r)
		sum += amount
		r.Expenses = append(r.Expenses, LineResult{
			Key:      line.Key,
			Label:    line.Label,
			Category: line.Category,
			Amount:   amount,
		})
	}

	r.TotalExpenses = sum
	if in.TotalExpensesOverride != nil {
		r.TotalExpenses = *in.TotalExpensesOverride
	}

	r.NetIncome = r.TotalRevenue - r.TotalExpenses
	r.CostPerReturn = mathutil.SafeDivide(r.TotalExpenses, r.TotalReturns)
	r.NetMarginPct = mathutil.CalculatePercentage(r.NetIncome, r.TotalRevenue)

	r.CostPerReturnStatus = th.CostPerReturnStatus(r.CostPerReturn)
	r.NetMarginStatus = th.NetMarginStatus(r.NetMarginPct)
	r.NetIncomeStatus = th.NetIncomeStatus(r.NetIncome)

	return r
}

// LineBase returns the dollars a line's percentage is measured against.
// Amount lines are measured against gross fees.
func (r Results) LineBase(line domain.ExpenseLine) float64 {
	switch line.Base {
	case domain.BaseTaxPrepIncome:
		return r.TaxPrepIncome
	case domain.BaseSalaries:
		return r.Expense(domain.ExpenseSalaries)
	case domain.BaseTaxRushIncome:
		return r.TaxRushIncome
	default:
		return r.GrossFees
	}
}

// lineAmount applies the line's formula to its input value. Lines are
// computed in table order, so salaries are already in r when employee
// deductions need them.
func lineAmount(line domain.ExpenseLine, value float64, r Results) float64 {
	if line.Kind == domain.KindAmount {
		return value
	}
	return mathutil.ApplyPercentage(r.LineBase(line), value)
}
