package kpi

import (
	"math"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
)

// MetricAvgNetFee is the metric key of the average net fee. Expense
// metrics use the expense line key.
const MetricAvgNetFee = "avgNetFee"

// Rules maps metric keys to their rule sets.
type Rules map[string]RuleSet

var unbounded = math.Inf(1)

// DefaultRules returns the business rule table.
func DefaultRules() Rules {
	return Rules{
		MetricAvgNetFee: {
			Region: map[domain.Region]Rule{
				domain.RegionUS: Bands(
					Band{Min: math.Inf(-1), Max: 200, Status: domain.StatusRed},
					Band{Min: 200, Max: 275, Status: domain.StatusYellow},
					Band{Min: 275, Max: 350, Status: domain.StatusGreen},
					Band{Min: 350, Max: 400, Status: domain.StatusYellow},
					Band{Min: 400, Max: unbounded, Status: domain.StatusRed},
				),
				domain.RegionCA: Bands(
					Band{Min: math.Inf(-1), Max: 85, Status: domain.StatusRed},
					Band{Min: 85, Max: 120, Status: domain.StatusYellow},
					Band{Min: 120, Max: 150, Status: domain.StatusGreen},
					Band{Min: 150, Max: 185, Status: domain.StatusYellow},
					Band{Min: 185, Max: unbounded, Status: domain.StatusRed},
				),
			},
		},

		string(domain.ExpenseSalaries):      {Base: base(Tolerance(25))},
		string(domain.ExpenseEmpDeductions): {Base: base(Tolerance(10))},
		string(domain.ExpenseRent): {
			Region: map[domain.Region]Rule{
				domain.RegionCA: Ceiling(18, 20),
				domain.RegionUS: MonthlyCap(2500, 3000),
			},
		},
		string(domain.ExpenseTelephone): {Base: base(Ceiling(1.0, 1.5))},
		string(domain.ExpenseUtilities): {Base: base(Ceiling(0.9, 1.2))},
		string(domain.ExpenseLocalAdv): {
			Base:      base(Ceiling(1.5, 2.0)),
			StoreType: map[domain.StoreType]Rule{domain.StoreNew: Ceiling(3.0, 4.0)},
		},
		string(domain.ExpenseInsurance):    {Base: base(DollarRange(4800, 6000))},
		string(domain.ExpenseSupplies):     {Base: base(Ceiling(3.0, 3.5))},
		string(domain.ExpenseDues):         {Base: base(Tolerance(0.25))},
		string(domain.ExpenseBankFees):     {Base: base(Tolerance(0.15))},
		string(domain.ExpenseMaintenance):  {Base: base(Tolerance(0.25))},
		string(domain.ExpenseTravelEnt):    {Base: base(Tolerance(1.0))},
		string(domain.ExpenseRoyalties):    {Base: base(Tolerance(14))},
		string(domain.ExpenseAdvRoyalties): {Base: base(Tolerance(5))},
		string(domain.ExpenseShortages):    {Base: base(Tolerance(2))},
		string(domain.ExpenseMisc):         {Base: base(DollarRange(600, 1200))},
	}
}
