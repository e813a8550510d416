package domain

// ExpenseKey identifies one of the seventeen P&L expense lines.
type ExpenseKey string

const (
	ExpenseSalaries         ExpenseKey = "salaries"
	ExpenseEmpDeductions    ExpenseKey = "empDeductions"
	ExpenseRent             ExpenseKey = "rent"
	ExpenseTelephone        ExpenseKey = "telephone"
	ExpenseUtilities        ExpenseKey = "utilities"
	ExpenseLocalAdv         ExpenseKey = "localAdv"
	ExpenseInsurance        ExpenseKey = "insurance"
	ExpenseSupplies         ExpenseKey = "supplies"
	ExpenseDues             ExpenseKey = "dues"
	ExpenseBankFees         ExpenseKey = "bankFees"
	ExpenseMaintenance      ExpenseKey = "maintenance"
	ExpenseTravelEnt        ExpenseKey = "travelEnt"
	ExpenseRoyalties        ExpenseKey = "royalties"
	ExpenseAdvRoyalties     ExpenseKey = "advRoyalties"
	ExpenseTaxRushRoyalties ExpenseKey = "taxRushRoyalties"
	ExpenseShortages        ExpenseKey = "shortages"
	ExpenseMisc             ExpenseKey = "misc"
)

// InputKind says how a line is entered and stored.
type InputKind int

const (
	// KindPercent lines store a percentage of their base.
	KindPercent InputKind = iota
	// KindAmount lines store a fixed annual dollar amount.
	KindAmount
)

// Base is the quantity a percentage line is applied to.
type Base int

const (
	BaseFixed Base = iota
	BaseGrossFees
	BaseTaxPrepIncome
	BaseSalaries
	BaseTaxRushIncome
)

// Category groups lines for reports.
type Category string

const (
	CategoryPersonnel  Category = "personnel"
	CategoryFacility   Category = "facility"
	CategoryOperations Category = "operations"
	CategoryFranchise  Category = "franchise"
	CategoryMisc       Category = "misc"
)

// ExpenseLine describes how one expense line is stored, computed and seeded.
type ExpenseLine struct {
	Key      ExpenseKey
	Label    string
	Category Category
	Kind     InputKind
	Base     Base

	// DefaultPct seeds percentage lines.
	DefaultPct float64

	// BaselinePct and BaselineBase define the write-once dollar baseline as a
	// percentage of gross fees or tax-prep income. Zero means no
	// percentage baseline.
	BaselinePct  float64
	BaselineBase Base

	// RangeMin and RangeMax are fixed annual dollar ranges (insurance, misc).
	RangeMin float64
	RangeMax float64

	// TaxRushOnly lines apply only to Canadian offices handling TaxRush.
	TaxRushOnly bool
}

// FieldName is the flat JSON key the line is stored under.
func (l ExpenseLine) FieldName() string {
	if l.Kind == KindAmount {
		return string(l.Key) + "Amt"
	}
	return string(l.Key) + "Pct"
}

// HasBaseline reports whether the line carries a dollar baseline.
func (l ExpenseLine) HasBaseline() bool {
	return l.BaselinePct > 0 || l.RangeMax > 0
}

// Salaries must stay ahead of empDeductions: the engine computes lines in
// this order and employee deductions are a share of salaries.
var expenseLines = []ExpenseLine{
	{Key: ExpenseSalaries, Label: "Salaries", Category: CategoryPersonnel, Kind: KindPercent, Base: BaseGrossFees, DefaultPct: 25},
	{Key: ExpenseEmpDeductions, Label: "Employee Deductions", Category: CategoryPersonnel, Kind: KindPercent, Base: BaseSalaries, DefaultPct: 10},
	{Key: ExpenseRent, Label: "Rent", Category: CategoryFacility, Kind: KindPercent, Base: BaseGrossFees, DefaultPct: 18},
	{Key: ExpenseTelephone, Label: "Telephone", Category: CategoryFacility, Kind: KindAmount, BaselinePct: 1.0, BaselineBase: BaseGrossFees},
	{Key: ExpenseUtilities, Label: "Utilities", Category: CategoryFacility, Kind: KindAmount, BaselinePct: 0.9, BaselineBase: BaseGrossFees},
	{Key: ExpenseLocalAdv, Label: "Local Advertising", Category: CategoryOperations, Kind: KindAmount, BaselinePct: 1.5, BaselineBase: BaseGrossFees},
	{Key: ExpenseInsurance, Label: "Insurance", Category: CategoryOperations, Kind: KindAmount, RangeMin: 4800, RangeMax: 6000},
	{Key: ExpenseSupplies, Label: "Office Supplies", Category: CategoryOperations, Kind: KindPercent, Base: BaseGrossFees, DefaultPct: 3.0, BaselinePct: 3.0, BaselineBase: BaseGrossFees},
	{Key: ExpenseDues, Label: "Dues & Subscriptions", Category: CategoryOperations, Kind: KindAmount, BaselinePct: 0.25, BaselineBase: BaseGrossFees},
	{Key: ExpenseBankFees, Label: "Bank Fees", Category: CategoryOperations, Kind: KindAmount, BaselinePct: 0.15, BaselineBase: BaseGrossFees},
	{Key: ExpenseMaintenance, Label: "Maintenance", Category: CategoryOperations, Kind: KindAmount, BaselinePct: 0.25, BaselineBase: BaseGrossFees},
	{Key: ExpenseTravelEnt, Label: "Travel & Entertainment", Category: CategoryOperations, Kind: KindAmount, BaselinePct: 1.0, BaselineBase: BaseGrossFees},
	{Key: ExpenseRoyalties, Label: "Royalties", Category: CategoryFranchise, Kind: KindPercent, Base: BaseTaxPrepIncome, DefaultPct: 14},
	{Key: ExpenseAdvRoyalties, Label: "Advertising Royalties", Category: CategoryFranchise, Kind: KindPercent, Base: BaseTaxPrepIncome, DefaultPct: 5},
	{Key: ExpenseTaxRushRoyalties, Label: "TaxRush Royalties", Category: CategoryFranchise, Kind: KindPercent, Base: BaseTaxRushIncome, DefaultPct: 40, TaxRushOnly: true},
	{Key: ExpenseShortages, Label: "Shortages", Category: CategoryMisc, Kind: KindPercent, Base: BaseTaxPrepIncome, DefaultPct: 2, BaselinePct: 2, BaselineBase: BaseTaxPrepIncome},
	{Key: ExpenseMisc, Label: "Miscellaneous", Category: CategoryMisc, Kind: KindAmount, RangeMin: 600, RangeMax: 1200},
}

// ExpenseLines returns the expense line table in computation order.
func ExpenseLines() []ExpenseLine {
	out := make([]ExpenseLine, len(expenseLines))
	copy(out, expenseLines)
	return out
}

// LookupExpense returns the line definition for key.
func LookupExpense(key ExpenseKey) (ExpenseLine, bool) {
	for _, line := range expenseLines {
		if line.Key == key {
			return line, true
		}
	}
	return ExpenseLine{}, false
}

// ExpenseByField resolves a flat field name such as "telephoneAmt".
func ExpenseByField(field string) (ExpenseLine, bool) {
	for _, line := range expenseLines {
		if line.FieldName() == field {
			return line, true
		}
	}
	return ExpenseLine{}, false
}
