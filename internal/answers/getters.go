package answers

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// Canonical is a read-only view returning one canonical value per concept.
// Projected values win over targets, TaxRush reads as zero outside CA
// offices that handle it, and other income reads as zero unless the office
// has any.
type Canonical struct {
	a Answers
}

// Canonical returns the read view of a.
func (a Answers) Canonical() Canonical {
	return Canonical{a: a}
}

// first returns the first present value.
func first(values ...*float64) (float64, bool) {
	for _, v := range values {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func firstOrZero(values ...*float64) float64 {
	v, _ := first(values...)
	return v
}

// RegionOrDefault returns the configured region, US when unset.
func (a Answers) RegionOrDefault() domain.Region {
	return a.Region.OrDefault()
}

// IsExisting reports whether prior-year figures apply.
func (a Answers) IsExisting() bool {
	return a.StoreType == domain.StoreExisting
}

// TaxRushEnabled reports whether TaxRush figures are meaningful.
func (a Answers) TaxRushEnabled() bool {
	return a.Region == domain.RegionCA && a.HandlesTaxRush
}

// AvgNetFee is the projected average net fee, else the target.
func (c Canonical) AvgNetFee() float64 {
	return firstOrZero(c.a.ProjectedAvgNetFee, c.a.AvgNetFee)
}

// TaxPrepReturns is the projected tax-prep return count, else the target.
func (c Canonical) TaxPrepReturns() float64 {
	return firstOrZero(c.a.ProjectedTaxPrepReturns, c.a.TaxPrepReturns)
}

// GrossFees is the projected gross fees, else the target, else fee times returns.
func (c Canonical) GrossFees() float64 {
	if v, ok := first(c.a.ProjectedGrossFees, c.a.GrossFees); ok {
		return v
	}
	return c.AvgNetFee() * c.TaxPrepReturns()
}

// DiscountsPct falls back to the regional default.
func (c Canonical) DiscountsPct() float64 {
	if v, ok := first(c.a.ProjectedDiscountsPct, c.a.DiscountsPct); ok {
		return v
	}
	return c.a.RegionOrDefault().DefaultDiscountPct()
}

// DiscountsAmt is the stored discount amount, else the percentage of gross fees.
func (c Canonical) DiscountsAmt() float64 {
	if v, ok := first(c.a.ProjectedDiscountsAmt, c.a.DiscountsAmt); ok {
		return v
	}
	return mathutil.Round(mathutil.ApplyPercentage(c.GrossFees(), c.DiscountsPct()))
}

// TaxPrepIncome is gross fees less discounts.
func (c Canonical) TaxPrepIncome() float64 {
	if v, ok := first(c.a.ProjectedTaxPrepIncome, c.a.TaxPrepIncome); ok {
		return v
	}
	return c.GrossFees() - c.DiscountsAmt()
}

// TaxRushReturns is zero unless TaxRush applies.
func (c Canonical) TaxRushReturns() float64 {
	if !c.a.TaxRushEnabled() {
		return 0
	}
	return firstOrZero(c.a.ProjectedTaxRushReturns, c.a.TaxRushReturns)
}

// TaxRushAvgNetFee falls back to the tax-prep average net fee.
func (c Canonical) TaxRushAvgNetFee() float64 {
	if !c.a.TaxRushEnabled() {
		return 0
	}
	if c.a.TaxRushAvgNetFee != nil && mathutil.IsPositive(*c.a.TaxRushAvgNetFee) {
		return *c.a.TaxRushAvgNetFee
	}
	return c.AvgNetFee()
}

// TaxRushGrossFees falls back to returns times the TaxRush fee.
func (c Canonical) TaxRushGrossFees() float64 {
	if !c.a.TaxRushEnabled() {
		return 0
	}
	if v, ok := first(c.a.ProjectedTaxRushGrossFees, c.a.TaxRushGrossFees); ok {
		return v
	}
	return c.TaxRushReturns() * c.TaxRushAvgNetFee()
}

// TaxRushIncome equals TaxRush gross fees; TaxRush carries no discounts.
func (c Canonical) TaxRushIncome() float64 {
	return c.TaxRushGrossFees()
}

// OtherIncome is zero unless the office has other income.
func (c Canonical) OtherIncome() float64 {
	if !c.a.HasOtherIncome {
		return 0
	}
	return firstOrZero(c.a.ProjectedOtherIncome, c.a.OtherIncome)
}

// TotalIncome is the revenue context used for the strategic expense range.
func (c Canonical) TotalIncome() float64 {
	return c.TaxPrepIncome() + c.TaxRushIncome() + c.OtherIncome()
}

// TotalReturns counts tax-prep and TaxRush returns.
func (c Canonical) TotalReturns() float64 {
	return c.TaxPrepReturns() + c.TaxRushReturns()
}

// Prior-year getters read as zero for new stores.

// PYGrossFees falls back to the prior-year fee times returns.
func (c Canonical) PYGrossFees() float64 {
	if !c.a.IsExisting() {
		return 0
	}
	if c.a.PYGrossFees != nil {
		return *c.a.PYGrossFees
	}
	return mathutil.Float(c.a.PYAvgNetFee) * mathutil.Float(c.a.PYTaxPrepReturns)
}

// PYTaxPrepIncome is prior-year gross fees less discounts.
func (c Canonical) PYTaxPrepIncome() float64 {
	if !c.a.IsExisting() {
		return 0
	}
	if c.a.PYTaxPrepIncome != nil {
		return *c.a.PYTaxPrepIncome
	}
	return c.PYGrossFees() - mathutil.Float(c.a.PYDiscountsAmt)
}

// PYTaxRushReturns is zero unless TaxRush applies.
func (c Canonical) PYTaxRushReturns() float64 {
	if !c.a.IsExisting() || !c.a.TaxRushEnabled() {
		return 0
	}
	return mathutil.Float(c.a.PYTaxRushReturns)
}

// PYTaxRushGrossFees is zero unless TaxRush applies.
func (c Canonical) PYTaxRushGrossFees() float64 {
	if !c.a.IsExisting() || !c.a.TaxRushEnabled() {
		return 0
	}
	return mathutil.Float(c.a.PYTaxRushGrossFees)
}

// PYOtherIncome is zero unless the office has other income.
func (c Canonical) PYOtherIncome() float64 {
	if !c.a.IsExisting() || !c.a.HasOtherIncome {
		return 0
	}
	return mathutil.Float(c.a.PYOtherIncome)
}

// PYTotalIncome sums the prior-year income lines.
func (c Canonical) PYTotalIncome() float64 {
	return c.PYTaxPrepIncome() + c.PYTaxRushGrossFees() + c.PYOtherIncome()
}
