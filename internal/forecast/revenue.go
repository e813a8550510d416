package forecast

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// revenueFields points at one year's revenue fields so the current-year
// passes and their prior-year mirror share one implementation.
type revenueFields struct {
	avgNetFee    **float64
	returns      **float64
	grossFees    **float64
	discountsPct **float64
	discountsAmt **float64
	income       **float64

	taxRushReturns    **float64
	taxRushReturnsPct **float64
	taxRushAvgNetFee  **float64
	taxRushGrossFees  **float64
	taxRushManual     bool
}

func currentYear(a *answers.Answers) revenueFields {
	return revenueFields{
		avgNetFee:         &a.AvgNetFee,
		returns:           &a.TaxPrepReturns,
		grossFees:         &a.GrossFees,
		discountsPct:      &a.DiscountsPct,
		discountsAmt:      &a.DiscountsAmt,
		income:            &a.TaxPrepIncome,
		taxRushReturns:    &a.TaxRushReturns,
		taxRushReturnsPct: &a.TaxRushReturnsPct,
		taxRushAvgNetFee:  &a.TaxRushAvgNetFee,
		taxRushGrossFees:  &a.TaxRushGrossFees,
		taxRushManual:     a.TaxRushReturnsManual,
	}
}

func priorYear(a *answers.Answers) revenueFields {
	return revenueFields{
		avgNetFee:         &a.PYAvgNetFee,
		returns:           &a.PYTaxPrepReturns,
		grossFees:         &a.PYGrossFees,
		discountsPct:      &a.PYDiscountsPct,
		discountsAmt:      &a.PYDiscountsAmt,
		income:            &a.PYTaxPrepIncome,
		taxRushReturns:    &a.PYTaxRushReturns,
		taxRushReturnsPct: &a.PYTaxRushReturnsPct,
		taxRushAvgNetFee:  &a.PYTaxRushAvgNetFee,
		taxRushGrossFees:  &a.PYTaxRushGrossFees,
		taxRushManual:     a.PYTaxRushReturnsManual,
	}
}

func currency(v float64) *float64 {
	return mathutil.Ptr(mathutil.Round(v))
}

func count(v float64) *float64 {
	return mathutil.Ptr(mathutil.RoundWhole(v))
}

// deriveGrossFees sets gross fees from returns and average net fee.
func deriveGrossFees(f revenueFields) bool {
	if *f.avgNetFee == nil || *f.returns == nil {
		return false
	}
	*f.grossFees = currency(**f.avgNetFee * **f.returns)
	return true
}

// deriveDiscountDefault injects the regional discount percentage.
func deriveDiscountDefault(f revenueFields, region domain.Region) bool {
	if *f.grossFees == nil || *f.discountsPct != nil {
		return false
	}
	*f.discountsPct = mathutil.Ptr(region.OrDefault().DefaultDiscountPct())
	return true
}

// deriveDiscountAmt converts the discount percentage into dollars.
func deriveDiscountAmt(f revenueFields) bool {
	if *f.grossFees == nil || *f.discountsPct == nil {
		return false
	}
	*f.discountsAmt = currency(mathutil.ApplyPercentage(**f.grossFees, **f.discountsPct))
	return true
}

// deriveTaxPrepIncome subtracts discounts from gross fees.
func deriveTaxPrepIncome(f revenueFields) bool {
	if *f.grossFees == nil {
		return false
	}
	*f.income = currency(**f.grossFees - mathutil.Float(*f.discountsAmt))
	return true
}

// deriveTaxRush fills the TaxRush share, returns and gross fees. Returns are
// only derived from the share while the user has not typed them directly.
func deriveTaxRush(f revenueFields) bool {
	changed := false

	if !f.taxRushManual && *f.taxRushReturnsPct == nil && *f.taxRushReturns == nil {
		*f.taxRushReturnsPct = mathutil.Ptr(domain.DefaultTaxRushReturnsPct)
		changed = true
	}

	if !f.taxRushManual && *f.taxRushReturnsPct != nil && *f.returns != nil {
		*f.taxRushReturns = count(mathutil.ApplyPercentage(**f.returns, **f.taxRushReturnsPct))
		changed = true
	}

	fee := *f.taxRushAvgNetFee
	if fee == nil || !mathutil.IsPositive(*fee) {
		fee = *f.avgNetFee
	}
	if *f.taxRushReturns != nil && fee != nil {
		*f.taxRushGrossFees = currency(**f.taxRushReturns * *fee)
		changed = true
	}

	return changed
}

// deriveTaxRushPct back-calculates the TaxRush share from manually entered
// returns, as a percentage of tax-prep returns with one decimal.
func deriveTaxRushPct(f revenueFields) bool {
	if !f.taxRushManual || *f.taxRushReturns == nil || *f.taxRushReturnsPct != nil {
		return false
	}
	total := mathutil.Float(*f.returns)
	if !mathutil.IsPositive(total) {
		return false
	}
	pct := mathutil.RoundTo(mathutil.CalculatePercentage(**f.taxRushReturns, total), constants.PercentPlaces)
	*f.taxRushReturnsPct = mathutil.Ptr(pct)
	return true
}
