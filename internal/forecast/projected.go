package forecast

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// GrowthCategory names a projected figure that can grow from prior year.
type GrowthCategory string

const (
	GrowthReturns     GrowthCategory = "returns"
	GrowthAvgNetFee   GrowthCategory = "avgNetFee"
	GrowthTaxRush     GrowthCategory = "taxRush"
	GrowthOtherIncome GrowthCategory = "otherIncome"
)

// GrowthSource supplies growth percentages. A false result means growth is
// not selected for the category and the target is carried forward.
type GrowthSource interface {
	Growth(a answers.Answers, c GrowthCategory) (float64, bool)
}

// AnswerGrowth reads the growth selections stored in the answers.
type AnswerGrowth struct{}

// Growth implements GrowthSource.
func (AnswerGrowth) Growth(a answers.Answers, c GrowthCategory) (float64, bool) {
	var p *float64
	switch c {
	case GrowthReturns:
		p = a.ReturnsGrowthPct
	case GrowthAvgNetFee:
		p = a.AvgNetFeeGrowthPct
	case GrowthTaxRush:
		p = a.TaxRushGrowthPct
	case GrowthOtherIncome:
		p = a.OtherIncomeGrowthPct
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// FixedGrowth applies the same growth to every office.
type FixedGrowth map[GrowthCategory]float64

// Growth implements GrowthSource.
func (g FixedGrowth) Growth(_ answers.Answers, c GrowthCategory) (float64, bool) {
	v, ok := g[c]
	return v, ok
}

// grown projects py with the category's growth when both exist, or returns
// target. round is applied to grown values only.
func (r *Reconciler) grown(a answers.Answers, c GrowthCategory, py, target *float64, round func(float64) *float64) *float64 {
	if a.IsExisting() && py != nil {
		if g, ok := r.growth.Growth(a, c); ok {
			return round(mathutil.ApplyGrowth(*py, g))
		}
	}
	return target
}

// passProjected derives the projected figures from prior year and growth,
// or carries the targets forward.
func (r *Reconciler) passProjected(a answers.Answers) answers.Answers {
	a.ProjectedTaxPrepReturns = r.grown(a, GrowthReturns, a.PYTaxPrepReturns, a.TaxPrepReturns, count)
	a.ProjectedAvgNetFee = r.grown(a, GrowthAvgNetFee, a.PYAvgNetFee, a.AvgNetFee, currency)

	if a.ProjectedTaxPrepReturns != nil && a.ProjectedAvgNetFee != nil {
		a.ProjectedGrossFees = currency(*a.ProjectedAvgNetFee * *a.ProjectedTaxPrepReturns)
	} else {
		a.ProjectedGrossFees = a.GrossFees
	}

	switch {
	case a.DiscountsPct != nil:
		a.ProjectedDiscountsPct = a.DiscountsPct
	case a.PYDiscountsPct != nil:
		a.ProjectedDiscountsPct = a.PYDiscountsPct
	case a.ProjectedGrossFees != nil:
		a.ProjectedDiscountsPct = mathutil.Ptr(a.RegionOrDefault().DefaultDiscountPct())
	default:
		a.ProjectedDiscountsPct = nil
	}

	if a.ProjectedGrossFees != nil {
		a.ProjectedDiscountsAmt = currency(mathutil.ApplyPercentage(*a.ProjectedGrossFees, mathutil.Float(a.ProjectedDiscountsPct)))
		a.ProjectedTaxPrepIncome = currency(*a.ProjectedGrossFees - *a.ProjectedDiscountsAmt)
	} else {
		a.ProjectedDiscountsAmt = a.DiscountsAmt
		a.ProjectedTaxPrepIncome = a.TaxPrepIncome
	}

	if a.TaxRushEnabled() {
		a.ProjectedTaxRushReturns = r.grown(a, GrowthTaxRush, a.PYTaxRushReturns, a.TaxRushReturns, count)
		fee := a.TaxRushAvgNetFee
		if fee == nil || *fee <= 0 {
			fee = a.ProjectedAvgNetFee
		}
		if a.ProjectedTaxRushReturns != nil && fee != nil {
			a.ProjectedTaxRushGrossFees = currency(*a.ProjectedTaxRushReturns * *fee)
		} else {
			a.ProjectedTaxRushGrossFees = a.TaxRushGrossFees
		}
	} else {
		a.ProjectedTaxRushReturns = nil
		a.ProjectedTaxRushGrossFees = nil
	}

	if a.HasOtherIncome {
		a.ProjectedOtherIncome = r.grown(a, GrowthOtherIncome, a.PYOtherIncome, a.OtherIncome, currency)
	} else {
		a.ProjectedOtherIncome = nil
	}

	return a
}
