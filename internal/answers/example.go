package answers

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// Example returns the demonstration aggregate used on first load and as the
// fallback when persisted state cannot be read. It describes an existing US
// office; the reconciler derives everything else.
func Example() Answers {
	return Answers{
		SchemaVersion: constants.SchemaVersion,
		Region:        domain.RegionUS,
		StoreType:     domain.StoreExisting,

		PYAvgNetFee:      mathutil.Ptr(240),
		PYTaxPrepReturns: mathutil.Ptr(1500),
		PYDiscountsPct:   mathutil.Ptr(3),
		PYTotalExpenses:  mathutil.Ptr(262000),

		AvgNetFee:      mathutil.Ptr(250),
		TaxPrepReturns: mathutil.Ptr(1600),
		DiscountsPct:   mathutil.Ptr(3),

		IsExampleData: true,
	}
}

// New returns an empty aggregate for region and store type.
func New(region domain.Region, storeType domain.StoreType) Answers {
	return Answers{
		SchemaVersion: constants.SchemaVersion,
		Region:        region.OrDefault(),
		StoreType:     storeType,
	}
}
