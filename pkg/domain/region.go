// Package domain defines the shared vocabulary of the P&L core: regions,
// store types, stoplight statuses, expense lines and KPI thresholds.
package domain

// Region is the country an office operates in.
type Region string

const (
	RegionUS Region = "US"
	RegionCA Region = "CA"
)

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	return r == RegionUS || r == RegionCA
}

// OrDefault returns r, or RegionUS when r is unset or unknown.
func (r Region) OrDefault() Region {
	if r.Valid() {
		return r
	}
	return RegionUS
}

// DefaultDiscountPct is the regional customer discount percentage applied
// whenever gross fees exist and no percentage was entered.
func (r Region) DefaultDiscountPct() float64 {
	if r == RegionCA {
		return 3.0
	}
	return 1.0
}

// StoreType distinguishes offices with prior-year history from new ones.
type StoreType string

const (
	StoreNew      StoreType = "new"
	StoreExisting StoreType = "existing"
)

// Valid reports whether s is a known store type.
func (s StoreType) Valid() bool {
	return s == StoreNew || s == StoreExisting
}

// DefaultTaxRushReturnsPct is the share of tax-prep returns assumed to be
// TaxRush returns when a Canadian office handles TaxRush and nothing was entered.
const DefaultTaxRushReturnsPct = 15.0
