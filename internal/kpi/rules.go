// Package kpi classifies individual answers into stoplight statuses using
// region- and store-type-specific rules.
package kpi

import (
	"math"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// RuleKind selects how a Rule classifies an observation.
type RuleKind int

const (
	// RuleTolerance compares a percentage against a target with a
	// proportional tolerance.
	RuleTolerance RuleKind = iota
	// RuleCeiling is green up to Green and yellow up to Yellow (percentages).
	RuleCeiling
	// RuleMonthlyCap applies Green/Yellow to annual dollars divided by twelve.
	RuleMonthlyCap
	// RuleDollarRange is green inside [Min, Max] annual dollars.
	RuleDollarRange
	// RuleBands picks the first half-open band containing the value.
	RuleBands
)

func (k RuleKind) String() string {
	switch k {
	case RuleTolerance:
		return "tolerance"
	case RuleCeiling:
		return "ceiling"
	case RuleMonthlyCap:
		return "monthlyCap"
	case RuleDollarRange:
		return "dollarRange"
	case RuleBands:
		return "bands"
	default:
		return "unknown"
	}
}

// Band is the half-open interval [Min, Max). Max of +Inf is unbounded.
type Band struct {
	Min    float64
	Max    float64
	Status domain.Status
}

// Contains reports whether v lies in the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// Rule is one classification rule. Only the fields of its Kind are used.
type Rule struct {
	Kind RuleKind

	Target float64

	Green  float64
	Yellow float64

	Min float64
	Max float64

	Bands []Band
}

// Observation is the measured value of a metric: a percentage (or the raw
// value for banded metrics) and, where it applies, annual dollars.
type Observation struct {
	Value   float64
	Dollars float64
}

// Tolerance returns a tolerance-around-target rule.
func Tolerance(target float64) Rule {
	return Rule{Kind: RuleTolerance, Target: target}
}

// Ceiling returns a percentage ceiling rule.
func Ceiling(green, yellow float64) Rule {
	return Rule{Kind: RuleCeiling, Green: green, Yellow: yellow}
}

// MonthlyCap returns a monthly dollar cap rule.
func MonthlyCap(green, yellow float64) Rule {
	return Rule{Kind: RuleMonthlyCap, Green: green, Yellow: yellow}
}

// DollarRange returns an annual dollar range rule.
func DollarRange(min, max float64) Rule {
	return Rule{Kind: RuleDollarRange, Min: min, Max: max}
}

// Bands returns a banded rule. The last band should be unbounded.
func Bands(bands ...Band) Rule {
	return Rule{Kind: RuleBands, Bands: bands}
}

// Classify returns the status of o under r.
func (r Rule) Classify(o Observation) domain.Status {
	switch r.Kind {
	case RuleTolerance:
		if mathutil.WithinTolerance(o.Value, r.Target, math.Max(0.5, r.Target*0.10)) {
			return domain.StatusGreen
		}
		if mathutil.WithinTolerance(o.Value, r.Target, math.Max(1, r.Target*0.25)) {
			return domain.StatusYellow
		}
		return domain.StatusRed
	case RuleCeiling:
		return ceiling(o.Value, r.Green, r.Yellow)
	case RuleMonthlyCap:
		return ceiling(o.Dollars/constants.MonthsPerYear, r.Green, r.Yellow)
	case RuleDollarRange:
		if o.Dollars >= r.Min && o.Dollars <= r.Max {
			return domain.StatusGreen
		}
		if o.Dollars >= r.Min*0.8 && o.Dollars <= r.Max*1.2 {
			return domain.StatusYellow
		}
		return domain.StatusRed
	case RuleBands:
		for _, b := range r.Bands {
			if b.Contains(o.Value) {
				return b.Status
			}
		}
		return domain.StatusRed
	default:
		return domain.StatusRed
	}
}

func ceiling(v, green, yellow float64) domain.Status {
	switch {
	case v <= green:
		return domain.StatusGreen
	case v <= yellow:
		return domain.StatusYellow
	default:
		return domain.StatusRed
	}
}

// RuleSet holds a metric's base rule and its overrides. Resolution order is
// store type, then region, then base.
type RuleSet struct {
	Base      *Rule
	Region    map[domain.Region]Rule
	StoreType map[domain.StoreType]Rule
}

// Resolve returns the rule that applies to an office, or false when the
// metric has no rule there.
func (rs RuleSet) Resolve(region domain.Region, storeType domain.StoreType) (Rule, bool) {
	if r, ok := rs.StoreType[storeType]; ok {
		return r, true
	}
	if r, ok := rs.Region[region]; ok {
		return r, true
	}
	if rs.Base != nil {
		return *rs.Base, true
	}
	return Rule{}, false
}

func base(r Rule) *Rule {
	return &r
}
