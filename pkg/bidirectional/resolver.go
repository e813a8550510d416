// Package bidirectional keeps the dollar and percentage forms of one quantity
// consistent. The side the user edited last is authoritative and the other is
// recomputed against a base value.
package bidirectional

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// Side names the representation that was edited last.
type Side string

const (
	SideAmount Side = "amount"
	SidePct    Side = "pct"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideAmount || s == SidePct
}

// Pair is a resolved amount/percentage pair.
type Pair struct {
	Amount float64
	Pct    float64
}

// Resolve returns both representations given the last-edited side. A nil
// value on the authoritative side is treated as zero. With a zero base the
// percentage derived from an amount is 0.
func Resolve(last Side, base float64, amount, pct *float64) Pair {
	if last == SideAmount {
		a := mathutil.Float(amount)
		return Pair{Amount: a, Pct: PctFromAmount(a, base)}
	}
	p := mathutil.Float(pct)
	return Pair{Amount: AmountFromPct(p, base), Pct: p}
}

// AmountFromPct converts a percentage of base into dollars.
func AmountFromPct(pct, base float64) float64 {
	return mathutil.ApplyPercentage(base, pct)
}

// PctFromAmount converts dollars into a percentage of base, 0 when base is 0.
func PctFromAmount(amount, base float64) float64 {
	return mathutil.CalculatePercentage(amount, base)
}
