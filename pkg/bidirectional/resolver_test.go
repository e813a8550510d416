package bidirectional

import (
	"testing"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		last     Side
		base     float64
		amount   *float64
		pct      *float64
		expected Pair
	}{
		{
			name:     "Amount edited derives pct",
			last:     SideAmount,
			base:     400000,
			amount:   mathutil.Ptr(4000),
			pct:      mathutil.Ptr(9),
			expected: Pair{Amount: 4000, Pct: 1},
		},
		{
			name:     "Pct edited derives amount",
			last:     SidePct,
			base:     400000,
			amount:   mathutil.Ptr(1),
			pct:      mathutil.Ptr(3),
			expected: Pair{Amount: 12000, Pct: 3},
		},
		{
			name:     "Zero base yields zero pct",
			last:     SideAmount,
			base:     0,
			amount:   mathutil.Ptr(500),
			expected: Pair{Amount: 500, Pct: 0},
		},
		{
			name:     "Zero base keeps an edited pct",
			last:     SidePct,
			base:     0,
			pct:      mathutil.Ptr(2.5),
			expected: Pair{Amount: 0, Pct: 2.5},
		},
		{
			name:     "Missing authoritative value reads as zero",
			last:     SidePct,
			base:     1000,
			amount:   mathutil.Ptr(300),
			expected: Pair{Amount: 0, Pct: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.last, tt.base, tt.amount, tt.pct)
			assert.InDelta(t, tt.expected.Amount, got.Amount, 1e-9)
			assert.InDelta(t, tt.expected.Pct, got.Pct, 1e-9)
		})
	}
}

func TestPctRoundTrip(t *testing.T) {
	bases := []float64{0.01, 1, 388000, 412345.67, 1e9}
	pcts := []float64{0, 0.15, 1, 3.3333, 25, 99.99, 150}

	for _, base := range bases {
		for _, pct := range pcts {
			got := PctFromAmount(AmountFromPct(pct, base), base)
			assert.InDelta(t, pct, got, 1e-9, "base=%v pct=%v", base, pct)
		}
	}
}

func TestSideValid(t *testing.T) {
	assert.True(t, SideAmount.Valid())
	assert.True(t, SidePct.Valid())
	assert.False(t, Side("both").Valid())
}
