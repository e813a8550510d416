package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionDefaults(t *testing.T) {
	assert.Equal(t, 1.0, RegionUS.DefaultDiscountPct())
	assert.Equal(t, 3.0, RegionCA.DefaultDiscountPct())
	assert.Equal(t, RegionUS, Region("").OrDefault())
	assert.Equal(t, RegionCA, RegionCA.OrDefault())
	assert.False(t, Region("MX").Valid())
}

func TestExpenseTable(t *testing.T) {
	lines := ExpenseLines()
	assert.Len(t, lines, 17)

	seen := make(map[string]bool)
	for i, line := range lines {
		assert.False(t, seen[line.FieldName()], "duplicate field %s", line.FieldName())
		seen[line.FieldName()] = true

		byField, ok := ExpenseByField(line.FieldName())
		assert.True(t, ok)
		assert.Equal(t, line.Key, byField.Key)

		if line.Base == BaseSalaries {
			salaries, _ := LookupExpense(ExpenseSalaries)
			assert.Greater(t, i, indexOf(lines, salaries.Key), "%s must follow salaries", line.Key)
		}
	}

	telephone, ok := LookupExpense(ExpenseTelephone)
	assert.True(t, ok)
	assert.Equal(t, "telephoneAmt", telephone.FieldName())

	rent, _ := LookupExpense(ExpenseRent)
	assert.Equal(t, "rentPct", rent.FieldName())

	_, ok = ExpenseByField("telephonePct")
	assert.False(t, ok)
}

func indexOf(lines []ExpenseLine, key ExpenseKey) int {
	for i, line := range lines {
		if line.Key == key {
			return i
		}
	}
	return -1
}

func TestThresholdStatuses(t *testing.T) {
	th := DefaultThresholds(RegionUS)

	tests := []struct {
		name     string
		got      Status
		expected Status
	}{
		{"CPR at green limit", th.CostPerReturnStatus(25), StatusGreen},
		{"CPR between limits", th.CostPerReturnStatus(30), StatusYellow},
		{"CPR above yellow", th.CostPerReturnStatus(35.01), StatusRed},
		{"NIM at green", th.NetMarginStatus(20), StatusGreen},
		{"NIM yellow", th.NetMarginStatus(15), StatusYellow},
		{"NIM red", th.NetMarginStatus(5), StatusRed},
		{"Profit", th.NetIncomeStatus(100), StatusGreen},
		{"Small loss", th.NetIncomeStatus(-100), StatusYellow},
		{"Large loss", th.NetIncomeStatus(-5001), StatusRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}

	assert.NotEqual(t, DefaultThresholds(RegionUS), DefaultThresholds(RegionCA))
}
