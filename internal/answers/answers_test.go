package answers

import (
	"encoding/json"
	"testing"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalFlattensExpenses(t *testing.T) {
	a := New(domain.RegionUS, domain.StoreNew)
	a.SetExpense(domain.ExpenseRent, 18)
	a.SetExpense(domain.ExpenseTelephone, 4000)
	a.ExpenseBaselines = map[domain.ExpenseKey]float64{domain.ExpenseTelephone: 4000}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, 18.0, fields["rentPct"])
	assert.Equal(t, 4000.0, fields["telephoneAmt"])
	assert.NotContains(t, fields, "rentAmt")
	assert.NotContains(t, fields, "telephonePct")
	assert.Equal(t, float64(constants.SchemaVersion), fields["schemaVersion"])
	assert.Equal(t, map[string]any{"telephone": 4000.0}, fields["expenseBaselines"])

	var back Answers
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, a.Equal(back))
	v, ok := back.Expense(domain.ExpenseTelephone)
	assert.True(t, ok)
	assert.Equal(t, 4000.0, v)
}

func TestUnmarshalIgnoresWrongRepresentation(t *testing.T) {
	var a Answers
	require.NoError(t, json.Unmarshal([]byte(`{"rentPct": 20, "rentAmt": 9000, "telephoneAmt": null}`), &a))

	assert.Equal(t, map[domain.ExpenseKey]float64{domain.ExpenseRent: 20}, a.Expenses)

	err := json.Unmarshal([]byte(`{"rentPct": "high"}`), &a)
	assert.Error(t, err)
}

func TestApplyPatch(t *testing.T) {
	a := Example()

	updated, err := a.Apply(Patch{
		"taxPrepReturns":  1700,
		"discountsPct":    nil,
		"rentPct":         17.5,
		"region":          domain.RegionCA,
		"handlesTaxRush":  true,
		"notARealField":   "ignored",
		FieldExpenseNotes: map[string]string{"rent": "lease renewal in May"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1700.0, *updated.TaxPrepReturns)
	assert.Nil(t, updated.DiscountsPct)
	assert.Equal(t, domain.RegionCA, updated.Region)
	assert.True(t, updated.HandlesTaxRush)
	assert.Equal(t, "lease renewal in May", updated.ExpenseNotes[domain.ExpenseRent])
	rent, ok := updated.Expense(domain.ExpenseRent)
	assert.True(t, ok)
	assert.Equal(t, 17.5, rent)

	// The source snapshot is untouched.
	assert.Equal(t, 1600.0, *a.TaxPrepReturns)
	assert.Equal(t, 3.0, *a.DiscountsPct)
	assert.Empty(t, a.Expenses)
}

func TestApplyEmptyPatchClones(t *testing.T) {
	a := Example()
	a.SetExpense(domain.ExpenseRent, 18)

	b, err := a.Apply(nil)
	require.NoError(t, err)
	b.SetExpense(domain.ExpenseRent, 30)

	rent, _ := a.Expense(domain.ExpenseRent)
	assert.Equal(t, 18.0, rent)
}

func TestPatchKeysSorted(t *testing.T) {
	p := Patch{"b": 1, "a": 2, "c": nil}
	assert.Equal(t, []string{"a", "b", "c"}, p.Keys())
}

func TestEqualTreatsEmptyMapsAsAbsent(t *testing.T) {
	a := New(domain.RegionUS, domain.StoreNew)
	b := a.Clone()
	b.ExpenseBaselines = map[domain.ExpenseKey]float64{}
	b.Expenses = map[domain.ExpenseKey]float64{}
	assert.True(t, a.Equal(b))

	b.GrossFees = mathutil.Ptr(1)
	assert.False(t, a.Equal(b))
}

func TestMigrate(t *testing.T) {
	var legacy Answers
	require.NoError(t, json.Unmarshal([]byte(`{"region":"CA","avgNetFee":125}`), &legacy))
	assert.Equal(t, 0, legacy.SchemaVersion)

	migrated := Migrate(legacy, constants.SchemaVersion)
	assert.Equal(t, constants.SchemaVersion, migrated.SchemaVersion)
	assert.Equal(t, 125.0, *migrated.AvgNetFee)

	future := Answers{SchemaVersion: 7}
	assert.Equal(t, 7, Migrate(future, constants.SchemaVersion).SchemaVersion)
}

func TestDataFieldsCoverExpenseLines(t *testing.T) {
	fields := DataFields()
	for _, line := range domain.ExpenseLines() {
		assert.Contains(t, fields, line.FieldName())
	}
	for _, config := range ConfigFields {
		assert.NotContains(t, fields, config)
	}
	assert.NotContains(t, fields, FieldExpenseNotes)
	assert.NotContains(t, fields, FieldIsExampleData)
}
