// Package answers defines the Answers aggregate: the sparse set of user
// answers plus every value derived from them, serialized as flat JSON keyed
// by field name.
package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
)

// Answers is the single aggregate read and written by the store and the
// reconciler. Optional numbers are pointers: nil means "not answered".
//
// Snapshots share pointer targets. Code replaces a pointer field instead of
// writing through it, and copies maps with Clone before changing them.
type Answers struct {
	SchemaVersion  int              `json:"schemaVersion,omitempty"`
	Region         domain.Region    `json:"region,omitempty"`
	StoreType      domain.StoreType `json:"storeType,omitempty"`
	HandlesTaxRush bool             `json:"handlesTaxRush,omitempty"`
	HasOtherIncome bool             `json:"hasOtherIncome,omitempty"`

	// Prior year
	PYAvgNetFee         *float64 `json:"pyAvgNetFee,omitempty"`
	PYTaxPrepReturns    *float64 `json:"pyTaxPrepReturns,omitempty"`
	PYGrossFees         *float64 `json:"pyGrossFees,omitempty"`
	PYDiscountsPct      *float64 `json:"pyDiscountsPct,omitempty"`
	PYDiscountsAmt      *float64 `json:"pyDiscountsAmt,omitempty"`
	PYTaxPrepIncome     *float64 `json:"pyTaxPrepIncome,omitempty"`
	PYTaxRushReturns    *float64 `json:"pyTaxRushReturns,omitempty"`
	PYTaxRushReturnsPct *float64 `json:"pyTaxRushReturnsPct,omitempty"`
	PYTaxRushAvgNetFee  *float64 `json:"pyTaxRushAvgNetFee,omitempty"`
	PYTaxRushGrossFees  *float64 `json:"pyTaxRushGrossFees,omitempty"`
	PYOtherIncome       *float64 `json:"pyOtherIncome,omitempty"`
	PYTotalExpenses     *float64 `json:"pyTotalExpenses,omitempty"`

	// Target
	AvgNetFee             *float64 `json:"avgNetFee,omitempty"`
	TaxPrepReturns        *float64 `json:"taxPrepReturns,omitempty"`
	GrossFees             *float64 `json:"grossFees,omitempty"`
	DiscountsPct          *float64 `json:"discountsPct,omitempty"`
	DiscountsAmt          *float64 `json:"discountsAmt,omitempty"`
	TaxPrepIncome         *float64 `json:"taxPrepIncome,omitempty"`
	TaxRushReturns        *float64 `json:"taxRushReturns,omitempty"`
	TaxRushReturnsPct     *float64 `json:"taxRushReturnsPct,omitempty"`
	TaxRushAvgNetFee      *float64 `json:"taxRushAvgNetFee,omitempty"`
	TaxRushGrossFees      *float64 `json:"taxRushGrossFees,omitempty"`
	OtherIncome           *float64 `json:"otherIncome,omitempty"`
	TotalExpensesOverride *float64 `json:"totalExpensesOverride,omitempty"`

	// Strategic expense range, written once
	CalculatedTotalExpenses *float64 `json:"calculatedTotalExpenses,omitempty"`
	TotalExpensesMin        *float64 `json:"totalExpensesMin,omitempty"`
	TotalExpensesMax        *float64 `json:"totalExpensesMax,omitempty"`

	// Growth selections; a present value means the category is selected
	ReturnsGrowthPct     *float64 `json:"returnsGrowthPct,omitempty"`
	AvgNetFeeGrowthPct   *float64 `json:"avgNetFeeGrowthPct,omitempty"`
	TaxRushGrowthPct     *float64 `json:"taxRushGrowthPct,omitempty"`
	OtherIncomeGrowthPct *float64 `json:"otherIncomeGrowthPct,omitempty"`

	// Projected
	ProjectedAvgNetFee        *float64 `json:"projectedAvgNetFee,omitempty"`
	ProjectedTaxPrepReturns   *float64 `json:"projectedTaxPrepReturns,omitempty"`
	ProjectedGrossFees        *float64 `json:"projectedGrossFees,omitempty"`
	ProjectedDiscountsPct     *float64 `json:"projectedDiscountsPct,omitempty"`
	ProjectedDiscountsAmt     *float64 `json:"projectedDiscountsAmt,omitempty"`
	ProjectedTaxPrepIncome    *float64 `json:"projectedTaxPrepIncome,omitempty"`
	ProjectedTaxRushReturns   *float64 `json:"projectedTaxRushReturns,omitempty"`
	ProjectedTaxRushGrossFees *float64 `json:"projectedTaxRushGrossFees,omitempty"`
	ProjectedOtherIncome      *float64 `json:"projectedOtherIncome,omitempty"`

	// Expenses holds the authoritative input of each line. It is serialized
	// flat under the line's field name ("rentPct", "telephoneAmt").
	Expenses         map[domain.ExpenseKey]float64 `json:"-"`
	ExpenseBaselines map[domain.ExpenseKey]float64 `json:"expenseBaselines,omitempty"`
	ExpenseNotes     map[domain.ExpenseKey]string  `json:"expenseNotes,omitempty"`

	ExpensesSeeded         bool `json:"expensesSeeded,omitempty"`
	TaxRushReturnsManual   bool `json:"taxRushReturnsManual,omitempty"`
	PYTaxRushReturnsManual bool `json:"pyTaxRushReturnsManual,omitempty"`
	IsExampleData          bool `json:"_isExampleData,omitempty"`
}

// answersJSON has the fields of Answers without its JSON methods.
type answersJSON Answers

// MarshalJSON flattens the expense inputs next to the other fields.
func (a Answers) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(answersJSON(a))
	if err != nil {
		return nil, err
	}
	if len(a.Expenses) == 0 {
		return base, nil
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for key, value := range a.Expenses {
		line, ok := domain.LookupExpense(key)
		if !ok {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", key, err)
		}
		fields[line.FieldName()] = raw
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads flat expense fields back into Expenses. Field names
// that do not match a line's storage kind are ignored.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var base answersJSON
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*a = Answers(base)
	for name, raw := range fields {
		line, ok := domain.ExpenseByField(name)
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if a.Expenses == nil {
			a.Expenses = make(map[domain.ExpenseKey]float64)
		}
		a.Expenses[line.Key] = value
	}
	return nil
}

// Clone returns a copy whose maps can be modified independently.
func (a Answers) Clone() Answers {
	out := a
	out.Expenses = cloneFloatMap(a.Expenses)
	out.ExpenseBaselines = cloneFloatMap(a.ExpenseBaselines)
	if a.ExpenseNotes != nil {
		out.ExpenseNotes = make(map[domain.ExpenseKey]string, len(a.ExpenseNotes))
		for k, v := range a.ExpenseNotes {
			out.ExpenseNotes[k] = v
		}
	}
	return out
}

func cloneFloatMap(in map[domain.ExpenseKey]float64) map[domain.ExpenseKey]float64 {
	if in == nil {
		return nil
	}
	out := make(map[domain.ExpenseKey]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Equal compares two snapshots by their persisted form, so nil and empty
// maps are the same.
func (a Answers) Equal(b Answers) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// Expense returns the authoritative input of a line.
func (a Answers) Expense(key domain.ExpenseKey) (float64, bool) {
	v, ok := a.Expenses[key]
	return v, ok
}

// SetExpense stores the authoritative input of a line. Call it on a Clone.
func (a *Answers) SetExpense(key domain.ExpenseKey, value float64) {
	if a.Expenses == nil {
		a.Expenses = make(map[domain.ExpenseKey]float64)
	}
	a.Expenses[key] = value
}

// Patch is a partial update keyed by flat field name. A nil value removes
// the field.
type Patch map[string]any

// Keys returns the patch's field names in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply merges p into a copy of a. Unknown field names are dropped.
func (a Answers) Apply(p Patch) (Answers, error) {
	if len(p) == 0 {
		return a.Clone(), nil
	}

	raw, err := json.Marshal(a)
	if err != nil {
		return a, fmt.Errorf("failed to encode answers: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return a, fmt.Errorf("failed to decode answers: %w", err)
	}
	for key, value := range p {
		if value == nil {
			delete(fields, key)
			continue
		}
		fields[key] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return a, fmt.Errorf("failed to encode patch: %w", err)
	}
	var out Answers
	if err := json.Unmarshal(merged, &out); err != nil {
		return a, fmt.Errorf("failed to apply patch: %w", err)
	}
	return out, nil
}

// Migrate upgrades a decoded aggregate to the current schema version.
// Version 0 is the unversioned layout and differs only by the missing field.
func Migrate(a Answers, current int) Answers {
	if a.SchemaVersion < current {
		a.SchemaVersion = current
	}
	return a
}
