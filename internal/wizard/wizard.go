// Package wizard decides whether the guided setup has everything the P&L
// needs. It only reads answers and has no dependency on the store or the
// reconciler, so both can ask it.
package wizard

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
)

// Step is one page of the guided setup.
type Step string

const (
	StepSetup     Step = "setup"
	StepPriorYear Step = "priorYear"
	StepTargets   Step = "targets"
	StepExpenses  Step = "expenses"
)

// StepStatus reports the missing fields of one step.
type StepStatus struct {
	Step     Step     `json:"step" yaml:"step"`
	Required bool     `json:"required" yaml:"required"`
	Missing  []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Complete reports whether the step has nothing missing.
func (s StepStatus) Complete() bool {
	return len(s.Missing) == 0
}

// Check returns the status of every step in order. Steps that do not apply
// to the office are returned with Required false and nothing missing.
func Check(a answers.Answers) []StepStatus {
	return []StepStatus{
		{Step: StepSetup, Required: true, Missing: setupMissing(a)},
		priorYear(a),
		{Step: StepTargets, Required: true, Missing: targetsMissing(a)},
		{Step: StepExpenses, Required: true, Missing: expensesMissing(a)},
	}
}

// Missing returns every missing field name across all steps.
func Missing(a answers.Answers) []string {
	var missing []string
	for _, s := range Check(a) {
		missing = append(missing, s.Missing...)
	}
	return missing
}

// Complete reports whether the guided setup can be finished.
func Complete(a answers.Answers) bool {
	return len(Missing(a)) == 0
}

func setupMissing(a answers.Answers) []string {
	var missing []string
	if !a.Region.Valid() {
		missing = append(missing, answers.FieldRegion)
	}
	if !a.StoreType.Valid() {
		missing = append(missing, answers.FieldStoreType)
	}
	return missing
}

func priorYear(a answers.Answers) StepStatus {
	status := StepStatus{Step: StepPriorYear, Required: a.IsExisting()}
	if !status.Required {
		return status
	}

	if a.PYAvgNetFee == nil && a.PYGrossFees == nil {
		status.Missing = append(status.Missing, "pyAvgNetFee")
	}
	if a.PYTaxPrepReturns == nil {
		status.Missing = append(status.Missing, "pyTaxPrepReturns")
	}
	if a.TaxRushEnabled() && a.PYTaxRushReturns == nil && a.PYTaxRushReturnsPct == nil {
		status.Missing = append(status.Missing, "pyTaxRushReturns")
	}
	if a.HasOtherIncome && a.PYOtherIncome == nil {
		status.Missing = append(status.Missing, "pyOtherIncome")
	}
	return status
}

// targetsMissing accepts projected figures in place of typed targets, since
// an existing office may reach its targets through growth alone.
func targetsMissing(a answers.Answers) []string {
	c := a.Canonical()
	var missing []string
	if c.AvgNetFee() <= 0 {
		missing = append(missing, "avgNetFee")
	}
	if c.TaxPrepReturns() <= 0 {
		missing = append(missing, "taxPrepReturns")
	}
	if a.TaxRushEnabled() && a.TaxRushReturns == nil && a.TaxRushReturnsPct == nil && a.ProjectedTaxRushReturns == nil {
		missing = append(missing, answers.FieldTaxRushReturns)
	}
	if a.HasOtherIncome && a.OtherIncome == nil && a.ProjectedOtherIncome == nil {
		missing = append(missing, "otherIncome")
	}
	return missing
}

func expensesMissing(a answers.Answers) []string {
	if a.ExpensesSeeded {
		return nil
	}
	var missing []string
	for _, line := range domain.ExpenseLines() {
		if line.TaxRushOnly && !a.TaxRushEnabled() {
			continue
		}
		if _, ok := a.Expense(line.Key); !ok {
			missing = append(missing, line.FieldName())
		}
	}
	return missing
}
