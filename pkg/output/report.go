// Package output provides utilities for building and displaying P&L reports.
package output

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/kpi"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/wizard"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/adapters"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/finance"
)

// KPI is the stoplight status of one metric.
type KPI struct {
	Metric string        `json:"metric" yaml:"metric"`
	Status domain.Status `json:"status" yaml:"status"`
}

// ExpenseRange is the strategic total-expense range.
type ExpenseRange struct {
	Min    float64 `json:"min" yaml:"min"`
	Target float64 `json:"target" yaml:"target"`
	Max    float64 `json:"max" yaml:"max"`
}

// PriorYear holds last season's revenue totals of an existing office.
type PriorYear struct {
	GrossFees     float64 `json:"grossFees" yaml:"grossFees"`
	TaxPrepIncome float64 `json:"taxPrepIncome" yaml:"taxPrepIncome"`
	TotalIncome   float64 `json:"totalIncome" yaml:"totalIncome"`
}

// Report is everything rendered for one office.
type Report struct {
	Region        domain.Region    `json:"region" yaml:"region"`
	StoreType     domain.StoreType `json:"storeType,omitempty" yaml:"storeType,omitempty"`
	IsExampleData bool             `json:"isExampleData,omitempty" yaml:"isExampleData,omitempty"`
	Results       finance.Results  `json:"results" yaml:"results"`
	ExpenseRange  *ExpenseRange    `json:"expenseRange,omitempty" yaml:"expenseRange,omitempty"`
	PriorYear     *PriorYear       `json:"priorYear,omitempty" yaml:"priorYear,omitempty"`
	KPIs          []KPI            `json:"kpis" yaml:"kpis"`
	Missing       []string         `json:"missing,omitempty" yaml:"missing,omitempty"`
	Warnings      []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// BuildReport computes the P&L and KPI statuses of a. overrides replaces
// the built-in thresholds per region.
func BuildReport(logger *zap.Logger, a answers.Answers, overrides map[domain.Region]domain.Thresholds) Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	region := a.RegionOrDefault()
	r := Report{
		Region:        region,
		StoreType:     a.StoreType,
		IsExampleData: a.IsExampleData,
		Results:       finance.Calculate(adapters.AnswersToInputs(a), adapters.ThresholdsFor(region, overrides)),
		Missing:       wizard.Missing(a),
		Warnings:      a.Warnings(),
	}

	if a.CalculatedTotalExpenses != nil && a.TotalExpensesMin != nil && a.TotalExpensesMax != nil {
		r.ExpenseRange = &ExpenseRange{
			Min:    *a.TotalExpensesMin,
			Target: *a.CalculatedTotalExpenses,
			Max:    *a.TotalExpensesMax,
		}
	}

	if a.IsExisting() {
		c := a.Canonical()
		r.PriorYear = &PriorYear{
			GrossFees:     c.PYGrossFees(),
			TaxPrepIncome: c.PYTaxPrepIncome(),
			TotalIncome:   c.PYTotalIncome(),
		}
	}

	statuses := kpi.NewEvaluator(logger, nil).Evaluate(a)
	r.KPIs = make([]KPI, 0, len(statuses))
	for metric, status := range statuses {
		r.KPIs = append(r.KPIs, KPI{Metric: metric, Status: status})
	}
	sort.Slice(r.KPIs, func(i, j int) bool { return r.KPIs[i].Metric < r.KPIs[j].Metric })

	logger.Debug("built report",
		zap.String("op", "output.BuildReport"),
		zap.Float64("netIncome", r.Results.NetIncome),
		zap.Int("missing", len(r.Missing)),
		zap.Int("warnings", len(r.Warnings)),
	)

	return r
}
