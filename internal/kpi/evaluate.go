package kpi

import (
	"go.uber.org/zap"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// Evaluate classifies a with the default rules.
func Evaluate(a answers.Answers) map[string]domain.Status {
	return NewEvaluator(nil, nil).Evaluate(a)
}

// Evaluate classifies a with rs.
func (rs Rules) Evaluate(a answers.Answers) map[string]domain.Status {
	e := Evaluator{rules: rs, logger: zap.NewNop()}
	return e.Evaluate(a)
}

// Evaluator applies a rule table to answers.
type Evaluator struct {
	rules  Rules
	logger *zap.Logger
}

// NewEvaluator creates an Evaluator. A nil rule table means DefaultRules.
func NewEvaluator(logger *zap.Logger, rules Rules) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Evaluator{rules: rules, logger: logger}
}

// Evaluate classifies every metric of a that has a value and a rule for the
// office's region and store type. Amount lines are measured as a percentage
// of gross fees rounded to one decimal; with no gross fees that percentage
// is 0.
func (e *Evaluator) Evaluate(a answers.Answers) map[string]domain.Status {
	rs := e.rules
	out := make(map[string]domain.Status)
	region := a.RegionOrDefault()
	c := a.Canonical()

	if a.ProjectedAvgNetFee != nil || a.AvgNetFee != nil {
		if rule, ok := rs[MetricAvgNetFee].Resolve(region, a.StoreType); ok {
			out[MetricAvgNetFee] = rule.Classify(Observation{Value: c.AvgNetFee()})
		}
	}

	m := measurer{c: c, gross: c.GrossFees()}
	if pct, ok := a.Expense(domain.ExpenseSalaries); ok {
		m.salaries = mathutil.ApplyPercentage(m.gross, pct)
	}

	for _, line := range domain.ExpenseLines() {
		value, ok := a.Expense(line.Key)
		if !ok {
			continue
		}
		if line.TaxRushOnly && !a.TaxRushEnabled() {
			e.skip(line.Key, "taxrush disabled")
			continue
		}
		set, ok := rs[string(line.Key)]
		if !ok {
			e.skip(line.Key, "no rule")
			continue
		}
		rule, ok := set.Resolve(region, a.StoreType)
		if !ok {
			e.skip(line.Key, "no rule for office")
			continue
		}
		out[string(line.Key)] = rule.Classify(m.observe(line, value))
	}

	e.logger.Debug("evaluated kpis",
		zap.String("op", "kpi.Evaluate"),
		zap.String("region", string(region)),
		zap.Int("metrics", len(out)),
	)
	return out
}

func (e *Evaluator) skip(key domain.ExpenseKey, reason string) {
	e.logger.Debug("skipped kpi",
		zap.String("op", "kpi.Evaluate"),
		zap.String("line", string(key)),
		zap.String("reason", reason),
	)
}

type measurer struct {
	c        answers.Canonical
	gross    float64
	salaries float64
}

func (m measurer) observe(line domain.ExpenseLine, value float64) Observation {
	if line.Kind == domain.KindAmount {
		pct := mathutil.RoundTo(mathutil.CalculatePercentage(value, m.gross), constants.PercentPlaces)
		return Observation{Value: pct, Dollars: value}
	}
	return Observation{Value: value, Dollars: mathutil.ApplyPercentage(m.base(line.Base), value)}
}

func (m measurer) base(b domain.Base) float64 {
	switch b {
	case domain.BaseGrossFees:
		return m.gross
	case domain.BaseTaxPrepIncome:
		return m.c.TaxPrepIncome()
	case domain.BaseSalaries:
		return m.salaries
	case domain.BaseTaxRushIncome:
		return m.c.TaxRushIncome()
	default:
		return 0
	}
}
