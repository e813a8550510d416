package store

import (
	"errors"
	"fmt"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/adapters"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/bidirectional"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/finance"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// ErrTaxRushDisabled is returned when TaxRush figures are edited for an
// office that does not handle TaxRush.
var ErrTaxRushDisabled = errors.New("taxrush does not apply to this office")

// withRegionDefault adds the new region's discount percentage to a patch
// that changes the region, unless the user picked their own percentage.
func withRegionDefault(current answers.Answers, p answers.Patch) answers.Patch {
	raw, ok := p[answers.FieldRegion]
	if !ok {
		return p
	}
	if _, explicit := p[answers.FieldDiscountsPct]; explicit {
		return p
	}

	var region domain.Region
	switch v := raw.(type) {
	case string:
		region = domain.Region(v)
	case domain.Region:
		region = v
	default:
		return p
	}
	if !region.Valid() || region == current.RegionOrDefault() {
		return p
	}

	oldDefault := current.RegionOrDefault().DefaultDiscountPct()
	if current.DiscountsPct != nil && *current.DiscountsPct != oldDefault {
		return p
	}

	out := make(answers.Patch, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[answers.FieldDiscountsPct] = region.DefaultDiscountPct()
	return out
}

// EditExpense records an edit of one expense line on either side and stores
// the line's authoritative representation. The returned pair holds both
// sides against the line's current base.
func (s *Store) EditExpense(key domain.ExpenseKey, side bidirectional.Side, value float64) (bidirectional.Pair, error) {
	line, ok := domain.LookupExpense(key)
	if !ok {
		return bidirectional.Pair{}, fmt.Errorf("unknown expense line %q", key)
	}
	if !side.Valid() {
		return bidirectional.Pair{}, fmt.Errorf("unknown side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if line.TaxRushOnly && !s.current.TaxRushEnabled() {
		return bidirectional.Pair{}, fmt.Errorf("expense %s: %w", key, ErrTaxRushDisabled)
	}

	results := finance.Calculate(adapters.AnswersToInputs(s.current), domain.DefaultThresholds(s.current.RegionOrDefault()))
	pair := resolve(side, results.LineBase(line), value)

	stored := pair.Pct
	if line.Kind == domain.KindAmount {
		stored = pair.Amount
	}
	if err := s.applyLocked(answers.Patch{line.FieldName(): stored}); err != nil {
		return bidirectional.Pair{}, err
	}
	return pair, nil
}

// EditDiscounts records a discount edit. The percentage is authoritative;
// an amount edit is converted against the current-year gross fees, the base
// the reconciler derives the stored amount from.
func (s *Store) EditDiscounts(side bidirectional.Side, value float64) (bidirectional.Pair, error) {
	if !side.Valid() {
		return bidirectional.Pair{}, fmt.Errorf("unknown side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pair := resolve(side, discountBase(s.current), value)
	err := s.applyLocked(answers.Patch{
		answers.FieldDiscountsPct: pair.Pct,
		answers.FieldDiscountsAmt: mathutil.Round(pair.Amount),
	})
	if err != nil {
		return bidirectional.Pair{}, err
	}
	return pair, nil
}

// EditTaxRushReturns records a TaxRush returns edit. Typing a count marks
// the returns as manual so the reconciler back-calculates the share; typing
// a share hands the count back to the reconciler.
func (s *Store) EditTaxRushReturns(side bidirectional.Side, value float64) (bidirectional.Pair, error) {
	if !side.Valid() {
		return bidirectional.Pair{}, fmt.Errorf("unknown side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.TaxRushEnabled() {
		return bidirectional.Pair{}, ErrTaxRushDisabled
	}

	base := mathutil.Float(s.current.TaxPrepReturns)
	pair := resolve(side, base, value)

	var p answers.Patch
	if side == bidirectional.SideAmount {
		pair.Pct = mathutil.RoundTo(pair.Pct, constants.PercentPlaces)
		p = answers.Patch{
			answers.FieldTaxRushReturns:       pair.Amount,
			answers.FieldTaxRushReturnsPct:    pair.Pct,
			answers.FieldTaxRushReturnsManual: true,
		}
	} else {
		pair.Amount = mathutil.RoundWhole(pair.Amount)
		p = answers.Patch{
			answers.FieldTaxRushReturns:       pair.Amount,
			answers.FieldTaxRushReturnsPct:    pair.Pct,
			answers.FieldTaxRushReturnsManual: nil,
		}
	}
	if err := s.applyLocked(p); err != nil {
		return bidirectional.Pair{}, err
	}
	return pair, nil
}

// discountBase is the current-year gross fees, or the fee times returns when
// gross fees have not been derived yet. Projected figures never apply.
func discountBase(a answers.Answers) float64 {
	if a.GrossFees != nil {
		return *a.GrossFees
	}
	return mathutil.Round(mathutil.Float(a.AvgNetFee) * mathutil.Float(a.TaxPrepReturns))
}

func resolve(side bidirectional.Side, base, value float64) bidirectional.Pair {
	if side == bidirectional.SideAmount {
		return bidirectional.Resolve(side, base, &value, nil)
	}
	return bidirectional.Resolve(side, base, nil, &value)
}
