package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
)

// SpendingAnalysis is the result of solving for the highest household
// expense level whose simulated success rate still meets the target.
// Multiplier scales every expense stream's base amount; FirstYearSpending
// is the scaled expense total in the projection's first year.
type SpendingAnalysis struct {
	TargetSuccessRate   decimal.Decimal `json:"target_success_rate"`
	Multiplier          decimal.Decimal `json:"multiplier"`
	FirstYearSpending   decimal.Decimal `json:"first_year_spending"`
	AchievedSuccessRate decimal.Decimal `json:"achieved_success_rate"`
	Probes              int             `json:"probes"`
}

const (
	spendingProbeLimit = 16
	spendingUpperBound = 2.0
)

// SustainableSpending bisects an expense multiplier until it finds the
// largest spending level whose Monte Carlo success rate stays at or above
// the target. All probes reuse one seed so they differ only in spending.
func (e *Engine) SustainableSpending(ctx context.Context, s *domain.Scenario, target decimal.Decimal) (*SpendingAnalysis, error) {
	if target.LessThanOrEqual(decimal.Zero) || target.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("target success rate %s must be within (0, 1]", target)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if len(s.ExpenseStreams) == 0 {
		return nil, fmt.Errorf("scenario has no expense streams to solve over")
	}

	seed := s.MonteCarlo.Seed
	if seed == 0 {
		seed = seedFunc()
	}

	probes := 0
	rateAt := func(multiplier decimal.Decimal) (decimal.Decimal, error) {
		probes++
		scaled := scaleExpenses(s, multiplier, seed)
		result, err := e.RunMonteCarlo(ctx, scaled)
		if err != nil {
			return decimal.Zero, err
		}
		e.Logger.Debugf("spending probe %d: multiplier %s -> success %s", probes, multiplier.StringFixed(4), result.SuccessRate.StringFixed(4))
		return result.SuccessRate, nil
	}

	lo := decimal.Zero
	hi := decimal.NewFromFloat(spendingUpperBound)

	rate, err := rateAt(hi)
	if err != nil {
		return nil, err
	}
	best := lo
	achieved := decimal.Zero
	if !rate.LessThan(target) {
		// Even the upper bound sustains the target.
		best, achieved = hi, rate
	} else {
		for i := 0; i < spendingProbeLimit; i++ {
			mid := lo.Add(hi).Div(decimal.NewFromInt(2))
			rate, err := rateAt(mid)
			if err != nil {
				return nil, err
			}
			if rate.LessThan(target) {
				hi = mid
			} else {
				lo, best, achieved = mid, mid, rate
			}
		}
	}

	firstYear := decimal.Zero
	scaled := scaleExpenses(s, best, seed)
	_, expenses := streamTotals(scaled, scaled.Assumptions.StartYear)
	firstYear = expenses

	return &SpendingAnalysis{
		TargetSuccessRate:   target,
		Multiplier:          best,
		FirstYearSpending:   firstYear,
		AchievedSuccessRate: achieved,
		Probes:              probes,
	}, nil
}

// scaleExpenses returns a scenario copy whose expense stream amounts are
// scaled by the multiplier and whose simulation seed is pinned. The copy
// shares everything else with the original, which stays read-only.
func scaleExpenses(s *domain.Scenario, multiplier decimal.Decimal, seed int64) *domain.Scenario {
	scaled := *s
	scaled.ExpenseStreams = make([]domain.CashStream, len(s.ExpenseStreams))
	for i, stream := range s.ExpenseStreams {
		stream.AnnualAmount = stream.AnnualAmount.Mul(multiplier)
		scaled.ExpenseStreams[i] = stream
	}
	scaled.MonteCarlo.Seed = seed
	return &scaled
}
