package calculation

import (
	"fmt"

	"github.com/fincast/fincast/internal/domain"
)

// Success criterion names accepted in scenario configuration.
const (
	CriterionNetWorthNonNegative   = "net_worth_non_negative"
	CriterionPortfolioNotExhausted = "portfolio_not_exhausted"
	CriterionNoShortfallYears      = "no_shortfall_years"
)

// SuccessCriterion is the named, swappable solvency test a Monte Carlo
// iteration must satisfy over its full trajectory to count as a success.
type SuccessCriterion interface {
	Name() string
	Satisfied(snapshots []domain.YearSnapshot) bool
}

// NewSuccessCriterion resolves a criterion by name. The empty name selects
// the default: net worth never negative through the full horizon.
func NewSuccessCriterion(name string) (SuccessCriterion, error) {
	switch name {
	case "", CriterionNetWorthNonNegative:
		return netWorthNonNegative{}, nil
	case CriterionPortfolioNotExhausted:
		return portfolioNotExhausted{}, nil
	case CriterionNoShortfallYears:
		return noShortfallYears{}, nil
	default:
		return nil, fmt.Errorf("unknown success criterion %q", name)
	}
}

// netWorthNonNegative passes while total net worth (portfolio plus real
// estate equity) stays at or above zero every year.
type netWorthNonNegative struct{}

func (netWorthNonNegative) Name() string { return CriterionNetWorthNonNegative }

func (netWorthNonNegative) Satisfied(snapshots []domain.YearSnapshot) bool {
	for i := range snapshots {
		if snapshots[i].NetWorth.IsNegative() {
			return false
		}
	}
	return true
}

// portfolioNotExhausted fails the first year the investable portfolio hits
// zero after having started positive.
type portfolioNotExhausted struct{}

func (portfolioNotExhausted) Name() string { return CriterionPortfolioNotExhausted }

func (portfolioNotExhausted) Satisfied(snapshots []domain.YearSnapshot) bool {
	if len(snapshots) == 0 {
		return true
	}
	started := snapshots[0].PortfolioBalance.Add(snapshots[0].TotalWithdrawals).IsPositive()
	if !started {
		return true
	}
	for i := range snapshots {
		if !snapshots[i].PortfolioBalance.IsPositive() {
			return false
		}
	}
	return true
}

// noShortfallYears passes only when no year was flagged as a funding
// shortfall.
type noShortfallYears struct{}

func (noShortfallYears) Name() string { return CriterionNoShortfallYears }

func (noShortfallYears) Satisfied(snapshots []domain.YearSnapshot) bool {
	for i := range snapshots {
		if snapshots[i].Shortfall {
			return false
		}
	}
	return true
}
