package calculation

import (
	"context"
	"fmt"
	"sort"

	"github.com/fincast/fincast/internal/domain"
)

// ScenarioOutcome pairs one scenario's deterministic projection with its
// simulation summary for side-by-side comparison.
type ScenarioOutcome struct {
	Name       string                   `json:"name"`
	Projection *domain.Projection       `json:"projection"`
	MonteCarlo *domain.MonteCarloResult `json:"monte_carlo"`
}

// ScenarioComparison ranks several scenarios: highest success rate first,
// final net worth breaking ties.
type ScenarioComparison struct {
	Outcomes []ScenarioOutcome `json:"outcomes"`
}

// Best returns the top-ranked outcome, or nil for an empty comparison.
func (sc *ScenarioComparison) Best() *ScenarioOutcome {
	if len(sc.Outcomes) == 0 {
		return nil
	}
	return &sc.Outcomes[0]
}

// CompareScenarios runs the deterministic projector and the Monte Carlo
// engine over each scenario and ranks the results. Scenarios are
// independent; a failure in any one aborts the comparison since a partial
// ranking would be misleading.
func (e *Engine) CompareScenarios(ctx context.Context, scenarios []*domain.Scenario) (*ScenarioComparison, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to compare")
	}

	outcomes := make([]ScenarioOutcome, len(scenarios))
	for i, s := range scenarios {
		projection, err := e.RunScenario(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		simulation, err := e.RunMonteCarlo(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		outcomes[i] = ScenarioOutcome{
			Name:       s.Name,
			Projection: projection,
			MonteCarlo: simulation,
		}
	}

	sort.SliceStable(outcomes, func(a, b int) bool {
		ra, rb := outcomes[a].MonteCarlo.SuccessRate, outcomes[b].MonteCarlo.SuccessRate
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return outcomes[a].Projection.Metrics.FinalNetWorth.GreaterThan(outcomes[b].Projection.Metrics.FinalNetWorth)
	})

	return &ScenarioComparison{Outcomes: outcomes}, nil
}
