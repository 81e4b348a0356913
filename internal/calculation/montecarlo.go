package calculation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/pkg/dateutil"
)

const (
	defaultIterations    = 1000
	defaultMaxConcurrent = 10

	// iterationSeedStride spaces per-iteration seeds so trajectories stay
	// statistically independent while the whole run remains reproducible
	// from one scenario seed.
	iterationSeedStride = 1000
)

// iterationOutcome is one trajectory's contribution to the aggregate.
type iterationOutcome struct {
	completed     bool
	failed        bool
	success       bool
	netWorth      []decimal.Decimal
	portfolio     []decimal.Decimal
	depletionYear *int
	finalNetWorth decimal.Decimal
}

// RunMonteCarlo repeats the deterministic projection under sampled
// correlated returns and reduces the trajectories into per-year percentile
// bands, a success rate, and depletion statistics. Iterations share the
// read-only scenario but own their working state, so they run on a
// bounded worker pool without locks. Cancelling the context discards
// not-yet-started iterations; completed ones still aggregate, and the
// result reports how many actually ran.
func (e *Engine) RunMonteCarlo(ctx context.Context, s *domain.Scenario) (*domain.MonteCarloResult, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	settings := s.MonteCarlo
	iterations := settings.Iterations
	if iterations == 0 {
		iterations = defaultIterations
	}
	criterion, err := NewSuccessCriterion(settings.SuccessCriterion)
	if err != nil {
		return nil, err
	}

	model := s.Assumptions.AssetModel
	if model == nil {
		model = domain.DefaultAssetModel()
	}
	sampler, samplingMode, err := newShockSampler(settings, model)
	if err != nil {
		return nil, fmt.Errorf("monte carlo setup: %w", err)
	}

	seed := settings.Seed
	if seed == 0 {
		seed = seedFunc()
	}
	maxConcurrent := settings.MaxConcurrent
	if maxConcurrent == 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	e.Logger.Infof("simulating scenario %q: %d iterations, seed %d, %s sampling", s.Name, iterations, seed, samplingMode)

	outcomes := make([]iterationOutcome, iterations)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)

	for i := 0; i < iterations; i++ {
		wg.Add(1)
		go func(iteration int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}
			defer func() {
				if r := recover(); r != nil {
					e.Logger.Errorf("iteration %d failed: %v", iteration, r)
					outcomes[iteration] = iterationOutcome{failed: true}
				}
			}()

			rng := rand.New(rand.NewSource(seed + int64(iteration)*iterationSeedStride))
			outcomes[iteration] = e.runIteration(s, model, sampler, rng, criterion)
		}(i)
	}
	wg.Wait()

	result := aggregateOutcomes(s, outcomes)
	result.RunID = uuid.New()
	result.RequestedIterations = iterations
	result.Seed = seed
	result.SamplingMode = samplingMode
	result.SuccessCriterion = criterion.Name()

	if result.CompletedIterations == 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled before any iteration completed: %w", err)
		}
		return nil, fmt.Errorf("simulation completed no iterations")
	}
	return result, nil
}

// newShockSampler builds the per-year return sampler for the configured
// sampling mode and reports the mode actually in effect.
func newShockSampler(settings domain.MonteCarloSettings, model *domain.AssetModel) (shockSampler, string, error) {
	switch settings.SamplingMode {
	case "", domain.SamplingParametric:
		sampler, err := newCholeskySampler(model)
		return sampler, domain.SamplingParametric, err
	case domain.SamplingBootstrap:
		history, err := LoadHistoricalReturns(settings.HistoricalDataFile)
		if err != nil {
			return nil, "", err
		}
		sampler, err := newBootstrapSampler(model, history)
		return sampler, domain.SamplingBootstrap, err
	default:
		return nil, "", fmt.Errorf("unknown sampling mode %q", settings.SamplingMode)
	}
}

// runIteration runs one stochastic trajectory on a private copy of the
// starting state and reduces it to the aggregate's inputs.
func (e *Engine) runIteration(s *domain.Scenario, model *domain.AssetModel, sampler shockSampler, rng *rand.Rand, criterion SuccessCriterion) iterationOutcome {
	sampled := func(year int, states []accountState) []*decimal.Decimal {
		return sampledAccountReturns(s, model, states, year, sampler.shocks(rng))
	}
	snapshots := trajectory(s, sampled)

	outcome := iterationOutcome{
		completed: true,
		success:   criterion.Satisfied(snapshots),
		netWorth:  make([]decimal.Decimal, len(snapshots)),
		portfolio: make([]decimal.Decimal, len(snapshots)),
	}

	var startingPortfolio decimal.Decimal
	for i := range s.Accounts {
		startingPortfolio = startingPortfolio.Add(s.Accounts[i].StartingBalance)
	}
	for i := range snapshots {
		outcome.netWorth[i] = snapshots[i].NetWorth
		outcome.portfolio[i] = snapshots[i].PortfolioBalance
		if outcome.depletionYear == nil && startingPortfolio.IsPositive() && !snapshots[i].PortfolioBalance.IsPositive() {
			year := snapshots[i].Year
			outcome.depletionYear = &year
		}
	}
	if n := len(snapshots); n > 0 {
		outcome.finalNetWorth = snapshots[n-1].NetWorth
	}
	return outcome
}

// aggregateOutcomes reduces completed iterations into the result. The
// reduction is order-independent: it only ever sorts value sets, never
// relies on iteration completion order.
func aggregateOutcomes(s *domain.Scenario, outcomes []iterationOutcome) *domain.MonteCarloResult {
	result := &domain.MonteCarloResult{ScenarioName: s.Name}

	var completed []*iterationOutcome
	for i := range outcomes {
		switch {
		case outcomes[i].failed:
			result.FailedIterations++
		case outcomes[i].completed:
			completed = append(completed, &outcomes[i])
		}
	}
	result.CompletedIterations = len(completed)
	if len(completed) == 0 {
		return result
	}

	years := dateutil.Years(s.Assumptions.StartYear, s.Assumptions.EndYear)
	result.Years = make([]domain.YearDistribution, len(years))
	for yi, year := range years {
		netWorths := make([]decimal.Decimal, len(completed))
		portfolios := make([]decimal.Decimal, len(completed))
		for ci, outcome := range completed {
			netWorths[ci] = outcome.netWorth[yi]
			portfolios[ci] = outcome.portfolio[yi]
		}
		result.Years[yi] = domain.YearDistribution{
			Year:      year,
			NetWorth:  percentileRanges(netWorths),
			Portfolio: percentileRanges(portfolios),
		}
	}

	successes := 0
	depleted := 0
	var depletionYears []int
	finals := make([]decimal.Decimal, len(completed))
	for i, outcome := range completed {
		if outcome.success {
			successes++
		}
		if outcome.depletionYear != nil {
			depleted++
			depletionYears = append(depletionYears, *outcome.depletionYear)
		}
		finals[i] = outcome.finalNetWorth
	}
	total := decimal.NewFromInt(int64(len(completed)))
	result.SuccessRate = decimal.NewFromInt(int64(successes)).Div(total)
	result.FinalNetWorth = distributionStats(finals)

	result.Depletion.Rate = decimal.NewFromInt(int64(depleted)).Div(total)
	if len(depletionYears) > 0 {
		sort.Ints(depletionYears)
		median := depletionYears[(len(depletionYears)-1)/2]
		result.Depletion.MedianYear = &median
	}

	return result
}

// percentileRanges computes the standard band set over one year's values.
func percentileRanges(values []decimal.Decimal) domain.PercentileRanges {
	sortDecimals(values)
	return domain.PercentileRanges{
		P10: percentile(values, 0.10),
		P25: percentile(values, 0.25),
		P50: percentile(values, 0.50),
		P75: percentile(values, 0.75),
		P90: percentile(values, 0.90),
	}
}

// percentile interpolates linearly between order statistics of an already
// sorted slice. The method is fixed so a fixed seed reproduces results
// bit-for-bit.
func percentile(sorted []decimal.Decimal, p float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	fraction := decimal.NewFromFloat(rank - float64(lo))
	return sorted[lo].Add(sorted[hi].Sub(sorted[lo]).Mul(fraction))
}

func distributionStats(values []decimal.Decimal) domain.DistributionStats {
	if len(values) == 0 {
		return domain.DistributionStats{}
	}
	sortDecimals(values)

	var sum decimal.Decimal
	for _, v := range values {
		sum = sum.Add(v)
	}
	count := decimal.NewFromInt(int64(len(values)))
	mean := sum.Div(count)

	var varianceSum decimal.Decimal
	for _, v := range values {
		d := v.Sub(mean)
		varianceSum = varianceSum.Add(d.Mul(d))
	}
	variance, _ := varianceSum.Div(count).Float64()

	return domain.DistributionStats{
		Min:    values[0],
		Max:    values[len(values)-1],
		Mean:   mean,
		Median: percentile(values, 0.50),
		StdDev: decimal.NewFromFloat(math.Sqrt(variance)),
	}
}

func sortDecimals(values []decimal.Decimal) {
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
}
