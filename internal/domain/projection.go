package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PersonAge records one person's age and liveness for a snapshot year.
type PersonAge struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Alive bool   `json:"alive"`
}

// AccountBalance is one account's ending balance for a snapshot year.
type AccountBalance struct {
	Name    string          `json:"name"`
	Kind    AccountKind     `json:"kind"`
	Balance decimal.Decimal `json:"balance"`
}

// PropertyPosition is one property's ending state for a snapshot year.
// Equity always equals Value minus MortgageBalance. Active is false before
// a planned purchase activates and after a sale.
type PropertyPosition struct {
	Name            string          `json:"name"`
	Value           decimal.Decimal `json:"value"`
	MortgageBalance decimal.Decimal `json:"mortgage_balance"`
	Equity          decimal.Decimal `json:"equity"`
	Active          bool            `json:"active"`
}

// YearSnapshot is the complete household state at the end of one
// projection year. Snapshots are produced once by the projector and never
// mutated.
type YearSnapshot struct {
	Year       int                `json:"year"`
	Ages       []PersonAge        `json:"ages"`
	Accounts   []AccountBalance   `json:"accounts"`
	Properties []PropertyPosition `json:"properties,omitempty"`

	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	DebtService   decimal.Decimal `json:"debt_service"`
	SaleProceeds  decimal.Decimal `json:"sale_proceeds"`
	NetCashFlow   decimal.Decimal `json:"net_cash_flow"`

	TotalGrowth        decimal.Decimal `json:"total_growth"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`

	PortfolioBalance decimal.Decimal `json:"portfolio_balance"`
	RealEstateEquity decimal.Decimal `json:"real_estate_equity"`
	NetWorth         decimal.Decimal `json:"net_worth"`

	// Shortfall marks a year whose funding gap exceeded every drawable
	// account balance; ShortfallAmount is the uncovered remainder.
	Shortfall       bool            `json:"shortfall"`
	ShortfallAmount decimal.Decimal `json:"shortfall_amount"`
}

// AgeOf returns the recorded age for a person in this snapshot.
func (ys *YearSnapshot) AgeOf(name string) (int, bool) {
	for _, pa := range ys.Ages {
		if pa.Name == name {
			return pa.Age, true
		}
	}
	return 0, false
}

// SuccessMetrics condenses one deterministic trajectory into headline
// figures. FirstShortfallAge is the primary (first listed) person's age in
// the first shortfall year.
type SuccessMetrics struct {
	FinalNetWorth         decimal.Decimal `json:"final_net_worth"`
	FinalPortfolioBalance decimal.Decimal `json:"final_portfolio_balance"`
	YearsSolvent          int             `json:"years_solvent"`
	FirstShortfallYear    *int            `json:"first_shortfall_year,omitempty"`
	FirstShortfallAge     *int            `json:"first_shortfall_age,omitempty"`
	TotalContributions    decimal.Decimal `json:"total_contributions"`
	TotalWithdrawals      decimal.Decimal `json:"total_withdrawals"`
	TotalGrowth           decimal.Decimal `json:"total_growth"`
}

// Projection is one deterministic trajectory: exactly one snapshot per
// calendar year of the projection window, in year order.
type Projection struct {
	ScenarioName string         `json:"scenario_name"`
	Snapshots    []YearSnapshot `json:"snapshots"`
	Metrics      SuccessMetrics `json:"metrics"`
}

// FinalSnapshot returns the last snapshot, or nil for an empty projection.
func (p *Projection) FinalSnapshot() *YearSnapshot {
	if len(p.Snapshots) == 0 {
		return nil
	}
	return &p.Snapshots[len(p.Snapshots)-1]
}

// PercentileRanges represents percentile ranges across simulation outcomes
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// YearDistribution holds the cross-iteration distribution of one
// projection year.
type YearDistribution struct {
	Year      int              `json:"year"`
	NetWorth  PercentileRanges `json:"net_worth"`
	Portfolio PercentileRanges `json:"portfolio"`
}

// DistributionStats describes the spread of final net worth across
// completed iterations.
type DistributionStats struct {
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Mean   decimal.Decimal `json:"mean"`
	Median decimal.Decimal `json:"median"`
	StdDev decimal.Decimal `json:"std_dev"`
}

// DepletionStats summarizes portfolio exhaustion across iterations. Rate
// is the fraction of completed iterations whose portfolio hit zero;
// MedianYear is the median year that happened, nil when no iteration
// depleted.
type DepletionStats struct {
	Rate       decimal.Decimal `json:"rate"`
	MedianYear *int            `json:"median_year,omitempty"`
}

// MonteCarloResult aggregates all completed iterations of one simulation
// run. CompletedIterations can be lower than RequestedIterations after a
// cancellation; the percentile bands then describe the completed subset.
type MonteCarloResult struct {
	RunID        uuid.UUID `json:"run_id"`
	ScenarioName string    `json:"scenario_name"`

	RequestedIterations int    `json:"requested_iterations"`
	CompletedIterations int    `json:"completed_iterations"`
	FailedIterations    int    `json:"failed_iterations"`
	Seed                int64  `json:"seed"`
	SamplingMode        string `json:"sampling_mode"`

	SuccessCriterion string          `json:"success_criterion"`
	SuccessRate      decimal.Decimal `json:"success_rate"`

	Years         []YearDistribution `json:"years"`
	FinalNetWorth DistributionStats  `json:"final_net_worth"`
	Depletion     DepletionStats     `json:"depletion"`
}
