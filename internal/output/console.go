package output

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/pkg/money"
)

// ConsoleFormatter provides a concise console summary via the formatter
// interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	if data.Projection != nil {
		writeProjectionSummary(&buf, data.Projection)
	}
	if data.MonteCarlo != nil {
		writeSimulationSummary(&buf, data.MonteCarlo)
	}
	if data.Comparison != nil {
		writeComparisonSummary(&buf, data)
	}
	if data.Spending != nil {
		writeSpendingSummary(&buf, data)
	}
	if buf.Len() == 0 {
		fmt.Fprintln(&buf, "Nothing to report.")
	}
	return buf.Bytes(), nil
}

func writeProjectionSummary(buf *bytes.Buffer, p *domain.Projection) {
	fmt.Fprintln(buf, "HOUSEHOLD PROJECTION")
	fmt.Fprintln(buf, "====================")
	fmt.Fprintf(buf, "Scenario: %s\n", p.ScenarioName)
	if n := len(p.Snapshots); n > 0 {
		fmt.Fprintf(buf, "Window: %d-%d (%d years)\n", p.Snapshots[0].Year, p.Snapshots[n-1].Year, n)
	}
	m := p.Metrics
	fmt.Fprintf(buf, "Final net worth: %s\n", money.FromDecimal(m.FinalNetWorth).Format())
	fmt.Fprintf(buf, "Final portfolio: %s\n", money.FromDecimal(m.FinalPortfolioBalance).Format())
	fmt.Fprintf(buf, "Years solvent: %d of %d\n", m.YearsSolvent, len(p.Snapshots))
	if m.FirstShortfallYear != nil {
		fmt.Fprintf(buf, "First shortfall: %d", *m.FirstShortfallYear)
		if m.FirstShortfallAge != nil {
			fmt.Fprintf(buf, " (age %d)", *m.FirstShortfallAge)
		}
		fmt.Fprintln(buf)
	}
	fmt.Fprintf(buf, "Lifetime: contributions %s, withdrawals %s, growth %s\n",
		money.FromDecimal(m.TotalContributions).Format(),
		money.FromDecimal(m.TotalWithdrawals).Format(),
		money.FromDecimal(m.TotalGrowth).Format())
	fmt.Fprintln(buf)
}

func writeSimulationSummary(buf *bytes.Buffer, mc *domain.MonteCarloResult) {
	fmt.Fprintln(buf, "MONTE CARLO SIMULATION")
	fmt.Fprintln(buf, "======================")
	fmt.Fprintf(buf, "Run: %s\n", mc.RunID)
	fmt.Fprintf(buf, "Iterations: %d completed of %d requested (%d failed)\n",
		mc.CompletedIterations, mc.RequestedIterations, mc.FailedIterations)
	fmt.Fprintf(buf, "Sampling: %s, seed %d\n", mc.SamplingMode, mc.Seed)
	fmt.Fprintf(buf, "Success rate: %s (%s)\n", FormatPercentage(mc.SuccessRate), mc.SuccessCriterion)

	fnw := mc.FinalNetWorth
	fmt.Fprintf(buf, "Final net worth: median %s, mean %s, range %s to %s\n",
		money.FromDecimal(fnw.Median).Format(),
		money.FromDecimal(fnw.Mean).Format(),
		money.FromDecimal(fnw.Min).Format(),
		money.FromDecimal(fnw.Max).Format())

	if mc.Depletion.Rate.IsPositive() {
		fmt.Fprintf(buf, "Portfolio depletion: %s of runs", FormatPercentage(mc.Depletion.Rate))
		if mc.Depletion.MedianYear != nil {
			fmt.Fprintf(buf, ", median year %d", *mc.Depletion.MedianYear)
		}
		fmt.Fprintln(buf)
	}
	fmt.Fprintln(buf)
}

func writeComparisonSummary(buf *bytes.Buffer, data *ReportData) {
	fmt.Fprintln(buf, "SCENARIO COMPARISON")
	fmt.Fprintln(buf, "===================")
	for rank, outcome := range data.Comparison.Outcomes {
		fmt.Fprintf(buf, "%d. %s: success %s, final net worth %s\n",
			rank+1, outcome.Name,
			FormatPercentage(outcome.MonteCarlo.SuccessRate),
			money.FromDecimal(outcome.Projection.Metrics.FinalNetWorth).Format())
	}
	if best := data.Comparison.Best(); best != nil {
		fmt.Fprintf(buf, "Recommended: %s\n", best.Name)
	}
	fmt.Fprintln(buf)
}

func writeSpendingSummary(buf *bytes.Buffer, data *ReportData) {
	sp := data.Spending
	fmt.Fprintln(buf, "SUSTAINABLE SPENDING")
	fmt.Fprintln(buf, "====================")
	fmt.Fprintf(buf, "Target success rate: %s\n", FormatPercentage(sp.TargetSuccessRate))
	fmt.Fprintf(buf, "Spending multiplier: %s\n", sp.Multiplier.StringFixed(4))
	fmt.Fprintf(buf, "First-year spending: %s\n", money.FromDecimal(sp.FirstYearSpending).Format())
	fmt.Fprintf(buf, "Achieved success rate: %s (%d probes)\n", FormatPercentage(sp.AchievedSuccessRate), sp.Probes)
	fmt.Fprintln(buf)
}

// FormatPercentage renders a fractional rate as a percentage with two
// decimals. Kept here so it can be reused by multiple formatters and unit
// tested in isolation.
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
