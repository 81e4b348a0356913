package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/calculation"
	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/output"
)

const householdFile = "testdata/household.yaml"

func TestEndToEndProjection(t *testing.T) {
	scenario, err := config.NewParser().LoadScenario(householdFile)
	require.NoError(t, err)
	require.Equal(t, "integration-household", scenario.Name)

	// Defaults filled by the parser: end year covers the longest-lived
	// person (riley, 1971 + 90).
	assert.Equal(t, 2061, scenario.Assumptions.EndYear)
	assert.True(t, scenario.Assumptions.ClosingCostRate.Equal(decimal.NewFromFloat(0.06)))

	// The 401k strategy expands into an explicit glide path.
	require.NotEmpty(t, scenario.Accounts[0].GlidePath)
	assert.Nil(t, scenario.Accounts[0].Strategy)

	engine := calculation.NewEngine()
	projection, err := engine.RunScenario(context.Background(), scenario)
	require.NoError(t, err)

	require.Len(t, projection.Snapshots, 2061-2025+1)

	first := projection.Snapshots[0]
	assert.Equal(t, 2025, first.Year)
	// Both salaries are in their first window year, so neither escalates.
	assert.True(t, first.TotalIncome.Equal(decimal.NewFromInt(225000)),
		"first-year income %s", first.TotalIncome)
	assert.True(t, first.DebtService.IsPositive())

	for _, snap := range projection.Snapshots {
		for _, prop := range snap.Properties {
			assert.True(t, prop.Equity.Equal(prop.Value.Sub(prop.MortgageBalance)),
				"year %d property %s equity mismatch", snap.Year, prop.Name)
		}
		assert.True(t, snap.NetWorth.Equal(snap.PortfolioBalance.Add(snap.RealEstateEquity)),
			"year %d net worth mismatch", snap.Year)
	}

	// The home sells in 2040; it is inactive afterwards and the proceeds
	// land in that year's cash flow.
	saleYear, afterSale := -1, -1
	for i := range projection.Snapshots {
		switch projection.Snapshots[i].Year {
		case 2040:
			saleYear = i
		case 2041:
			afterSale = i
		}
	}
	require.NotEqual(t, -1, saleYear)
	require.NotEqual(t, -1, afterSale)
	assert.True(t, projection.Snapshots[saleYear].SaleProceeds.IsPositive())
	assert.False(t, projection.Snapshots[afterSale].Properties[0].Active)
	assert.True(t, projection.Snapshots[afterSale].RealEstateEquity.IsZero())
}

func TestEndToEndSimulation(t *testing.T) {
	scenario, err := config.NewParser().LoadScenario(householdFile)
	require.NoError(t, err)

	engine := calculation.NewEngine()
	result, err := engine.RunMonteCarlo(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, 150, result.RequestedIterations)
	assert.Equal(t, 150, result.CompletedIterations)
	assert.Equal(t, int64(31), result.Seed)
	assert.True(t, result.SuccessRate.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, result.SuccessRate.LessThanOrEqual(decimal.NewFromInt(1)))
	require.Len(t, result.Years, 2061-2025+1)

	// Same file, same seed: the distribution is identical run to run.
	again, err := engine.RunMonteCarlo(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.SuccessRate.Equal(again.SuccessRate))
	assert.True(t, result.FinalNetWorth.Median.Equal(again.FinalNetWorth.Median))
	assert.NotEqual(t, result.RunID, again.RunID)
}

func TestEndToEndReportFormats(t *testing.T) {
	scenario, err := config.NewParser().LoadScenario(householdFile)
	require.NoError(t, err)

	engine := calculation.NewEngine()
	ctx := context.Background()

	data := output.NewReportData()
	data.Scenario = scenario
	data.Projection, err = engine.RunScenario(ctx, scenario)
	require.NoError(t, err)
	data.MonteCarlo, err = engine.RunMonteCarlo(ctx, scenario)
	require.NoError(t, err)

	for _, name := range output.AvailableFormatterNames() {
		f := output.GetFormatterByName(name)
		require.NotNil(t, f, name)
		rendered, err := f.Format(data)
		require.NoError(t, err, name)
		assert.NotEmpty(t, rendered, name)
	}
}

func TestEndToEndSustainableSpending(t *testing.T) {
	scenario, err := config.NewParser().LoadScenario(householdFile)
	require.NoError(t, err)
	scenario.MonteCarlo.Iterations = 60

	engine := calculation.NewEngine()
	analysis, err := engine.SustainableSpending(context.Background(), scenario, decimal.NewFromFloat(0.5))
	require.NoError(t, err)

	assert.True(t, analysis.Multiplier.IsPositive())
	assert.True(t, analysis.FirstYearSpending.IsPositive())
	assert.GreaterOrEqual(t, analysis.Probes, 1)
}
