package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/calculation"
	"github.com/fincast/fincast/internal/domain"
)

// sampleReport builds report data from a real projection and simulation so
// every formatter sees realistic shapes.
func sampleReport(t *testing.T) *ReportData {
	t.Helper()
	homeValue := decimal.NewFromInt(400000)
	homeMortgage := decimal.NewFromInt(150000)
	scenario := &domain.Scenario{
		Name: "sample",
		People: []domain.Person{
			{Name: "alex", BirthYear: 1965, RetirementAge: 65, FinalAge: 90},
		},
		Accounts: []domain.Account{
			{
				Name:            "brokerage",
				Owner:           "alex",
				Kind:            domain.AccountTaxable,
				StartingBalance: decimal.NewFromInt(500000),
				GlidePath: domain.GlidePath{
					{AnnualReturn: decimal.NewFromFloat(0.05), Volatility: decimal.NewFromFloat(0.12)},
				},
			},
		},
		Properties: []domain.RealEstateProperty{
			{
				Name:                   "home",
				CurrentValue:           &homeValue,
				CurrentMortgageBalance: &homeMortgage,
				RemainingTermYears:     15,
				MortgageRate:           decimal.NewFromFloat(0.04),
				AppreciationRate:       decimal.NewFromFloat(0.03),
			},
		},
		ExpenseStreams: []domain.CashStream{
			{Name: "living", Owner: "alex", AnnualAmount: decimal.NewFromInt(45000), StartAge: 60, EndAge: 90},
		},
		Assumptions: domain.Assumptions{
			StartYear:       2025,
			EndYear:         2035,
			InflationRate:   decimal.NewFromFloat(0.02),
			ClosingCostRate: decimal.NewFromFloat(0.06),
		},
		MonteCarlo: domain.MonteCarloSettings{Iterations: 40, Seed: 11},
	}

	engine := calculation.NewEngine()
	projection, err := engine.RunScenario(context.Background(), scenario)
	require.NoError(t, err)
	simulation, err := engine.RunMonteCarlo(context.Background(), scenario)
	require.NoError(t, err)

	return &ReportData{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Scenario:    scenario,
		Projection:  projection,
		MonteCarlo:  simulation,
	}
}

func TestAllFormattersRenderSampleReport(t *testing.T) {
	data := sampleReport(t)
	for _, name := range AvailableFormatterNames() {
		t.Run(name, func(t *testing.T) {
			rendered, err := GetFormatterByName(name).Format(data)
			require.NoError(t, err)
			assert.NotEmpty(t, rendered)
		})
	}
}

func TestConsoleFormatter_Summary(t *testing.T) {
	data := sampleReport(t)

	rendered, err := ConsoleFormatter{}.Format(data)
	require.NoError(t, err)

	text := string(rendered)
	assert.Contains(t, text, "HOUSEHOLD PROJECTION")
	assert.Contains(t, text, "Scenario: sample")
	assert.Contains(t, text, "MONTE CARLO SIMULATION")
	assert.Contains(t, text, "Success rate:")
}

func TestConsoleFormatter_EmptyReport(t *testing.T) {
	rendered, err := ConsoleFormatter{}.Format(NewReportData())
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "Nothing to report")
}

func TestConsoleVerboseFormatter_YearRows(t *testing.T) {
	data := sampleReport(t)

	rendered, err := ConsoleVerboseFormatter{}.Format(data)
	require.NoError(t, err)

	text := string(rendered)
	assert.Contains(t, text, "YEAR BY YEAR")
	assert.Contains(t, text, "2025")
	assert.Contains(t, text, "2035")
	assert.Contains(t, text, "NET WORTH PERCENTILE BANDS")
}

func TestJSONFormatter_RoundTrips(t *testing.T) {
	data := sampleReport(t)

	rendered, err := JSONFormatter{}.Format(data)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rendered, &decoded))
	assert.Contains(t, decoded, "projection")
	assert.Contains(t, decoded, "monte_carlo")
}

func TestCSVSummarizer_OneRowPerYear(t *testing.T) {
	data := sampleReport(t)

	rendered, err := CSVSummarizer{}.Format(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(rendered)), "\n")
	assert.Len(t, lines, 12, "header plus one row per projection year")
	assert.True(t, strings.HasPrefix(lines[0], "Year,Income,"))
	assert.True(t, strings.HasPrefix(lines[1], "2025,"))
}

func TestCSVDetailedExporter_RowsPerHolding(t *testing.T) {
	data := sampleReport(t)

	rendered, err := CSVDetailedExporter{}.Format(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(rendered)), "\n")
	// One account row and one property row per year, plus the header.
	assert.Len(t, lines, 1+2*11)
	assert.Contains(t, lines[1], "brokerage")
	assert.Contains(t, lines[2], "home")
}

func TestMonteCarloCSVExporter_BandsPerYear(t *testing.T) {
	data := sampleReport(t)

	rendered, err := MonteCarloCSVExporter{}.Format(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(rendered)), "\n")
	assert.Len(t, lines, 12)
	assert.True(t, strings.HasPrefix(lines[0], "Year,NetWorthP10,"))
}

func TestHTMLFormatter_WellFormedSections(t *testing.T) {
	data := sampleReport(t)

	rendered, err := HTMLFormatter{}.Format(data)
	require.NoError(t, err)

	html := string(rendered)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Deterministic Projection: sample")
	assert.Contains(t, html, "Monte Carlo Simulation")
	assert.Contains(t, html, "Net Worth Percentile Bands")
}

func TestWriteFormatted_ExplicitPath(t *testing.T) {
	data := sampleReport(t)
	path := filepath.Join(t.TempDir(), "report.csv")

	written, err := WriteFormatted(CSVSummarizer{}, data, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func TestGenerateReport_UnknownFormat(t *testing.T) {
	err := GenerateReport(NewReportData(), "pdf", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "console", "the error lists the supported formats")
}
