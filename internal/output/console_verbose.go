package output

import (
	"bytes"
	"fmt"

	"github.com/fincast/fincast/pkg/money"
)

// ConsoleVerboseFormatter renders the full year-by-year trajectory and, when
// present, the per-year simulation bands.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string      { return "console-verbose" }
func (c ConsoleVerboseFormatter) Extension() string { return "txt" }

func (c ConsoleVerboseFormatter) Format(data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	if data.Projection != nil {
		writeProjectionSummary(&buf, data.Projection)
		writeYearTable(&buf, data)
	}
	if data.MonteCarlo != nil {
		writeSimulationSummary(&buf, data.MonteCarlo)
		writeBandTable(&buf, data)
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

func writeYearTable(buf *bytes.Buffer, data *ReportData) {
	fmt.Fprintln(buf, "YEAR BY YEAR")
	fmt.Fprintf(buf, "%-6s %-14s %-14s %-14s %-14s %-14s %-10s\n",
		"Year", "Income", "Expenses", "Withdrawals", "Portfolio", "Net Worth", "Shortfall")
	for _, snap := range data.Projection.Snapshots {
		shortfall := "-"
		if snap.Shortfall {
			shortfall = money.FromDecimal(snap.ShortfallAmount).Format()
		}
		fmt.Fprintf(buf, "%-6d %-14s %-14s %-14s %-14s %-14s %-10s\n",
			snap.Year,
			money.FromDecimal(snap.TotalIncome).Format(),
			money.FromDecimal(snap.TotalExpenses).Format(),
			money.FromDecimal(snap.TotalWithdrawals).Format(),
			money.FromDecimal(snap.PortfolioBalance).Format(),
			money.FromDecimal(snap.NetWorth).Format(),
			shortfall)
	}
	fmt.Fprintln(buf)
}

func writeBandTable(buf *bytes.Buffer, data *ReportData) {
	fmt.Fprintln(buf, "NET WORTH PERCENTILE BANDS")
	fmt.Fprintf(buf, "%-6s %-14s %-14s %-14s %-14s %-14s\n",
		"Year", "P10", "P25", "P50", "P75", "P90")
	for _, yd := range data.MonteCarlo.Years {
		fmt.Fprintf(buf, "%-6d %-14s %-14s %-14s %-14s %-14s\n",
			yd.Year,
			money.FromDecimal(yd.NetWorth.P10).Format(),
			money.FromDecimal(yd.NetWorth.P25).Format(),
			money.FromDecimal(yd.NetWorth.P50).Format(),
			money.FromDecimal(yd.NetWorth.P75).Format(),
			money.FromDecimal(yd.NetWorth.P90).Format())
	}
	fmt.Fprintln(buf)
}
