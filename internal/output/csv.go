package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVSummarizer implements the simple summary CSV output (one row per
// projection year).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

func (c CSVSummarizer) Format(data *ReportData) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Income", "Expenses", "DebtService", "Growth", "Contributions", "Withdrawals", "Portfolio", "RealEstateEquity", "NetWorth", "Shortfall"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if data.Projection != nil {
		for _, snap := range data.Projection.Snapshots {
			row := []string{
				strconv.Itoa(snap.Year),
				snap.TotalIncome.StringFixed(2),
				snap.TotalExpenses.StringFixed(2),
				snap.DebtService.StringFixed(2),
				snap.TotalGrowth.StringFixed(2),
				snap.TotalContributions.StringFixed(2),
				snap.TotalWithdrawals.StringFixed(2),
				snap.PortfolioBalance.StringFixed(2),
				snap.RealEstateEquity.StringFixed(2),
				snap.NetWorth.StringFixed(2),
				snap.ShortfallAmount.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
