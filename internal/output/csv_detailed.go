package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVDetailedExporter emits one row per year per account and per property,
// for spreadsheet drill-down into a single trajectory.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string      { return "detailed-csv" }
func (c CSVDetailedExporter) Extension() string { return "csv" }

func (c CSVDetailedExporter) Format(data *ReportData) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Holding", "Type", "Balance", "MortgageBalance", "Equity"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if data.Projection != nil {
		for _, snap := range data.Projection.Snapshots {
			year := strconv.Itoa(snap.Year)
			for _, account := range snap.Accounts {
				row := []string{year, account.Name, string(account.Kind), account.Balance.StringFixed(2), "", ""}
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
			for _, property := range snap.Properties {
				row := []string{year, property.Name, "property", property.Value.StringFixed(2),
					property.MortgageBalance.StringFixed(2), property.Equity.StringFixed(2)}
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
