package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// MonteCarloCSVExporter emits the per-year percentile bands of a simulation
// run, one row per year, for external charting.
type MonteCarloCSVExporter struct{}

func (m MonteCarloCSVExporter) Name() string      { return "montecarlo-csv" }
func (m MonteCarloCSVExporter) Extension() string { return "csv" }

func (m MonteCarloCSVExporter) Format(data *ReportData) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Year",
		"NetWorthP10", "NetWorthP25", "NetWorthP50", "NetWorthP75", "NetWorthP90",
		"PortfolioP10", "PortfolioP25", "PortfolioP50", "PortfolioP75", "PortfolioP90",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if data.MonteCarlo != nil {
		for _, yd := range data.MonteCarlo.Years {
			row := []string{
				strconv.Itoa(yd.Year),
				yd.NetWorth.P10.StringFixed(2),
				yd.NetWorth.P25.StringFixed(2),
				yd.NetWorth.P50.StringFixed(2),
				yd.NetWorth.P75.StringFixed(2),
				yd.NetWorth.P90.StringFixed(2),
				yd.Portfolio.P10.StringFixed(2),
				yd.Portfolio.P25.StringFixed(2),
				yd.Portfolio.P50.StringFixed(2),
				yd.Portfolio.P75.StringFixed(2),
				yd.Portfolio.P90.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
