package calculation

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// HistoricalReturns holds per-asset-class annual return history loaded
// from a local CSV file. The file's first column is the calendar year and
// every further column one asset class; keeping rows intact is what
// preserves the cross-class correlation when bootstrap sampling resamples
// whole years.
type HistoricalReturns struct {
	Classes []string
	Years   []int
	// Returns is keyed by class name, aligned with Years.
	Returns map[string][]float64
}

// LoadHistoricalReturns reads a returns CSV. Expected layout: a header row
// "year,<class>,<class>,..." followed by one row per calendar year with
// fractional returns (0.07 for 7%).
func LoadHistoricalReturns(path string) (*HistoricalReturns, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open historical data file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("historical data file %s has no data rows", path)
	}

	header := records[0]
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "year") {
		return nil, fmt.Errorf("historical data file %s must start with a \"year\" column", path)
	}

	hr := &HistoricalReturns{Returns: make(map[string][]float64)}
	for _, col := range header[1:] {
		name := strings.TrimSpace(col)
		if name == "" {
			return nil, fmt.Errorf("historical data file %s has an unnamed asset class column", path)
		}
		if _, dup := hr.Returns[name]; dup {
			return nil, fmt.Errorf("historical data file %s repeats asset class %q", path, name)
		}
		hr.Classes = append(hr.Classes, name)
		hr.Returns[name] = nil
	}

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("historical data row %d has %d fields, expected %d", i+2, len(record), len(header))
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("historical data row %d: bad year %q", i+2, record[0])
		}
		hr.Years = append(hr.Years, year)
		for j, class := range hr.Classes {
			value, err := strconv.ParseFloat(strings.TrimSpace(record[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("historical data row %d: bad %s return %q", i+2, class, record[j+1])
			}
			hr.Returns[class] = append(hr.Returns[class], value)
		}
	}

	return hr, nil
}

// HasClass reports whether the dataset covers the named asset class.
func (hr *HistoricalReturns) HasClass(name string) bool {
	_, ok := hr.Returns[name]
	return ok
}

// Stats returns the sample mean and population standard deviation of one
// class's return history.
func (hr *HistoricalReturns) Stats(class string) (mean, stdDev float64) {
	values := hr.Returns[class]
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
