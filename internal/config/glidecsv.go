package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
)

// LoadGlidePathCSV reads an age-band table from a CSV file. Expected
// layout: a "max_age,annual_return" or "max_age,annual_return,volatility"
// header followed by one row per band, in age order. An empty max_age
// marks the open final band.
func LoadGlidePathCSV(path string) (domain.GlidePath, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glide path file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("glide path file %s has no band rows", path)
	}

	header := records[0]
	if len(header) < 2 || len(header) > 3 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "max_age") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "annual_return") {
		return nil, fmt.Errorf("glide path file %s must start with a \"max_age,annual_return[,volatility]\" header", path)
	}
	hasVolatility := len(header) == 3
	if hasVolatility && !strings.EqualFold(strings.TrimSpace(header[2]), "volatility") {
		return nil, fmt.Errorf("glide path file %s: third column must be \"volatility\"", path)
	}

	bands := make(domain.GlidePath, 0, len(records)-1)
	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(header) {
			return nil, fmt.Errorf("glide path row %d has %d fields, expected %d", row, len(record), len(header))
		}

		var band domain.AgeBand
		if raw := strings.TrimSpace(record[0]); raw != "" {
			band.MaxAge, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("glide path row %d: bad max_age %q", row, record[0])
			}
		}
		band.AnnualReturn, err = decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("glide path row %d: bad annual_return %q", row, record[1])
		}
		if hasVolatility {
			if raw := strings.TrimSpace(record[2]); raw != "" {
				band.Volatility, err = decimal.NewFromString(raw)
				if err != nil {
					return nil, fmt.Errorf("glide path row %d: bad volatility %q", row, record[2])
				}
			}
		}
		bands = append(bands, band)
	}

	if err := bands.Validate(); err != nil {
		return nil, fmt.Errorf("glide path file %s: %w", path, err)
	}
	return bands, nil
}
