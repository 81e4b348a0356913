package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fincast/fincast/internal/calculation"
	"github.com/fincast/fincast/internal/domain"
)

// ReportData is the superset of everything a formatter may render. Each
// command fills the sections it produced; formatters skip nil sections.
type ReportData struct {
	GeneratedAt time.Time                       `json:"generated_at"`
	Scenario    *domain.Scenario                `json:"scenario,omitempty"`
	Projection  *domain.Projection              `json:"projection,omitempty"`
	MonteCarlo  *domain.MonteCarloResult        `json:"monte_carlo,omitempty"`
	Comparison  *calculation.ScenarioComparison `json:"comparison,omitempty"`
	Spending    *calculation.SpendingAnalysis   `json:"spending,omitempty"`
}

// NewReportData stamps a fresh report container.
func NewReportData() *ReportData {
	return &ReportData{GeneratedAt: time.Now()}
}

// WriteFormatted runs a formatter and writes its output. An empty path
// writes a timestamped file in the working directory and returns its name.
func WriteFormatted(f Formatter, data *ReportData, path string) (string, error) {
	rendered, err := f.Format(data)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = fmt.Sprintf("fincast_report_%s.%s", data.GeneratedAt.Format("20060102_150405"), f.Extension())
	}
	if err := os.WriteFile(path, rendered, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// GenerateReport resolves the named format, renders the report, and writes
// it: console formats to stdout, file formats to the given path (or a
// timestamped default when the path is empty).
func GenerateReport(data *ReportData, format, path string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}

	if f.Extension() == "txt" && path == "" {
		rendered, err := f.Format(data)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(rendered)
		return err
	}

	written, err := WriteFormatted(f, data, path)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", written)
	return nil
}

// SaveScenario serializes a scenario back to a YAML file.
func SaveScenario(s *domain.Scenario, filename string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
