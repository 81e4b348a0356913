package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/pkg/dateutil"
)

// Default values applied to fields the scenario file leaves unset.
var defaultClosingCostRate = decimal.NewFromFloat(0.06)

const defaultFinalAge = 90

// Parser loads scenario files and resolves them into validated, fully
// defaulted domain scenarios.
type Parser struct{}

// NewParser creates a new scenario parser.
func NewParser() *Parser {
	return &Parser{}
}

// LoadScenario reads one scenario from a YAML file, applies defaults,
// resolves allocation policies (strategy expansion and glide path files,
// relative to the scenario file's directory), and validates the result.
func (p *Parser) LoadScenario(filename string) (*domain.Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var scenario domain.Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	p.ApplyDefaults(&scenario)
	if err := p.resolveGlidePaths(&scenario, filepath.Dir(filename)); err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", filename, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads several scenario files for side-by-side comparison.
func (p *Parser) LoadScenarios(filenames []string) ([]*domain.Scenario, error) {
	scenarios := make([]*domain.Scenario, len(filenames))
	for i, filename := range filenames {
		scenario, err := p.LoadScenario(filename)
		if err != nil {
			return nil, err
		}
		scenarios[i] = scenario
	}
	return scenarios, nil
}

// ApplyDefaults fills the fields the file may omit: the mortality horizon,
// the projection window, and the sale closing cost rate. The scenario name
// falls back to "household".
func (p *Parser) ApplyDefaults(s *domain.Scenario) {
	if s.Name == "" {
		s.Name = "household"
	}
	for i := range s.People {
		if s.People[i].FinalAge == 0 {
			s.People[i].FinalAge = defaultFinalAge
		}
	}
	if s.Assumptions.StartYear == 0 {
		s.Assumptions.StartYear = time.Now().Year()
	}
	if s.Assumptions.EndYear == 0 {
		// Project until the last person reaches their final age.
		for i := range s.People {
			endYear := dateutil.YearForAge(s.People[i].BirthYear, s.People[i].FinalAge)
			if endYear > s.Assumptions.EndYear {
				s.Assumptions.EndYear = endYear
			}
		}
	}
	if s.Assumptions.ClosingCostRate.IsZero() {
		s.Assumptions.ClosingCostRate = defaultClosingCostRate
	}
}

// resolveGlidePaths turns every account's allocation policy into an
// explicit glide path. Exactly one of glide_path, glide_path_file, or
// strategy must describe each account; file references resolve relative to
// the scenario file's directory.
func (p *Parser) resolveGlidePaths(s *domain.Scenario, baseDir string) error {
	for i := range s.Accounts {
		a := &s.Accounts[i]

		specified := 0
		if len(a.GlidePath) > 0 {
			specified++
		}
		if a.GlidePathFile != "" {
			specified++
		}
		if a.Strategy != nil {
			specified++
		}
		if specified > 1 {
			return fmt.Errorf("account %q: glide_path, glide_path_file, and strategy are mutually exclusive", a.Name)
		}

		switch {
		case a.GlidePathFile != "":
			path := a.GlidePathFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			glidePath, err := LoadGlidePathCSV(path)
			if err != nil {
				return fmt.Errorf("account %q: %w", a.Name, err)
			}
			a.GlidePath = glidePath
			a.GlidePathFile = ""
		case a.Strategy != nil:
			a.GlidePath = a.Strategy.Expand()
			a.Strategy = nil
		}
	}
	return nil
}

// CreateExampleScenario builds a complete example household: a couple, a
// mix of account kinds and allocation styles, a mortgaged home, and Monte
// Carlo settings. Serialized with yaml.Marshal it is a working starting
// point for a scenario file.
func (p *Parser) CreateExampleScenario() *domain.Scenario {
	conservativeVol := decimal.NewFromFloat(0.06)
	aggressiveVol := decimal.NewFromFloat(0.17)
	homeValue := decimal.NewFromInt(450000)
	homeMortgage := decimal.NewFromInt(210000)

	return &domain.Scenario{
		Name: "example-household",
		People: []domain.Person{
			{Name: "avery", BirthYear: 1970, RetirementAge: 65, FinalAge: 92},
			{Name: "morgan", BirthYear: 1973, RetirementAge: 63, FinalAge: 95},
		},
		Accounts: []domain.Account{
			{
				Name:            "avery-401k",
				Owner:           "avery",
				Kind:            domain.AccountTaxDeferred,
				AssetClass:      "stocks",
				StartingBalance: decimal.NewFromInt(420000),
				Strategy: &domain.LinearStrategy{
					AggressiveRate:         decimal.NewFromFloat(0.07),
					ConservativeRate:       decimal.NewFromFloat(0.045),
					TransitionStartAge:     55,
					TransitionEndAge:       70,
					AggressiveVolatility:   &aggressiveVol,
					ConservativeVolatility: &conservativeVol,
				},
				Contributions: []domain.ScheduledFlow{
					{Name: "payroll deferral", AnnualAmount: decimal.NewFromInt(20000), StartAge: 54, EndAge: 64},
				},
			},
			{
				Name:            "morgan-roth",
				Owner:           "morgan",
				Kind:            domain.AccountTaxFree,
				AssetClass:      "stocks",
				StartingBalance: decimal.NewFromInt(180000),
				GlidePath: domain.GlidePath{
					{MaxAge: 60, AnnualReturn: decimal.NewFromFloat(0.065)},
					{AnnualReturn: decimal.NewFromFloat(0.05)},
				},
			},
			{
				Name:            "brokerage",
				Owner:           domain.JointOwner,
				Kind:            domain.AccountTaxable,
				AssetClass:      "stocks",
				StartingBalance: decimal.NewFromInt(250000),
				GlidePath: domain.GlidePath{
					{AnnualReturn: decimal.NewFromFloat(0.06)},
				},
			},
			{
				Name:            "emergency-fund",
				Owner:           domain.JointOwner,
				Kind:            domain.AccountCash,
				AssetClass:      "cash",
				StartingBalance: decimal.NewFromInt(40000),
				GlidePath: domain.GlidePath{
					{AnnualReturn: decimal.NewFromFloat(0.02)},
				},
			},
		},
		Properties: []domain.RealEstateProperty{
			{
				Name:                   "home",
				CurrentValue:           &homeValue,
				CurrentMortgageBalance: &homeMortgage,
				RemainingTermYears:     18,
				MortgageRate:           decimal.NewFromFloat(0.0375),
				AppreciationRate:       decimal.NewFromFloat(0.03),
			},
		},
		IncomeStreams: []domain.CashStream{
			{Name: "avery salary", Owner: "avery", AnnualAmount: decimal.NewFromInt(145000), StartAge: 54, EndAge: 64},
			{Name: "morgan salary", Owner: "morgan", AnnualAmount: decimal.NewFromInt(110000), StartAge: 51, EndAge: 62},
			{Name: "avery social security", Owner: "avery", AnnualAmount: decimal.NewFromInt(32000), StartAge: 67, EndAge: 120},
			{Name: "morgan social security", Owner: "morgan", AnnualAmount: decimal.NewFromInt(28000), StartAge: 67, EndAge: 120},
		},
		ExpenseStreams: []domain.CashStream{
			{Name: "living expenses", Owner: domain.JointOwner, AnnualAmount: decimal.NewFromInt(90000), StartAge: 54, EndAge: 120},
		},
		Assumptions: domain.Assumptions{
			StartYear:     time.Now().Year(),
			InflationRate: decimal.NewFromFloat(0.025),
		},
		MonteCarlo: domain.MonteCarloSettings{
			Iterations: 1000,
		},
	}
}
