package domain

import (
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fincast/fincast/pkg/dateutil"
)

// JointOwner is the owner value for accounts held by the household rather
// than a single person.
const JointOwner = "joint"

// AccountKind classifies an account for drawdown prioritization.
type AccountKind string

const (
	AccountTaxable     AccountKind = "taxable"
	AccountCash        AccountKind = "cash"
	AccountTaxDeferred AccountKind = "tax_deferred"
	AccountTaxFree     AccountKind = "tax_free"
)

// Person represents one member of the household
type Person struct {
	Name          string `yaml:"name" json:"name"`
	BirthYear     int    `yaml:"birth_year" json:"birth_year"`
	RetirementAge int    `yaml:"retirement_age" json:"retirement_age"`
	// FinalAge is the mortality horizon. Zero means unset; the parser
	// applies the default horizon.
	FinalAge int `yaml:"final_age,omitempty" json:"final_age,omitempty"`
}

// AgeInYear returns the person's age during the given calendar year.
func (p *Person) AgeInYear(year int) int {
	return dateutil.AgeInYear(p.BirthYear, year)
}

// AliveInYear reports whether the person participates in the given year's
// cash flows: born by then and not past their final age.
func (p *Person) AliveInYear(year int) bool {
	age := p.AgeInYear(year)
	return age >= 0 && age <= p.FinalAge
}

// RetirementYear returns the calendar year the person reaches retirement age.
func (p *Person) RetirementYear() int {
	return dateutil.YearForAge(p.BirthYear, p.RetirementAge)
}

// CashStream represents one recurring income or expense. It is active while
// its owner is alive and the owner's age is inside the inclusive
// [StartAge, EndAge] window.
type CashStream struct {
	Name         string          `yaml:"name" json:"name"`
	Owner        string          `yaml:"owner" json:"owner"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartAge     int             `yaml:"start_age" json:"start_age"`
	EndAge       int             `yaml:"end_age" json:"end_age"`
	// EscalationRate compounds the amount from StartAge. Nil falls back to
	// the scenario inflation rate.
	EscalationRate *decimal.Decimal `yaml:"escalation_rate,omitempty" json:"escalation_rate,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for CashStream
func (cs *CashStream) UnmarshalYAML(value *yaml.Node) error {
	type Alias struct {
		Name           string          `yaml:"name"`
		Owner          string          `yaml:"owner"`
		AnnualAmount   decimal.Decimal `yaml:"annual_amount"`
		StartAge       int             `yaml:"start_age"`
		EndAge         int             `yaml:"end_age"`
		EscalationRate *string         `yaml:"escalation_rate,omitempty"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	cs.Name = aux.Name
	cs.Owner = aux.Owner
	cs.AnnualAmount = aux.AnnualAmount
	cs.StartAge = aux.StartAge
	cs.EndAge = aux.EndAge

	if aux.EscalationRate != nil {
		val, err := decimal.NewFromString(*aux.EscalationRate)
		if err != nil {
			return err
		}
		cs.EscalationRate = &val
	}

	return nil
}

// AmountForAge returns the escalated stream amount at the owner's age, or
// zero outside the stream's window. Escalation compounds from StartAge.
func (cs *CashStream) AmountForAge(age int, defaultEscalation decimal.Decimal) decimal.Decimal {
	if !dateutil.InAgeWindow(age, cs.StartAge, cs.EndAge) {
		return decimal.Zero
	}
	rate := defaultEscalation
	if cs.EscalationRate != nil {
		rate = *cs.EscalationRate
	}
	years := age - cs.StartAge
	if years == 0 || rate.IsZero() {
		return cs.AnnualAmount
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	return cs.AnnualAmount.Mul(factor)
}

// ScheduledFlow is a recurring contribution to or withdrawal from one
// account, windowed by the account's policy age.
type ScheduledFlow struct {
	Name           string           `yaml:"name,omitempty" json:"name,omitempty"`
	AnnualAmount   decimal.Decimal  `yaml:"annual_amount" json:"annual_amount"`
	StartAge       int              `yaml:"start_age" json:"start_age"`
	EndAge         int              `yaml:"end_age" json:"end_age"`
	EscalationRate *decimal.Decimal `yaml:"escalation_rate,omitempty" json:"escalation_rate,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for ScheduledFlow
func (sf *ScheduledFlow) UnmarshalYAML(value *yaml.Node) error {
	type Alias struct {
		Name           string          `yaml:"name,omitempty"`
		AnnualAmount   decimal.Decimal `yaml:"annual_amount"`
		StartAge       int             `yaml:"start_age"`
		EndAge         int             `yaml:"end_age"`
		EscalationRate *string         `yaml:"escalation_rate,omitempty"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	sf.Name = aux.Name
	sf.AnnualAmount = aux.AnnualAmount
	sf.StartAge = aux.StartAge
	sf.EndAge = aux.EndAge

	if aux.EscalationRate != nil {
		val, err := decimal.NewFromString(*aux.EscalationRate)
		if err != nil {
			return err
		}
		sf.EscalationRate = &val
	}

	return nil
}

// AmountForAge returns the escalated flow amount at the policy age, or zero
// outside the flow's window.
func (sf *ScheduledFlow) AmountForAge(age int, defaultEscalation decimal.Decimal) decimal.Decimal {
	if !dateutil.InAgeWindow(age, sf.StartAge, sf.EndAge) {
		return decimal.Zero
	}
	rate := defaultEscalation
	if sf.EscalationRate != nil {
		rate = *sf.EscalationRate
	}
	years := age - sf.StartAge
	if years == 0 || rate.IsZero() {
		return sf.AnnualAmount
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	return sf.AnnualAmount.Mul(factor)
}

// Account represents one investable account
type Account struct {
	Name            string          `yaml:"name" json:"name"`
	Owner           string          `yaml:"owner" json:"owner"` // person name or "joint"
	Kind            AccountKind     `yaml:"kind" json:"kind"`
	AssetClass      string          `yaml:"asset_class,omitempty" json:"asset_class,omitempty"`
	StartingBalance decimal.Decimal `yaml:"starting_balance" json:"starting_balance"`

	// Exactly one of GlidePath, GlidePathFile, or Strategy describes the
	// allocation policy. Strategy and GlidePathFile are resolved into
	// GlidePath by the parser.
	GlidePath     GlidePath       `yaml:"glide_path,omitempty" json:"glide_path,omitempty"`
	GlidePathFile string          `yaml:"glide_path_file,omitempty" json:"glide_path_file,omitempty"`
	Strategy      *LinearStrategy `yaml:"strategy,omitempty" json:"strategy,omitempty"`

	Contributions []ScheduledFlow `yaml:"contributions,omitempty" json:"contributions,omitempty"`
	Withdrawals   []ScheduledFlow `yaml:"withdrawals,omitempty" json:"withdrawals,omitempty"`
}

// IsJoint reports whether the account belongs to the household rather than
// one person.
func (a *Account) IsJoint() bool {
	return a.Owner == JointOwner
}

// RealEstateProperty represents one property, either already owned or a
// planned future purchase. Existing properties carry CurrentValue and
// CurrentMortgageBalance; planned purchases carry PurchaseYear,
// PurchasePrice, and DownPaymentPercent.
type RealEstateProperty struct {
	Name string `yaml:"name" json:"name"`

	// Existing property fields.
	CurrentValue           *decimal.Decimal `yaml:"current_value,omitempty" json:"current_value,omitempty"`
	CurrentMortgageBalance *decimal.Decimal `yaml:"current_mortgage_balance,omitempty" json:"current_mortgage_balance,omitempty"`
	RemainingTermYears     int              `yaml:"remaining_term_years,omitempty" json:"remaining_term_years,omitempty"`

	// Planned purchase fields.
	PurchaseYear       int             `yaml:"purchase_year,omitempty" json:"purchase_year,omitempty"`
	PurchasePrice      decimal.Decimal `yaml:"purchase_price,omitempty" json:"purchase_price,omitempty"`
	DownPaymentPercent decimal.Decimal `yaml:"down_payment_percent,omitempty" json:"down_payment_percent,omitempty"`
	MortgageTermYears  int             `yaml:"mortgage_term_years,omitempty" json:"mortgage_term_years,omitempty"`

	MortgageRate     decimal.Decimal `yaml:"mortgage_rate" json:"mortgage_rate"`
	AppreciationRate decimal.Decimal `yaml:"appreciation_rate" json:"appreciation_rate"`

	// SaleYear liquidates the property: equity net of closing costs is
	// credited to that year's cash flow.
	SaleYear *int `yaml:"sale_year,omitempty" json:"sale_year,omitempty"`
}

// UnmarshalYAML implements custom YAML unmarshaling for RealEstateProperty
func (rp *RealEstateProperty) UnmarshalYAML(value *yaml.Node) error {
	type Alias struct {
		Name                   string          `yaml:"name"`
		CurrentValue           *string         `yaml:"current_value,omitempty"`
		CurrentMortgageBalance *string         `yaml:"current_mortgage_balance,omitempty"`
		RemainingTermYears     int             `yaml:"remaining_term_years,omitempty"`
		PurchaseYear           int             `yaml:"purchase_year,omitempty"`
		PurchasePrice          decimal.Decimal `yaml:"purchase_price,omitempty"`
		DownPaymentPercent     decimal.Decimal `yaml:"down_payment_percent,omitempty"`
		MortgageTermYears      int             `yaml:"mortgage_term_years,omitempty"`
		MortgageRate           decimal.Decimal `yaml:"mortgage_rate"`
		AppreciationRate       decimal.Decimal `yaml:"appreciation_rate"`
		SaleYear               *int            `yaml:"sale_year,omitempty"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	rp.Name = aux.Name
	rp.RemainingTermYears = aux.RemainingTermYears
	rp.PurchaseYear = aux.PurchaseYear
	rp.PurchasePrice = aux.PurchasePrice
	rp.DownPaymentPercent = aux.DownPaymentPercent
	rp.MortgageTermYears = aux.MortgageTermYears
	rp.MortgageRate = aux.MortgageRate
	rp.AppreciationRate = aux.AppreciationRate
	rp.SaleYear = aux.SaleYear

	if aux.CurrentValue != nil {
		val, err := decimal.NewFromString(*aux.CurrentValue)
		if err != nil {
			return err
		}
		rp.CurrentValue = &val
	}
	if aux.CurrentMortgageBalance != nil {
		val, err := decimal.NewFromString(*aux.CurrentMortgageBalance)
		if err != nil {
			return err
		}
		rp.CurrentMortgageBalance = &val
	}

	return nil
}

// IsExisting reports whether the property is already owned at the start of
// the projection.
func (rp *RealEstateProperty) IsExisting() bool {
	return rp.CurrentValue != nil
}

// Assumptions holds the scenario-wide economic settings
type Assumptions struct {
	StartYear     int             `yaml:"start_year" json:"start_year"`
	EndYear       int             `yaml:"end_year,omitempty" json:"end_year,omitempty"`
	InflationRate decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
	// ClosingCostRate is deducted from equity when a property sells. Zero
	// means unset; the parser applies the default.
	ClosingCostRate decimal.Decimal `yaml:"closing_cost_rate,omitempty" json:"closing_cost_rate,omitempty"`

	AssetModel       *AssetModel    `yaml:"asset_model,omitempty" json:"asset_model,omitempty"`
	DrawdownPriority DrawdownPolicy `yaml:"drawdown_priority,omitempty" json:"drawdown_priority,omitempty"`
}

// Sampling modes for the stochastic layer.
const (
	SamplingParametric = "parametric"
	SamplingBootstrap  = "bootstrap"
)

// MonteCarloSettings configures the stochastic layer
type MonteCarloSettings struct {
	Iterations int   `yaml:"iterations" json:"iterations"`
	Seed       int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	// MaxConcurrent bounds the worker pool. Zero means unset; the engine
	// applies its default.
	MaxConcurrent int `yaml:"max_concurrent,omitempty" json:"max_concurrent,omitempty"`
	// SuccessCriterion names the solvency test applied to each trajectory.
	SuccessCriterion string `yaml:"success_criterion,omitempty" json:"success_criterion,omitempty"`
	// SamplingMode is "parametric" (correlated normal draws) or "bootstrap"
	// (resampled historical years from HistoricalDataFile).
	SamplingMode       string `yaml:"sampling_mode,omitempty" json:"sampling_mode,omitempty"`
	HistoricalDataFile string `yaml:"historical_data_file,omitempty" json:"historical_data_file,omitempty"`
}

// Scenario is the immutable root aggregate handed to the engine. It is
// constructed once by the parser and read-only for the duration of a run;
// simulation iterations copy the mutable state they need out of it.
type Scenario struct {
	Name           string               `yaml:"name" json:"name"`
	People         []Person             `yaml:"people" json:"people"`
	Accounts       []Account            `yaml:"accounts" json:"accounts"`
	Properties     []RealEstateProperty `yaml:"properties,omitempty" json:"properties,omitempty"`
	IncomeStreams  []CashStream         `yaml:"income_streams,omitempty" json:"income_streams,omitempty"`
	ExpenseStreams []CashStream         `yaml:"expense_streams,omitempty" json:"expense_streams,omitempty"`
	Assumptions    Assumptions          `yaml:"assumptions" json:"assumptions"`
	MonteCarlo     MonteCarloSettings   `yaml:"monte_carlo,omitempty" json:"monte_carlo,omitempty"`
}

// PersonByName returns the named person, or nil.
func (s *Scenario) PersonByName(name string) *Person {
	for i := range s.People {
		if s.People[i].Name == name {
			return &s.People[i]
		}
	}
	return nil
}

// OldestPerson returns the person with the earliest birth year, or nil for
// an empty household.
func (s *Scenario) OldestPerson() *Person {
	var oldest *Person
	for i := range s.People {
		if oldest == nil || s.People[i].BirthYear < oldest.BirthYear {
			oldest = &s.People[i]
		}
	}
	return oldest
}

// PolicyAge returns the age used for an account's policy lookups in the
// given year: the owner's age, or for joint accounts the oldest person's
// age. The age keeps advancing past a person's final age so that the last
// glide band keeps applying.
func (s *Scenario) PolicyAge(account *Account, year int) int {
	if account.IsJoint() {
		if oldest := s.OldestPerson(); oldest != nil {
			return oldest.AgeInYear(year)
		}
		return 0
	}
	if p := s.PersonByName(account.Owner); p != nil {
		return p.AgeInYear(year)
	}
	return 0
}
