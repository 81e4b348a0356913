package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation ranges. Rates are annual fractions, ages whole years.
var (
	minRate = decimal.NewFromFloat(-0.5)
	maxRate = decimal.NewFromFloat(0.5)
)

const (
	minYear = 1900
	maxYear = 2100
	maxAge  = 120
	minTerm = 1
	maxTerm = 50
)

// Validate checks the scenario against every structural invariant the
// engine relies on. It must pass before any projection or simulation
// starts; the engine does not attempt partial recovery from malformed
// input. Defaults (final ages, drawdown priority, closing costs) are
// expected to be resolved already.
func (s *Scenario) Validate() error {
	if err := s.validateAssumptions(); err != nil {
		return err
	}
	if err := s.validatePeople(); err != nil {
		return err
	}
	if err := s.validateAccounts(); err != nil {
		return err
	}
	if err := s.validateProperties(); err != nil {
		return err
	}
	if err := s.validateStreams(s.IncomeStreams, "income stream"); err != nil {
		return err
	}
	if err := s.validateStreams(s.ExpenseStreams, "expense stream"); err != nil {
		return err
	}
	return s.validateMonteCarlo()
}

func (s *Scenario) validateAssumptions() error {
	a := &s.Assumptions
	if a.StartYear < minYear || a.StartYear > maxYear {
		return fmt.Errorf("start year %d must be between %d and %d", a.StartYear, minYear, maxYear)
	}
	if a.EndYear < minYear || a.EndYear > maxYear {
		return fmt.Errorf("end year %d must be between %d and %d", a.EndYear, minYear, maxYear)
	}
	if a.EndYear < a.StartYear {
		return fmt.Errorf("end year %d cannot precede start year %d", a.EndYear, a.StartYear)
	}
	if !rateInRange(a.InflationRate) {
		return fmt.Errorf("inflation rate %s must be between -50%% and 50%%", a.InflationRate)
	}
	if a.ClosingCostRate.IsNegative() || a.ClosingCostRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("closing cost rate %s must be between 0 and 1", a.ClosingCostRate)
	}
	if a.AssetModel != nil {
		if err := a.AssetModel.Validate(); err != nil {
			return fmt.Errorf("asset model: %w", err)
		}
	}
	if len(a.DrawdownPriority) > 0 {
		if err := a.DrawdownPriority.Validate(); err != nil {
			return fmt.Errorf("drawdown priority: %w", err)
		}
	}
	return nil
}

func (s *Scenario) validatePeople() error {
	if len(s.People) == 0 {
		return fmt.Errorf("scenario must include at least one person")
	}
	seen := make(map[string]bool, len(s.People))
	for i := range s.People {
		p := &s.People[i]
		if p.Name == "" {
			return fmt.Errorf("person %d: name is required", i+1)
		}
		if p.Name == JointOwner {
			return fmt.Errorf("person %d: %q is reserved for household accounts", i+1, JointOwner)
		}
		if seen[p.Name] {
			return fmt.Errorf("person %d: duplicate name %q", i+1, p.Name)
		}
		seen[p.Name] = true
		if p.BirthYear < minYear || p.BirthYear > maxYear {
			return fmt.Errorf("person %q: birth year %d must be between %d and %d", p.Name, p.BirthYear, minYear, maxYear)
		}
		if p.RetirementAge < 0 || p.RetirementAge > maxAge {
			return fmt.Errorf("person %q: retirement age %d must be between 0 and %d", p.Name, p.RetirementAge, maxAge)
		}
		if startAge := p.AgeInYear(s.Assumptions.StartYear); p.RetirementAge < startAge {
			return fmt.Errorf("person %q: retirement age %d is before their age %d at the projection start", p.Name, p.RetirementAge, startAge)
		}
		if p.FinalAge < p.RetirementAge {
			return fmt.Errorf("person %q: final age %d cannot precede retirement age %d", p.Name, p.FinalAge, p.RetirementAge)
		}
		if p.FinalAge > maxAge {
			return fmt.Errorf("person %q: final age %d must be at most %d", p.Name, p.FinalAge, maxAge)
		}
	}
	return nil
}

func (s *Scenario) validateOwner(owner, what, name string) error {
	if owner == JointOwner {
		return nil
	}
	if s.PersonByName(owner) == nil {
		return fmt.Errorf("%s %q: unknown owner %q", what, name, owner)
	}
	return nil
}

func (s *Scenario) validateAccounts() error {
	knownKinds := map[AccountKind]bool{
		AccountTaxable:     true,
		AccountCash:        true,
		AccountTaxDeferred: true,
		AccountTaxFree:     true,
	}
	seen := make(map[string]bool, len(s.Accounts))
	for i := range s.Accounts {
		a := &s.Accounts[i]
		if a.Name == "" {
			return fmt.Errorf("account %d: name is required", i+1)
		}
		if seen[a.Name] {
			return fmt.Errorf("account %d: duplicate name %q", i+1, a.Name)
		}
		seen[a.Name] = true
		if err := s.validateOwner(a.Owner, "account", a.Name); err != nil {
			return err
		}
		if !knownKinds[a.Kind] {
			return fmt.Errorf("account %q: unknown kind %q", a.Name, a.Kind)
		}
		if a.StartingBalance.IsNegative() {
			return fmt.Errorf("account %q: starting balance cannot be negative", a.Name)
		}
		if len(a.GlidePath) == 0 {
			return fmt.Errorf("account %q: allocation policy is unresolved (needs glide_path, glide_path_file, or strategy)", a.Name)
		}
		if err := a.GlidePath.Validate(); err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		for _, band := range a.GlidePath {
			if !rateInRange(band.AnnualReturn) {
				return fmt.Errorf("account %q: band return %s must be between -50%% and 50%%", a.Name, band.AnnualReturn)
			}
			if band.Volatility.IsNegative() || band.Volatility.GreaterThan(decimal.NewFromInt(1)) {
				return fmt.Errorf("account %q: band volatility %s must be between 0 and 1", a.Name, band.Volatility)
			}
		}
		if err := validateFlows(a.Name, "contribution", a.Contributions); err != nil {
			return err
		}
		if err := validateFlows(a.Name, "withdrawal", a.Withdrawals); err != nil {
			return err
		}
	}
	return nil
}

func validateFlows(account, what string, flows []ScheduledFlow) error {
	for i, f := range flows {
		if f.AnnualAmount.IsNegative() {
			return fmt.Errorf("account %q %s %d: annual amount cannot be negative", account, what, i+1)
		}
		if f.StartAge > f.EndAge {
			return fmt.Errorf("account %q %s %d: start age %d exceeds end age %d", account, what, i+1, f.StartAge, f.EndAge)
		}
		if f.StartAge < 0 || f.EndAge > maxAge {
			return fmt.Errorf("account %q %s %d: ages must be between 0 and %d", account, what, i+1, maxAge)
		}
		if f.EscalationRate != nil && !rateInRange(*f.EscalationRate) {
			return fmt.Errorf("account %q %s %d: escalation rate must be between -50%% and 50%%", account, what, i+1)
		}
	}
	return nil
}

func (s *Scenario) validateProperties() error {
	seen := make(map[string]bool, len(s.Properties))
	for i := range s.Properties {
		p := &s.Properties[i]
		if p.Name == "" {
			return fmt.Errorf("property %d: name is required", i+1)
		}
		if seen[p.Name] {
			return fmt.Errorf("property %d: duplicate name %q", i+1, p.Name)
		}
		seen[p.Name] = true
		if p.MortgageRate.IsNegative() || p.MortgageRate.GreaterThan(maxRate) {
			return fmt.Errorf("property %q: mortgage rate %s must be between 0 and 50%%", p.Name, p.MortgageRate)
		}
		if !rateInRange(p.AppreciationRate) {
			return fmt.Errorf("property %q: appreciation rate %s must be between -50%% and 50%%", p.Name, p.AppreciationRate)
		}
		if p.IsExisting() {
			if p.CurrentValue.IsNegative() {
				return fmt.Errorf("property %q: current value cannot be negative", p.Name)
			}
			balance := decimal.Zero
			if p.CurrentMortgageBalance != nil {
				balance = *p.CurrentMortgageBalance
			}
			if balance.IsNegative() {
				return fmt.Errorf("property %q: mortgage balance cannot be negative", p.Name)
			}
			if balance.IsPositive() && (p.RemainingTermYears < minTerm || p.RemainingTermYears > maxTerm) {
				return fmt.Errorf("property %q: remaining term %d years must be between %d and %d", p.Name, p.RemainingTermYears, minTerm, maxTerm)
			}
		} else {
			if p.PurchaseYear < s.Assumptions.StartYear || p.PurchaseYear > s.Assumptions.EndYear {
				return fmt.Errorf("property %q: purchase year %d is outside the projection window %d-%d",
					p.Name, p.PurchaseYear, s.Assumptions.StartYear, s.Assumptions.EndYear)
			}
			if !p.PurchasePrice.IsPositive() {
				return fmt.Errorf("property %q: purchase price must be positive", p.Name)
			}
			if p.DownPaymentPercent.IsNegative() || p.DownPaymentPercent.GreaterThan(decimal.NewFromInt(1)) {
				return fmt.Errorf("property %q: down payment percent %s must be between 0 and 1", p.Name, p.DownPaymentPercent)
			}
			if p.MortgageTermYears < minTerm || p.MortgageTermYears > maxTerm {
				return fmt.Errorf("property %q: mortgage term %d years must be between %d and %d", p.Name, p.MortgageTermYears, minTerm, maxTerm)
			}
		}
		if p.SaleYear != nil {
			if *p.SaleYear < s.Assumptions.StartYear || *p.SaleYear > s.Assumptions.EndYear {
				return fmt.Errorf("property %q: sale year %d is outside the projection window", p.Name, *p.SaleYear)
			}
			if !p.IsExisting() && *p.SaleYear <= p.PurchaseYear {
				return fmt.Errorf("property %q: sale year %d must follow purchase year %d", p.Name, *p.SaleYear, p.PurchaseYear)
			}
		}
	}
	return nil
}

func (s *Scenario) validateStreams(streams []CashStream, what string) error {
	for i := range streams {
		cs := &streams[i]
		if cs.Name == "" {
			return fmt.Errorf("%s %d: name is required", what, i+1)
		}
		if err := s.validateOwner(cs.Owner, what, cs.Name); err != nil {
			return err
		}
		if cs.AnnualAmount.IsNegative() {
			return fmt.Errorf("%s %q: annual amount cannot be negative", what, cs.Name)
		}
		if cs.StartAge > cs.EndAge {
			return fmt.Errorf("%s %q: start age %d exceeds end age %d", what, cs.Name, cs.StartAge, cs.EndAge)
		}
		if cs.StartAge < 0 || cs.EndAge > maxAge {
			return fmt.Errorf("%s %q: ages must be between 0 and %d", what, cs.Name, maxAge)
		}
		if cs.EscalationRate != nil && !rateInRange(*cs.EscalationRate) {
			return fmt.Errorf("%s %q: escalation rate must be between -50%% and 50%%", what, cs.Name)
		}
	}
	return nil
}

// validateMonteCarlo covers the settings that can be rejected without the
// simulation context. Sampler-level degeneracy (non-PSD correlation,
// missing historical data) is rejected at simulation setup.
func (s *Scenario) validateMonteCarlo() error {
	mc := &s.MonteCarlo
	if mc.Iterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	if mc.MaxConcurrent < 0 {
		return fmt.Errorf("monte carlo max_concurrent cannot be negative")
	}
	switch mc.SamplingMode {
	case "", SamplingParametric:
	case SamplingBootstrap:
		if mc.HistoricalDataFile == "" {
			return fmt.Errorf("bootstrap sampling requires historical_data_file")
		}
	default:
		return fmt.Errorf("unknown sampling mode %q", mc.SamplingMode)
	}
	return nil
}

func rateInRange(r decimal.Decimal) bool {
	return !r.LessThan(minRate) && !r.GreaterThan(maxRate)
}
