package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultAssetClass is assumed for accounts that do not name one.
const DefaultAssetClass = "stocks"

// AgeBand is one row of a glide path: the expected return and volatility
// that apply while the policy age is at most MaxAge. MaxAge 0 marks the
// open-ended final band.
type AgeBand struct {
	MaxAge       int             `yaml:"max_age,omitempty" json:"max_age,omitempty"`
	AnnualReturn decimal.Decimal `yaml:"annual_return" json:"annual_return"`
	// Volatility 0 means unspecified; it resolves through the asset class
	// and then the return-level risk ladder.
	Volatility decimal.Decimal `yaml:"volatility,omitempty" json:"volatility,omitempty"`
}

// Open reports whether the band has no upper age limit.
func (b AgeBand) Open() bool {
	return b.MaxAge == 0
}

// GlidePath is an ordered age-band table mapping a policy age to the
// expected return and volatility for that age. Bands are consulted in
// order; the first band whose MaxAge covers the age wins, and the final
// open band covers every later age.
type GlidePath []AgeBand

// BandFor returns the band covering the given age.
func (gp GlidePath) BandFor(age int) (AgeBand, bool) {
	for _, band := range gp {
		if band.Open() || age <= band.MaxAge {
			return band, true
		}
	}
	return AgeBand{}, false
}

// Validate checks the structural invariants: at least one band, closed
// bands in strictly increasing age order, and an open final band so no age
// is left uncovered.
func (gp GlidePath) Validate() error {
	if len(gp) == 0 {
		return fmt.Errorf("glide path must have at least one band")
	}
	prevMax := 0
	for i, band := range gp {
		last := i == len(gp)-1
		if band.Open() {
			if !last {
				return fmt.Errorf("glide path band %d: only the final band may omit max_age", i+1)
			}
			continue
		}
		if last {
			return fmt.Errorf("glide path final band must omit max_age to cover all later ages")
		}
		if band.MaxAge < 0 {
			return fmt.Errorf("glide path band %d: max_age cannot be negative", i+1)
		}
		if i > 0 && band.MaxAge <= prevMax {
			return fmt.Errorf("glide path band %d: max_age %d must exceed previous band's %d", i+1, band.MaxAge, prevMax)
		}
		prevMax = band.MaxAge
	}
	return nil
}

// LinearStrategy is the two-point allocation shorthand: a flat aggressive
// rate through TransitionStartAge, a linear slide to the conservative rate
// across the transition window, and the conservative rate from
// TransitionEndAge on. The parser expands it into a GlidePath.
type LinearStrategy struct {
	AggressiveRate         decimal.Decimal  `yaml:"aggressive_rate" json:"aggressive_rate"`
	ConservativeRate       decimal.Decimal  `yaml:"conservative_rate" json:"conservative_rate"`
	TransitionStartAge     int              `yaml:"transition_start_age" json:"transition_start_age"`
	TransitionEndAge       int              `yaml:"transition_end_age" json:"transition_end_age"`
	AggressiveVolatility   *decimal.Decimal `yaml:"aggressive_volatility,omitempty" json:"aggressive_volatility,omitempty"`
	ConservativeVolatility *decimal.Decimal `yaml:"conservative_volatility,omitempty" json:"conservative_volatility,omitempty"`
}

// Expand converts the strategy into an explicit band table: one band
// through the transition start, one band per transition year with the
// linearly interpolated rate, and an open conservative band. Volatilities
// interpolate only when both endpoints are given; otherwise bands are left
// to the downstream resolution chain.
func (ls *LinearStrategy) Expand() GlidePath {
	aggVol, consVol := decimal.Zero, decimal.Zero
	interpolateVol := ls.AggressiveVolatility != nil && ls.ConservativeVolatility != nil
	if interpolateVol {
		aggVol = *ls.AggressiveVolatility
		consVol = *ls.ConservativeVolatility
	}

	path := GlidePath{{MaxAge: ls.TransitionStartAge, AnnualReturn: ls.AggressiveRate, Volatility: aggVol}}
	if ls.TransitionEndAge > ls.TransitionStartAge {
		span := decimal.NewFromInt(int64(ls.TransitionEndAge - ls.TransitionStartAge))
		rateStep := ls.ConservativeRate.Sub(ls.AggressiveRate).Div(span)
		volStep := consVol.Sub(aggVol).Div(span)
		for age := ls.TransitionStartAge + 1; age < ls.TransitionEndAge; age++ {
			offset := decimal.NewFromInt(int64(age - ls.TransitionStartAge))
			band := AgeBand{
				MaxAge:       age,
				AnnualReturn: ls.AggressiveRate.Add(rateStep.Mul(offset)),
			}
			if interpolateVol {
				band.Volatility = aggVol.Add(volStep.Mul(offset))
			}
			path = append(path, band)
		}
	}
	path = append(path, AgeBand{AnnualReturn: ls.ConservativeRate, Volatility: consVol})
	return path
}

// VolatilityForReturn estimates annual volatility from an expected return
// level using the piecewise-linear risk ladder calibrated against broad
// historical asset behavior.
func VolatilityForReturn(annualReturn decimal.Decimal) decimal.Decimal {
	pct := annualReturn.Mul(decimal.NewFromInt(100))
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(8)):
		return decimal.NewFromFloat(0.16).Add(pct.Sub(decimal.NewFromInt(8)).Mul(decimal.NewFromFloat(0.01)))
	case pct.GreaterThanOrEqual(decimal.NewFromInt(7)):
		return decimal.NewFromFloat(0.12).Add(pct.Sub(decimal.NewFromInt(7)).Mul(decimal.NewFromFloat(0.04)))
	case pct.GreaterThanOrEqual(decimal.NewFromFloat(5.5)):
		return decimal.NewFromFloat(0.08).Add(pct.Sub(decimal.NewFromFloat(5.5)).Mul(decimal.NewFromFloat(0.027)))
	case pct.GreaterThanOrEqual(decimal.NewFromInt(4)):
		return decimal.NewFromFloat(0.04).Add(pct.Sub(decimal.NewFromInt(4)).Mul(decimal.NewFromFloat(0.027)))
	default:
		return decimal.NewFromFloat(0.02).Add(pct.Mul(decimal.NewFromFloat(0.005)))
	}
}

// DrawdownRule assigns one account kind a place in the funding-gap
// drawdown order. Lower ranks are drawn first.
type DrawdownRule struct {
	Kind AccountKind `yaml:"kind" json:"kind"`
	Rank int         `yaml:"rank" json:"rank"`
}

// DrawdownPolicy is the ordered account-kind priority table consulted when
// a year's expenses exceed its income.
type DrawdownPolicy []DrawdownRule

// DefaultDrawdownPolicy drains taxable money first and tax-advantaged
// money last.
func DefaultDrawdownPolicy() DrawdownPolicy {
	return DrawdownPolicy{
		{Kind: AccountTaxable, Rank: 1},
		{Kind: AccountCash, Rank: 2},
		{Kind: AccountTaxDeferred, Rank: 3},
		{Kind: AccountTaxFree, Rank: 4},
	}
}

// RankFor returns the drawdown rank for an account kind. Kinds missing
// from the table sort after every listed kind.
func (dp DrawdownPolicy) RankFor(kind AccountKind) int {
	maxRank := 0
	for _, rule := range dp {
		if rule.Kind == kind {
			return rule.Rank
		}
		if rule.Rank > maxRank {
			maxRank = rule.Rank
		}
	}
	return maxRank + 1
}

// Validate rejects duplicate kinds and non-positive ranks.
func (dp DrawdownPolicy) Validate() error {
	seen := make(map[AccountKind]bool, len(dp))
	for i, rule := range dp {
		if rule.Kind == "" {
			return fmt.Errorf("drawdown rule %d: kind is required", i+1)
		}
		if seen[rule.Kind] {
			return fmt.Errorf("drawdown rule %d: duplicate kind %q", i+1, rule.Kind)
		}
		seen[rule.Kind] = true
		if rule.Rank <= 0 {
			return fmt.Errorf("drawdown rule %d: rank must be positive", i+1)
		}
	}
	return nil
}

// AssetClass names one asset class and its reference volatility, used when
// an account's glide band does not specify its own.
type AssetClass struct {
	Name       string          `yaml:"name" json:"name"`
	Volatility decimal.Decimal `yaml:"volatility,omitempty" json:"volatility,omitempty"`
}

// AssetModel couples the asset classes with their correlation matrix. The
// matrix rows and columns follow the order of Classes.
type AssetModel struct {
	Classes     []AssetClass `yaml:"classes" json:"classes"`
	Correlation [][]float64  `yaml:"correlation" json:"correlation"`
}

// DefaultAssetModel returns the built-in six-class model with the
// historical volatilities and pairwise correlations the planner was
// calibrated with.
func DefaultAssetModel() *AssetModel {
	classes := []AssetClass{
		{Name: "stocks", Volatility: decimal.NewFromFloat(0.18)},
		{Name: "bonds", Volatility: decimal.NewFromFloat(0.05)},
		{Name: "international", Volatility: decimal.NewFromFloat(0.20)},
		{Name: "real_estate", Volatility: decimal.NewFromFloat(0.15)},
		{Name: "cash", Volatility: decimal.NewFromFloat(0.01)},
		{Name: "commodities", Volatility: decimal.NewFromFloat(0.25)},
	}

	n := len(classes)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1
	}

	model := &AssetModel{Classes: classes, Correlation: corr}
	pairs := []struct {
		a, b string
		r    float64
	}{
		{"stocks", "bonds", -0.1},
		{"stocks", "international", 0.8},
		{"stocks", "real_estate", 0.6},
		{"bonds", "real_estate", 0.2},
		{"international", "real_estate", 0.5},
	}
	for _, p := range pairs {
		i, _ := model.Index(p.a)
		j, _ := model.Index(p.b)
		corr[i][j] = p.r
		corr[j][i] = p.r
	}

	return model
}

// Index returns the position of the named class in the model.
func (am *AssetModel) Index(name string) (int, bool) {
	for i, c := range am.Classes {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ClassVolatility returns the named class's reference volatility, or zero
// when the class is unknown or carries none.
func (am *AssetModel) ClassVolatility(name string) decimal.Decimal {
	for _, c := range am.Classes {
		if c.Name == name {
			return c.Volatility
		}
	}
	return decimal.Zero
}

// Validate checks the class list and the correlation matrix shape:
// non-empty unique class names, a square matrix matching the class count,
// unit diagonal, symmetry, and entries within [-1, 1]. Positive
// semi-definiteness is established later by the Cholesky factorization at
// simulation setup.
func (am *AssetModel) Validate() error {
	if len(am.Classes) == 0 {
		return fmt.Errorf("asset model must define at least one class")
	}
	seen := make(map[string]bool, len(am.Classes))
	for i, c := range am.Classes {
		if c.Name == "" {
			return fmt.Errorf("asset class %d: name is required", i+1)
		}
		if seen[c.Name] {
			return fmt.Errorf("asset class %d: duplicate name %q", i+1, c.Name)
		}
		seen[c.Name] = true
		if c.Volatility.IsNegative() {
			return fmt.Errorf("asset class %q: volatility cannot be negative", c.Name)
		}
	}

	n := len(am.Classes)
	if len(am.Correlation) != n {
		return fmt.Errorf("correlation matrix must have %d rows, got %d", n, len(am.Correlation))
	}
	for i, row := range am.Correlation {
		if len(row) != n {
			return fmt.Errorf("correlation row %d must have %d entries, got %d", i+1, n, len(row))
		}
		if math.Abs(row[i]-1) > 1e-9 {
			return fmt.Errorf("correlation diagonal entry %d must be 1, got %g", i+1, row[i])
		}
		for j, r := range row {
			if r < -1 || r > 1 {
				return fmt.Errorf("correlation [%d][%d] must be within [-1, 1], got %g", i+1, j+1, r)
			}
			if math.Abs(r-am.Correlation[j][i]) > 1e-9 {
				return fmt.Errorf("correlation matrix must be symmetric: [%d][%d]=%g but [%d][%d]=%g", i+1, j+1, r, j+1, i+1, am.Correlation[j][i])
			}
		}
	}
	return nil
}
