package calculation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
)

// Sampled returns are clamped to a plausible single-year band so one
// extreme draw cannot produce a nonsensical trajectory.
var (
	minSampledReturn = decimal.NewFromFloat(-0.5)
	maxSampledReturn = decimal.NewFromFloat(1.0)
)

// shockSampler draws one standardized shock per asset class for one
// simulated year. Shocks across classes within a draw are correlated
// according to the configured model; an account's realized return is its
// glide-band mean plus its resolved volatility times its class's shock.
type shockSampler interface {
	shocks(rng *rand.Rand) map[string]float64
}

// choleskySampler draws correlated standard normals by transforming
// independent draws through the Cholesky factor of the correlation
// matrix. Independent per-class sampling would silently discard the
// model's correlation assumption.
type choleskySampler struct {
	classes []string
	factor  [][]float64
}

func newCholeskySampler(model *domain.AssetModel) (*choleskySampler, error) {
	factor, err := choleskyDecompose(model.Correlation)
	if err != nil {
		return nil, err
	}
	classes := make([]string, len(model.Classes))
	for i, c := range model.Classes {
		classes[i] = c.Name
	}
	return &choleskySampler{classes: classes, factor: factor}, nil
}

func (cs *choleskySampler) shocks(rng *rand.Rand) map[string]float64 {
	n := len(cs.classes)
	eps := make([]float64, n)
	for i := range eps {
		eps[i] = standardNormal(rng)
	}
	out := make(map[string]float64, n)
	for i, class := range cs.classes {
		var z float64
		for k := 0; k <= i; k++ {
			z += cs.factor[i][k] * eps[k]
		}
		out[class] = z
	}
	return out
}

// choleskyDecompose returns the lower-triangular factor L with L·Lᵀ equal
// to the input. It fails on a matrix that is not positive semi-definite,
// which is how degenerate correlation configuration is rejected before any
// sampling begins.
func choleskyDecompose(matrix [][]float64) ([][]float64, error) {
	n := len(matrix)
	factor := make([][]float64, n)
	for i := range factor {
		factor[i] = make([]float64, n)
	}
	const tolerance = 1e-10
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := matrix[i][j]
			for k := 0; k < j; k++ {
				sum -= factor[i][k] * factor[j][k]
			}
			if i == j {
				if sum < -tolerance {
					return nil, fmt.Errorf("correlation matrix is not positive semi-definite")
				}
				if sum < 0 {
					sum = 0
				}
				factor[i][i] = math.Sqrt(sum)
			} else if factor[j][j] != 0 {
				factor[i][j] = sum / factor[j][j]
			} else if math.Abs(sum) > tolerance {
				return nil, fmt.Errorf("correlation matrix is not positive semi-definite")
			}
		}
	}
	return factor, nil
}

// standardNormal draws one standard normal via the Box-Muller transform.
func standardNormal(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// bootstrapSampler resamples whole historical years: each simulated year
// picks one row of the standardized return history, so the cross-class
// correlation baked into the data carries through without a parametric
// model.
type bootstrapSampler struct {
	classes []string
	rows    [][]float64
}

func newBootstrapSampler(model *domain.AssetModel, history *HistoricalReturns) (*bootstrapSampler, error) {
	var classes []string
	for _, c := range model.Classes {
		if history.HasClass(c.Name) {
			classes = append(classes, c.Name)
		}
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("historical data covers none of the model's asset classes")
	}

	means := make([]float64, len(classes))
	stdDevs := make([]float64, len(classes))
	for i, class := range classes {
		means[i], stdDevs[i] = history.Stats(class)
	}

	rows := make([][]float64, len(history.Years))
	for r := range history.Years {
		row := make([]float64, len(classes))
		for i, class := range classes {
			if stdDevs[i] > 0 {
				row[i] = (history.Returns[class][r] - means[i]) / stdDevs[i]
			}
		}
		rows[r] = row
	}

	return &bootstrapSampler{classes: classes, rows: rows}, nil
}

func (bs *bootstrapSampler) shocks(rng *rand.Rand) map[string]float64 {
	row := bs.rows[rng.Intn(len(bs.rows))]
	out := make(map[string]float64, len(bs.classes))
	for i, class := range bs.classes {
		out[class] = row[i]
	}
	return out
}

// resolveVolatility picks the volatility for one account's band: the
// band's own value wins, then the account's asset-class reference
// volatility, then the return-level risk ladder.
func resolveVolatility(band domain.AgeBand, acct *domain.Account, model *domain.AssetModel) decimal.Decimal {
	if band.Volatility.IsPositive() {
		return band.Volatility
	}
	class := acct.AssetClass
	if class == "" {
		class = domain.DefaultAssetClass
	}
	if vol := model.ClassVolatility(class); vol.IsPositive() {
		return vol
	}
	return domain.VolatilityForReturn(band.AnnualReturn)
}

// sampledAccountReturns assembles per-account realized returns for one
// year from the per-class shocks: band mean plus resolved volatility times
// the class shock, clamped to the sampled-return band. Accounts whose
// class the sampler does not cover keep their deterministic glide rate.
func sampledAccountReturns(s *domain.Scenario, model *domain.AssetModel, states []accountState, year int, shocks map[string]float64) []*decimal.Decimal {
	injected := make([]*decimal.Decimal, len(states))
	for i := range states {
		acct := states[i].acct
		band, ok := acct.GlidePath.BandFor(s.PolicyAge(acct, year))
		if !ok {
			continue
		}
		class := acct.AssetClass
		if class == "" {
			class = domain.DefaultAssetClass
		}
		shock, ok := shocks[class]
		if !ok {
			continue
		}
		vol := resolveVolatility(band, acct, model)
		rate := band.AnnualReturn.Add(vol.Mul(decimal.NewFromFloat(shock)))
		if rate.LessThan(minSampledReturn) {
			rate = minSampledReturn
		} else if rate.GreaterThan(maxSampledReturn) {
			rate = maxSampledReturn
		}
		injected[i] = &rate
	}
	return injected
}
