package calculation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/domain"
)

func TestCholeskyDecompose_Identity(t *testing.T) {
	identity := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	factor, err := choleskyDecompose(identity)
	require.NoError(t, err)

	for i := range factor {
		for j := range factor[i] {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, factor[i][j], 1e-12)
		}
	}
}

func TestCholeskyDecompose_KnownTwoByTwo(t *testing.T) {
	rho := 0.6
	matrix := [][]float64{
		{1, rho},
		{rho, 1},
	}

	factor, err := choleskyDecompose(matrix)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, factor[0][0], 1e-12)
	assert.InDelta(t, rho, factor[1][0], 1e-12)
	assert.InDelta(t, math.Sqrt(1-rho*rho), factor[1][1], 1e-12)
}

func TestCholeskyDecompose_RejectsNonPSD(t *testing.T) {
	// |rho| > 1 cannot be a correlation matrix.
	matrix := [][]float64{
		{1, 1.5},
		{1.5, 1},
	}

	_, err := choleskyDecompose(matrix)
	assert.Error(t, err)
}

func TestCholeskySampler_ShocksCorrelate(t *testing.T) {
	model := &domain.AssetModel{
		Classes: []domain.AssetClass{
			{Name: "stocks", Volatility: decimal.NewFromFloat(0.18)},
			{Name: "bonds", Volatility: decimal.NewFromFloat(0.05)},
		},
		Correlation: [][]float64{
			{1, 0.9},
			{0.9, 1},
		},
	}
	sampler, err := newCholeskySampler(model)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	const n = 5000
	var sumXY, sumX, sumY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		shocks := sampler.shocks(rng)
		x, y := shocks["stocks"], shocks["bonds"]
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	meanX, meanY := sumX/n, sumY/n
	cov := sumXY/n - meanX*meanY
	sdX := math.Sqrt(sumXX/n - meanX*meanX)
	sdY := math.Sqrt(sumYY/n - meanY*meanY)

	assert.InDelta(t, 0.9, cov/(sdX*sdY), 0.05,
		"sampled correlation must track the configured matrix")
}

func TestStandardNormal_MomentsSane(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const n = 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		z := standardNormal(rng)
		sum += z
		sumSq += z * z
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.05)
}

func TestBootstrapSampler_StandardizedRows(t *testing.T) {
	model := &domain.AssetModel{
		Classes: []domain.AssetClass{
			{Name: "stocks", Volatility: decimal.NewFromFloat(0.18)},
			{Name: "gold", Volatility: decimal.NewFromFloat(0.15)},
		},
		Correlation: [][]float64{{1, 0}, {0, 1}},
	}
	history := &HistoricalReturns{
		Classes: []string{"stocks", "cash"},
		Years:   []int{2000, 2001, 2002},
		Returns: map[string][]float64{
			"stocks": {0.10, -0.10, 0.30},
			"cash":   {0.02, 0.02, 0.02},
		},
	}

	sampler, err := newBootstrapSampler(model, history)
	require.NoError(t, err)
	require.Equal(t, []string{"stocks"}, sampler.classes,
		"only classes both the model and the data cover are sampled")

	// Standardized draws must come from the finite standardized set.
	mean, sd := history.Stats("stocks")
	valid := map[float64]bool{}
	for _, r := range history.Returns["stocks"] {
		valid[(r-mean)/sd] = true
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		shocks := sampler.shocks(rng)
		assert.True(t, valid[shocks["stocks"]], "draw %d produced a non-historical shock", i)
	}
}

func TestBootstrapSampler_NoOverlapFails(t *testing.T) {
	model := domain.DefaultAssetModel()
	history := &HistoricalReturns{
		Classes: []string{"tulips"},
		Years:   []int{1637},
		Returns: map[string][]float64{"tulips": {-0.99}},
	}

	_, err := newBootstrapSampler(model, history)
	assert.Error(t, err)
}

func TestResolveVolatility_Precedence(t *testing.T) {
	model := domain.DefaultAssetModel()

	// Band volatility wins.
	band := domain.AgeBand{AnnualReturn: decimal.NewFromFloat(0.06), Volatility: decimal.NewFromFloat(0.11)}
	acct := &domain.Account{AssetClass: "stocks"}
	assert.True(t, resolveVolatility(band, acct, model).Equal(decimal.NewFromFloat(0.11)))

	// Then the asset-class reference volatility.
	band.Volatility = decimal.Zero
	got := resolveVolatility(band, acct, model)
	assert.True(t, got.Equal(model.ClassVolatility("stocks")))

	// Then the return-level risk ladder.
	acct.AssetClass = "beanie-babies"
	got = resolveVolatility(band, acct, model)
	assert.True(t, got.Equal(domain.VolatilityForReturn(band.AnnualReturn)))
}

func TestSampledAccountReturns_ClampsAndFallsBack(t *testing.T) {
	s := singlePersonScenario(2025)
	s.Accounts = append(s.Accounts, domain.Account{
		Name:            "obscure",
		Owner:           "alex",
		Kind:            domain.AccountTaxable,
		AssetClass:      "collectibles",
		StartingBalance: decimal.NewFromInt(1000),
		GlidePath:       flatPath(0.04),
	})
	states := newAccountStates(s)
	model := domain.DefaultAssetModel()

	shocks := map[string]float64{"stocks": -100} // absurd draw to force the clamp
	injected := sampledAccountReturns(s, model, states, 2025, shocks)

	require.Len(t, injected, 2)
	require.NotNil(t, injected[0])
	assert.True(t, injected[0].Equal(minSampledReturn), "an extreme draw clamps to the floor")
	assert.Nil(t, injected[1], "a class the sampler does not cover keeps its glide rate")
}
