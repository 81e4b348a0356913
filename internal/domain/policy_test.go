package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGlidePath_BandFor(t *testing.T) {
	path := GlidePath{
		{MaxAge: 50, AnnualReturn: decimal.NewFromFloat(0.08)},
		{MaxAge: 65, AnnualReturn: decimal.NewFromFloat(0.06)},
		{AnnualReturn: decimal.NewFromFloat(0.04)},
	}

	tests := []struct {
		name         string
		age          int
		expectedRate string
	}{
		{"Well inside first band", 30, "0.08"},
		{"First band upper boundary", 50, "0.08"},
		{"Second band lower edge", 51, "0.06"},
		{"Second band upper boundary", 65, "0.06"},
		{"Open band", 66, "0.04"},
		{"Far beyond all closed bands", 110, "0.04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band, ok := path.BandFor(tt.age)
			assert.True(t, ok)
			assert.True(t, band.AnnualReturn.Equal(decimal.RequireFromString(tt.expectedRate)),
				"age %d: got %s want %s", tt.age, band.AnnualReturn, tt.expectedRate)
		})
	}
}

func TestGlidePath_Validate(t *testing.T) {
	rate := decimal.NewFromFloat(0.05)

	tests := []struct {
		name    string
		path    GlidePath
		wantErr bool
	}{
		{
			name:    "Empty path",
			path:    GlidePath{},
			wantErr: true,
		},
		{
			name:    "Single open band",
			path:    GlidePath{{AnnualReturn: rate}},
			wantErr: false,
		},
		{
			name: "Ordered bands with open tail",
			path: GlidePath{
				{MaxAge: 50, AnnualReturn: rate},
				{MaxAge: 65, AnnualReturn: rate},
				{AnnualReturn: rate},
			},
			wantErr: false,
		},
		{
			name: "Final band closed",
			path: GlidePath{
				{MaxAge: 50, AnnualReturn: rate},
				{MaxAge: 65, AnnualReturn: rate},
			},
			wantErr: true,
		},
		{
			name: "Open band before the end",
			path: GlidePath{
				{AnnualReturn: rate},
				{MaxAge: 65, AnnualReturn: rate},
				{AnnualReturn: rate},
			},
			wantErr: true,
		},
		{
			name: "Out of order bands",
			path: GlidePath{
				{MaxAge: 65, AnnualReturn: rate},
				{MaxAge: 50, AnnualReturn: rate},
				{AnnualReturn: rate},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.path.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLinearStrategy_Expand(t *testing.T) {
	strategy := &LinearStrategy{
		AggressiveRate:     decimal.NewFromFloat(0.08),
		ConservativeRate:   decimal.NewFromFloat(0.04),
		TransitionStartAge: 50,
		TransitionEndAge:   60,
	}

	path := strategy.Expand()
	assert.NoError(t, path.Validate())

	// Flat aggressive through the transition start.
	band, _ := path.BandFor(45)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.08)))
	band, _ = path.BandFor(50)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.08)))

	// Midpoint of the window interpolates halfway.
	band, _ = path.BandFor(55)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.06)),
		"age 55 should interpolate to 0.06, got %s", band.AnnualReturn)

	// Conservative from the transition end on.
	band, _ = path.BandFor(60)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.04)))
	band, _ = path.BandFor(85)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.04)))
}

func TestLinearStrategy_ExpandDegenerateWindow(t *testing.T) {
	strategy := &LinearStrategy{
		AggressiveRate:     decimal.NewFromFloat(0.07),
		ConservativeRate:   decimal.NewFromFloat(0.05),
		TransitionStartAge: 65,
		TransitionEndAge:   65,
	}

	path := strategy.Expand()
	assert.NoError(t, path.Validate())

	band, _ := path.BandFor(65)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.07)))
	band, _ = path.BandFor(66)
	assert.True(t, band.AnnualReturn.Equal(decimal.NewFromFloat(0.05)))
}

func TestLinearStrategy_ExpandVolatilityInterpolation(t *testing.T) {
	aggVol := decimal.NewFromFloat(0.18)
	consVol := decimal.NewFromFloat(0.08)
	strategy := &LinearStrategy{
		AggressiveRate:         decimal.NewFromFloat(0.08),
		ConservativeRate:       decimal.NewFromFloat(0.04),
		TransitionStartAge:     50,
		TransitionEndAge:       60,
		AggressiveVolatility:   &aggVol,
		ConservativeVolatility: &consVol,
	}

	path := strategy.Expand()
	band, _ := path.BandFor(55)
	assert.True(t, band.Volatility.Equal(decimal.NewFromFloat(0.13)),
		"age 55 volatility should interpolate to 0.13, got %s", band.Volatility)
}

func TestVolatilityForReturn(t *testing.T) {
	tests := []struct {
		name     string
		ret      string
		expected string
	}{
		{"High equity return", "0.08", "0.16"},
		{"Above eight percent", "0.10", "0.18"},
		{"Seven percent", "0.07", "0.12"},
		{"Mid ladder", "0.055", "0.08"},
		{"Four percent", "0.04", "0.04"},
		{"Cash-like return", "0.02", "0.03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VolatilityForReturn(decimal.RequireFromString(tt.ret))
			expected := decimal.RequireFromString(tt.expected)
			assert.True(t, got.Sub(expected).Abs().LessThan(decimal.NewFromFloat(0.0001)),
				"vol(%s) got %s want %s", tt.ret, got, expected)
		})
	}
}

func TestDrawdownPolicy_RankFor(t *testing.T) {
	policy := DefaultDrawdownPolicy()

	assert.Equal(t, 1, policy.RankFor(AccountTaxable))
	assert.Equal(t, 2, policy.RankFor(AccountCash))
	assert.Equal(t, 3, policy.RankFor(AccountTaxDeferred))
	assert.Equal(t, 4, policy.RankFor(AccountTaxFree))

	// Unknown kinds sort after every listed kind.
	assert.Equal(t, 5, policy.RankFor(AccountKind("hsa")))
}

func TestDrawdownPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultDrawdownPolicy().Validate())

	duplicate := DrawdownPolicy{
		{Kind: AccountTaxable, Rank: 1},
		{Kind: AccountTaxable, Rank: 2},
	}
	assert.Error(t, duplicate.Validate())

	badRank := DrawdownPolicy{{Kind: AccountTaxable, Rank: 0}}
	assert.Error(t, badRank.Validate())
}

func TestDefaultAssetModel(t *testing.T) {
	model := DefaultAssetModel()
	assert.NoError(t, model.Validate())
	assert.Len(t, model.Classes, 6)

	si, ok := model.Index("stocks")
	assert.True(t, ok)
	bi, ok := model.Index("bonds")
	assert.True(t, ok)
	assert.Equal(t, -0.1, model.Correlation[si][bi])
	assert.Equal(t, model.Correlation[si][bi], model.Correlation[bi][si])

	assert.True(t, model.ClassVolatility("cash").Equal(decimal.NewFromFloat(0.01)))
	assert.True(t, model.ClassVolatility("unknown").IsZero())
}

func TestAssetModel_Validate(t *testing.T) {
	vol := decimal.NewFromFloat(0.18)

	tests := []struct {
		name    string
		model   AssetModel
		wantErr string
	}{
		{
			name:    "No classes",
			model:   AssetModel{},
			wantErr: "at least one class",
		},
		{
			name: "Ragged matrix",
			model: AssetModel{
				Classes:     []AssetClass{{Name: "stocks", Volatility: vol}, {Name: "bonds", Volatility: vol}},
				Correlation: [][]float64{{1, 0}, {0}},
			},
			wantErr: "entries",
		},
		{
			name: "Bad diagonal",
			model: AssetModel{
				Classes:     []AssetClass{{Name: "stocks", Volatility: vol}},
				Correlation: [][]float64{{0.9}},
			},
			wantErr: "diagonal",
		},
		{
			name: "Asymmetric",
			model: AssetModel{
				Classes:     []AssetClass{{Name: "stocks", Volatility: vol}, {Name: "bonds", Volatility: vol}},
				Correlation: [][]float64{{1, 0.5}, {0.2, 1}},
			},
			wantErr: "symmetric",
		},
		{
			name: "Out of range entry",
			model: AssetModel{
				Classes:     []AssetClass{{Name: "stocks", Volatility: vol}, {Name: "bonds", Volatility: vol}},
				Correlation: [][]float64{{1, 1.5}, {1.5, 1}},
			},
			wantErr: "within [-1, 1]",
		},
		{
			name: "Valid two class model",
			model: AssetModel{
				Classes:     []AssetClass{{Name: "stocks", Volatility: vol}, {Name: "bonds", Volatility: vol}},
				Correlation: [][]float64{{1, -0.1}, {-0.1, 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
