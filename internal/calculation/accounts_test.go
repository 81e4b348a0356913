package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fincast/fincast/internal/domain"
)

func TestAccountState_Advance_GrowthBeforeCashFlow(t *testing.T) {
	acct := &domain.Account{
		Name:      "ira",
		GlidePath: domain.GlidePath{{AnnualReturn: decimal.NewFromFloat(0.10)}},
		Contributions: []domain.ScheduledFlow{
			{AnnualAmount: decimal.NewFromInt(10000), StartAge: 50, EndAge: 60},
		},
	}
	state := accountState{acct: acct, balance: decimal.NewFromInt(100000)}

	res := state.advance(50, nil, decimal.Zero)

	// Growth compounds the starting balance, not the post-contribution one.
	assert.True(t, res.Growth.Equal(decimal.NewFromInt(10000)), "growth on 100,000, not 110,000")
	assert.True(t, res.Contributions.Equal(decimal.NewFromInt(10000)))
	assert.True(t, state.balance.Equal(decimal.NewFromInt(120000)))
}

func TestAccountState_Advance_InjectedReturnOverridesGlide(t *testing.T) {
	acct := &domain.Account{
		Name:      "ira",
		GlidePath: domain.GlidePath{{AnnualReturn: decimal.NewFromFloat(0.05)}},
	}
	state := accountState{acct: acct, balance: decimal.NewFromInt(1000)}

	injected := decimal.NewFromFloat(-0.20)
	res := state.advance(60, &injected, decimal.Zero)

	assert.True(t, res.Return.Equal(injected))
	assert.True(t, state.balance.Equal(decimal.NewFromInt(800)))
}

func TestAccountState_Advance_WithdrawalCappedAndReported(t *testing.T) {
	acct := &domain.Account{
		Name:      "cash",
		GlidePath: flatPath(0),
		Withdrawals: []domain.ScheduledFlow{
			{AnnualAmount: decimal.NewFromInt(30000), StartAge: 65, EndAge: 90},
		},
	}
	state := accountState{acct: acct, balance: decimal.NewFromInt(12000)}

	res := state.advance(70, nil, decimal.Zero)

	assert.True(t, state.balance.IsZero(), "no borrowing against an account")
	assert.True(t, res.Withdrawals.Equal(decimal.NewFromInt(12000)))
	assert.True(t, res.WithdrawalShortfall.Equal(decimal.NewFromInt(18000)),
		"the capped amount is reported, not silently absorbed")
}

func TestAccountState_Advance_GlideBandByPolicyAge(t *testing.T) {
	acct := &domain.Account{
		Name: "401k",
		GlidePath: domain.GlidePath{
			{MaxAge: 55, AnnualReturn: decimal.NewFromFloat(0.08)},
			{MaxAge: 65, AnnualReturn: decimal.NewFromFloat(0.06)},
			{AnnualReturn: decimal.NewFromFloat(0.04)},
		},
	}

	tests := []struct {
		age  int
		rate string
	}{
		{40, "0.08"},
		{55, "0.08"},
		{56, "0.06"},
		{65, "0.06"},
		{66, "0.04"},
		{100, "0.04"},
	}
	for _, tt := range tests {
		state := accountState{acct: acct, balance: decimal.NewFromInt(100)}
		res := state.advance(tt.age, nil, decimal.Zero)
		assert.True(t, res.Return.Equal(decimal.RequireFromString(tt.rate)),
			"age %d should hit the %s band, got %s", tt.age, tt.rate, res.Return)
	}
}

func drawdownFixture() []accountState {
	mk := func(name string, kind domain.AccountKind, balance int64) accountState {
		return accountState{
			acct:    &domain.Account{Name: name, Kind: kind, GlidePath: flatPath(0)},
			balance: decimal.NewFromInt(balance),
		}
	}
	return []accountState{
		mk("roth", domain.AccountTaxFree, 50000),
		mk("401k", domain.AccountTaxDeferred, 50000),
		mk("brokerage", domain.AccountTaxable, 30000),
		mk("checking", domain.AccountCash, 5000),
	}
}

func TestDrawdownOrder_FollowsPolicyTable(t *testing.T) {
	states := drawdownFixture()
	order := drawdownOrder(states, domain.DefaultDrawdownPolicy())

	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = states[idx].acct.Name
	}
	assert.Equal(t, []string{"brokerage", "checking", "401k", "roth"}, names)
}

func TestCoverGap_DrainsInPriorityOrder(t *testing.T) {
	states := drawdownFixture()

	drawn, remainder := coverGap(states, domain.DefaultDrawdownPolicy(), decimal.NewFromInt(40000))

	assert.True(t, drawn.Equal(decimal.NewFromInt(40000)))
	assert.True(t, remainder.IsZero())
	assert.True(t, states[2].balance.IsZero(), "taxable drains first")
	assert.True(t, states[3].balance.IsZero(), "then cash")
	assert.True(t, states[1].balance.Equal(decimal.NewFromInt(45000)), "tax-deferred covers the rest")
	assert.True(t, states[0].balance.Equal(decimal.NewFromInt(50000)), "tax-free untouched")
}

func TestCoverGap_ReportsUncoveredRemainder(t *testing.T) {
	states := drawdownFixture()

	drawn, remainder := coverGap(states, domain.DefaultDrawdownPolicy(), decimal.NewFromInt(200000))

	assert.True(t, drawn.Equal(decimal.NewFromInt(135000)), "everything drawable gets drawn")
	assert.True(t, remainder.Equal(decimal.NewFromInt(65000)))
	for _, st := range states {
		assert.True(t, st.balance.IsZero())
	}
}

func TestInvestSurplus_ProportionalToBalances(t *testing.T) {
	states := drawdownFixture()[2:] // brokerage 30,000 and checking 5,000

	invested := investSurplus(states, decimal.NewFromInt(7000))

	assert.True(t, invested.Equal(decimal.NewFromInt(7000)))
	assert.True(t, states[0].balance.Equal(decimal.NewFromInt(36000)), "30,000 + 6,000 (6/7 share)")
	assert.True(t, states[1].balance.Equal(decimal.NewFromInt(6000)), "5,000 + 1,000 (1/7 share)")
}

func TestInvestSurplus_EqualSplitWhenAllZero(t *testing.T) {
	states := drawdownFixture()
	for i := range states {
		states[i].balance = decimal.Zero
	}

	invested := investSurplus(states, decimal.NewFromInt(10000))

	assert.True(t, invested.Equal(decimal.NewFromInt(10000)))
	for _, st := range states {
		assert.True(t, st.balance.Equal(decimal.NewFromInt(2500)))
	}
}
