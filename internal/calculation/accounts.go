package calculation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
)

// accountState is the mutable per-run balance of one account. The account
// definition itself stays read-only on the scenario; every projection or
// simulation iteration owns its own accountState slice.
type accountState struct {
	acct    *domain.Account
	balance decimal.Decimal
}

// newAccountStates copies the starting balances out of the scenario.
func newAccountStates(s *domain.Scenario) []accountState {
	states := make([]accountState, len(s.Accounts))
	for i := range s.Accounts {
		states[i] = accountState{
			acct:    &s.Accounts[i],
			balance: s.Accounts[i].StartingBalance,
		}
	}
	return states
}

// accountYearResult reports what one year's advance did to an account.
// WithdrawalShortfall is the part of the scheduled withdrawals the balance
// could not cover; it is surfaced to the aggregator, never absorbed.
type accountYearResult struct {
	Return              decimal.Decimal
	Growth              decimal.Decimal
	Contributions       decimal.Decimal
	Withdrawals         decimal.Decimal
	WithdrawalShortfall decimal.Decimal
}

// advance moves the account through one year. Growth applies to the
// starting balance first, then scheduled contributions and withdrawals,
// matching a beginning-of-year contribution / end-of-year valuation
// convention. In deterministic mode the growth rate comes from the glide
// path band for the policy age; a non-nil injected return overrides it for
// stochastic runs. The balance never goes below zero: withdrawals
// exceeding it are capped and the cap reported.
func (as *accountState) advance(policyAge int, injected *decimal.Decimal, inflation decimal.Decimal) accountYearResult {
	rate := decimal.Zero
	if band, ok := as.acct.GlidePath.BandFor(policyAge); ok {
		rate = band.AnnualReturn
	}
	if injected != nil {
		rate = *injected
	}

	growth := as.balance.Mul(rate)
	as.balance = as.balance.Add(growth)

	var contributions decimal.Decimal
	for i := range as.acct.Contributions {
		contributions = contributions.Add(as.acct.Contributions[i].AmountForAge(policyAge, inflation))
	}
	as.balance = as.balance.Add(contributions)

	var requested decimal.Decimal
	for i := range as.acct.Withdrawals {
		requested = requested.Add(as.acct.Withdrawals[i].AmountForAge(policyAge, inflation))
	}
	withdrawn := requested
	if withdrawn.GreaterThan(as.balance) {
		withdrawn = as.balance
	}
	as.balance = as.balance.Sub(withdrawn)

	return accountYearResult{
		Return:              rate,
		Growth:              growth,
		Contributions:       contributions,
		Withdrawals:         withdrawn,
		WithdrawalShortfall: requested.Sub(withdrawn),
	}
}

// drawdownOrder returns account indexes in funding-gap priority: lower
// policy rank first, input order breaking ties.
func drawdownOrder(states []accountState, policy domain.DrawdownPolicy) []int {
	order := make([]int, len(states))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return policy.RankFor(states[order[a]].acct.Kind) < policy.RankFor(states[order[b]].acct.Kind)
	})
	return order
}

// coverGap draws the funding gap from accounts in policy order. It returns
// the total drawn and the remainder no balance could cover; balances are
// pinned at zero, never negative.
func coverGap(states []accountState, policy domain.DrawdownPolicy, gap decimal.Decimal) (drawn, remainder decimal.Decimal) {
	remainder = gap
	for _, idx := range drawdownOrder(states, policy) {
		if !remainder.IsPositive() {
			break
		}
		take := remainder
		if take.GreaterThan(states[idx].balance) {
			take = states[idx].balance
		}
		states[idx].balance = states[idx].balance.Sub(take)
		drawn = drawn.Add(take)
		remainder = remainder.Sub(take)
	}
	return drawn, remainder
}

// investSurplus distributes a positive net cash flow across accounts in
// proportion to their balances, splitting equally when every balance is
// zero. The returned amount equals surplus.
func investSurplus(states []accountState, surplus decimal.Decimal) decimal.Decimal {
	if len(states) == 0 || !surplus.IsPositive() {
		return decimal.Zero
	}
	var total decimal.Decimal
	for i := range states {
		total = total.Add(states[i].balance)
	}
	if total.IsZero() {
		share := surplus.Div(decimal.NewFromInt(int64(len(states))))
		var allocated decimal.Decimal
		for i := range states {
			if i == len(states)-1 {
				share = surplus.Sub(allocated)
			}
			states[i].balance = states[i].balance.Add(share)
			allocated = allocated.Add(share)
		}
		return surplus
	}
	var allocated decimal.Decimal
	for i := range states {
		share := surplus.Mul(states[i].balance).Div(total)
		if i == len(states)-1 {
			share = surplus.Sub(allocated)
		}
		states[i].balance = states[i].balance.Add(share)
		allocated = allocated.Add(share)
	}
	return surplus
}
