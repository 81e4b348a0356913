package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/pkg/dateutil"
)

// returnsFunc supplies externally sampled realized returns for one year,
// one entry per account (a nil entry falls back to the account's glide
// rate). A nil returnsFunc makes the whole trajectory deterministic.
type returnsFunc func(year int, states []accountState) []*decimal.Decimal

// trajectory runs the year-by-year state machine shared by the
// deterministic projector and every Monte Carlo iteration. It is strictly
// sequential: each year depends only on the prior year's ending state. Per
// year, in order: ages, cash flow (via the read-only debt-service query),
// account advancement plus funding-gap drawdown or surplus investment,
// property advancement, snapshot.
func trajectory(s *domain.Scenario, sampled returnsFunc) []domain.YearSnapshot {
	accounts := newAccountStates(s)
	properties := newPropertyStates(s)
	policy := s.Assumptions.DrawdownPriority
	if len(policy) == 0 {
		policy = domain.DefaultDrawdownPolicy()
	}
	closing := s.Assumptions.ClosingCostRate
	inflation := s.Assumptions.InflationRate

	startYear := s.Assumptions.StartYear
	endYear := s.Assumptions.EndYear
	snapshots := make([]domain.YearSnapshot, 0, dateutil.SpanYears(startYear, endYear))

	for year := startYear; year <= endYear; year++ {
		ages := agesForYear(s, year)
		income, expenses := streamTotals(s, year)
		debtService, downPayments, saleProceeds := propertyEvents(properties, year, closing)

		var injected []*decimal.Decimal
		if sampled != nil {
			injected = sampled(year, accounts)
		}

		var growth, contributions, withdrawals, withdrawalShortfall decimal.Decimal
		for i := range accounts {
			var inj *decimal.Decimal
			if injected != nil {
				inj = injected[i]
			}
			res := accounts[i].advance(s.PolicyAge(accounts[i].acct, year), inj, inflation)
			growth = growth.Add(res.Growth)
			contributions = contributions.Add(res.Contributions)
			withdrawals = withdrawals.Add(res.Withdrawals)
			withdrawalShortfall = withdrawalShortfall.Add(res.WithdrawalShortfall)
		}

		net := income.Add(saleProceeds).Add(withdrawals).
			Sub(expenses).Sub(debtService).Sub(downPayments).Sub(contributions)

		shortfall := withdrawalShortfall
		if net.IsNegative() {
			drawn, remainder := coverGap(accounts, policy, net.Neg())
			withdrawals = withdrawals.Add(drawn)
			shortfall = shortfall.Add(remainder)
		} else if net.IsPositive() {
			contributions = contributions.Add(investSurplus(accounts, net))
		}

		for i := range properties {
			properties[i].advance(year, closing)
		}

		snapshot := domain.YearSnapshot{
			Year:               year,
			Ages:               ages,
			TotalIncome:        income,
			TotalExpenses:      expenses.Add(downPayments),
			DebtService:        debtService,
			SaleProceeds:       saleProceeds,
			NetCashFlow:        net,
			TotalGrowth:        growth,
			TotalContributions: contributions,
			TotalWithdrawals:   withdrawals,
			Shortfall:          shortfall.IsPositive(),
			ShortfallAmount:    shortfall,
		}

		snapshot.Accounts = make([]domain.AccountBalance, len(accounts))
		for i := range accounts {
			snapshot.Accounts[i] = domain.AccountBalance{
				Name:    accounts[i].acct.Name,
				Kind:    accounts[i].acct.Kind,
				Balance: accounts[i].balance,
			}
			snapshot.PortfolioBalance = snapshot.PortfolioBalance.Add(accounts[i].balance)
		}
		if len(properties) > 0 {
			snapshot.Properties = make([]domain.PropertyPosition, len(properties))
			for i := range properties {
				snapshot.Properties[i] = properties[i].position()
				snapshot.RealEstateEquity = snapshot.RealEstateEquity.Add(snapshot.Properties[i].Equity)
			}
		}
		snapshot.NetWorth = snapshot.PortfolioBalance.Add(snapshot.RealEstateEquity)

		snapshots = append(snapshots, snapshot)
	}

	return snapshots
}

// computeMetrics condenses a trajectory into its headline figures.
func computeMetrics(s *domain.Scenario, snapshots []domain.YearSnapshot) domain.SuccessMetrics {
	var m domain.SuccessMetrics
	for i := range snapshots {
		snap := &snapshots[i]
		m.TotalContributions = m.TotalContributions.Add(snap.TotalContributions)
		m.TotalWithdrawals = m.TotalWithdrawals.Add(snap.TotalWithdrawals)
		m.TotalGrowth = m.TotalGrowth.Add(snap.TotalGrowth)
		if !snap.Shortfall {
			m.YearsSolvent++
		} else if m.FirstShortfallYear == nil {
			year := snap.Year
			m.FirstShortfallYear = &year
			if len(s.People) > 0 {
				age := s.People[0].AgeInYear(year)
				m.FirstShortfallAge = &age
			}
		}
	}
	if last := len(snapshots) - 1; last >= 0 {
		m.FinalNetWorth = snapshots[last].NetWorth
		m.FinalPortfolioBalance = snapshots[last].PortfolioBalance
	}
	return m
}
