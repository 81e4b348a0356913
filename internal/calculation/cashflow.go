package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
)

// streamTotals nets every income and expense stream for one year. A stream
// counts only while its owner is alive and the owner's age falls inside
// the stream's inclusive window; amounts escalate by the stream's own rate
// or, absent one, the scenario inflation rate.
func streamTotals(s *domain.Scenario, year int) (income, expenses decimal.Decimal) {
	inflation := s.Assumptions.InflationRate
	for i := range s.IncomeStreams {
		cs := &s.IncomeStreams[i]
		if age, alive := ownerActive(s, cs.Owner, year); alive {
			income = income.Add(cs.AmountForAge(age, inflation))
		}
	}
	for i := range s.ExpenseStreams {
		cs := &s.ExpenseStreams[i]
		if age, alive := ownerActive(s, cs.Owner, year); alive {
			expenses = expenses.Add(cs.AmountForAge(age, inflation))
		}
	}
	return income, expenses
}

// propertyEvents accumulates the debt-service query across all properties
// before any of them mutates.
func propertyEvents(states []propertyState, year int, closingCostRate decimal.Decimal) (debtService, downPayments, saleProceeds decimal.Decimal) {
	for i := range states {
		ev := states[i].eventsForYear(year, closingCostRate)
		debtService = debtService.Add(ev.MortgagePayment)
		downPayments = downPayments.Add(ev.DownPayment)
		saleProceeds = saleProceeds.Add(ev.SaleProceeds)
	}
	return debtService, downPayments, saleProceeds
}
