package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/domain"
)

var one = decimal.NewFromInt(1)

// propertyState is the mutable per-run state of one property. Planned
// purchases stay inactive until their purchase year; sold properties stay
// inactive forever. The fixed annual mortgage payment is derived once,
// when the mortgage is initialized, and never changes.
type propertyState struct {
	prop     *domain.RealEstateProperty
	active   bool
	sold     bool
	value    decimal.Decimal
	mortgage decimal.Decimal
	payment  decimal.Decimal
}

// newPropertyStates builds the starting state for every property. Existing
// properties start active with their stated value and mortgage; planned
// purchases start inactive and empty.
func newPropertyStates(s *domain.Scenario) []propertyState {
	states := make([]propertyState, len(s.Properties))
	for i := range s.Properties {
		p := &s.Properties[i]
		st := propertyState{prop: p}
		if p.IsExisting() {
			st.active = true
			st.value = *p.CurrentValue
			if p.CurrentMortgageBalance != nil {
				st.mortgage = *p.CurrentMortgageBalance
			}
			if st.mortgage.IsPositive() {
				st.payment = annualPayment(st.mortgage, p.MortgageRate, p.RemainingTermYears)
			}
		}
		states[i] = st
	}
	return states
}

// annualPayment derives the constant yearly payment that amortizes the
// principal over the term at the given rate.
func annualPayment(principal, rate decimal.Decimal, termYears int) decimal.Decimal {
	if termYears <= 0 {
		return principal
	}
	years := decimal.NewFromInt(int64(termYears))
	if rate.IsZero() {
		return principal.Div(years)
	}
	// P * r / (1 - (1+r)^-n)
	compound := one.Add(rate).Pow(years)
	return principal.Mul(rate).Div(one.Sub(one.Div(compound)))
}

// propertyYearEvents are the cash flow effects one property produces in a
// year: the mortgage outlay, a one-time down payment at purchase, and the
// net sale proceeds at liquidation.
type propertyYearEvents struct {
	MortgagePayment decimal.Decimal
	DownPayment     decimal.Decimal
	SaleProceeds    decimal.Decimal
}

// step computes the state the property will have after the year plus the
// cash events of the year, without mutating the receiver. The order is:
// purchase activation, sale (at the start-of-year position), appreciation,
// then one fixed-payment amortization step with the final payment capped
// at the payoff amount. The mortgage balance never goes below zero.
func (ps propertyState) step(year int, closingCostRate decimal.Decimal) (propertyState, propertyYearEvents) {
	next := ps
	var ev propertyYearEvents

	if ps.sold {
		return next, ev
	}

	if !next.active {
		if next.prop.IsExisting() || year < next.prop.PurchaseYear {
			return next, ev
		}
		price := next.prop.PurchasePrice
		down := price.Mul(next.prop.DownPaymentPercent)
		next.active = true
		next.value = price
		next.mortgage = price.Sub(down)
		next.payment = decimal.Zero
		if next.mortgage.IsPositive() {
			next.payment = annualPayment(next.mortgage, next.prop.MortgageRate, next.prop.MortgageTermYears)
		}
		ev.DownPayment = down
	}

	if next.prop.SaleYear != nil && year == *next.prop.SaleYear {
		proceeds := next.value.Sub(next.mortgage).Mul(one.Sub(closingCostRate))
		if proceeds.IsNegative() {
			proceeds = decimal.Zero
		}
		ev.SaleProceeds = proceeds
		next.sold = true
		next.active = false
		next.value = decimal.Zero
		next.mortgage = decimal.Zero
		next.payment = decimal.Zero
		return next, ev
	}

	next.value = next.value.Mul(one.Add(next.prop.AppreciationRate))

	if next.mortgage.IsPositive() {
		interest := next.mortgage.Mul(next.prop.MortgageRate)
		payment := next.payment
		if payoff := next.mortgage.Add(interest); payment.GreaterThan(payoff) {
			payment = payoff
		}
		next.mortgage = next.mortgage.Sub(payment.Sub(interest))
		ev.MortgagePayment = payment
	}

	return next, ev
}

// eventsForYear is the read-only debt-service query the cash flow
// aggregator uses before any state mutates.
func (ps *propertyState) eventsForYear(year int, closingCostRate decimal.Decimal) propertyYearEvents {
	_, ev := ps.step(year, closingCostRate)
	return ev
}

// advance commits one year of appreciation, amortization, activation, and
// sale, and returns the same events eventsForYear reported.
func (ps *propertyState) advance(year int, closingCostRate decimal.Decimal) propertyYearEvents {
	next, ev := ps.step(year, closingCostRate)
	*ps = next
	return ev
}

// equity is always value minus outstanding mortgage.
func (ps *propertyState) equity() decimal.Decimal {
	return ps.value.Sub(ps.mortgage)
}

// position is the property's datum for the year snapshot.
func (ps *propertyState) position() domain.PropertyPosition {
	return domain.PropertyPosition{
		Name:            ps.prop.Name,
		Value:           ps.value,
		MortgageBalance: ps.mortgage,
		Equity:          ps.equity(),
		Active:          ps.active,
	}
}
