package trade

import "github.com/shopspring/decimal"

// QuantityStep is the smallest tradable quantity increment.
const QuantityStep = "0.001"

var quantityStep = decimal.RequireFromString(QuantityStep)

// ComputeNetBudget derives the spendable budget for one BUY from the free
// balance: freeBudget * placementPercentage - fee, fixed to 8 decimal places.
func ComputeNetBudget(freeBudget, placementPercentage, fee float64) float64 {
	net := decimal.NewFromFloat(freeBudget).
		Mul(decimal.NewFromFloat(placementPercentage)).
		Sub(decimal.NewFromFloat(fee)).
		Round(8)
	f, _ := net.Float64()
	return f
}

// ComputeQuantity returns the largest quantity, in whole 0.001 steps from
// zero, whose notional value does not exceed netBudget at the given price.
// Zero/negative inputs yield zero quantity, meaning "cannot trade".
//
// Decimal arithmetic keeps the step boundary exact: floats drift right at
// quantity*price == netBudget.
func ComputeQuantity(netBudget, price float64) float64 {
	if netBudget <= 0 || price <= 0 {
		return 0
	}

	steps := decimal.NewFromFloat(netBudget).
		Div(decimal.NewFromFloat(price)).
		Div(quantityStep).
		Floor()

	f, _ := steps.Mul(quantityStep).Float64()
	return f
}

// SubmissionQuantity truncates a computed quantity to 2 decimal places for
// order submission. Truncation, not rounding: rounding up could push the
// notional value past the budget.
func SubmissionQuantity(quantity float64) float64 {
	f, _ := decimal.NewFromFloat(quantity).Truncate(2).Float64()
	return f
}
