package utils

import (
	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// SplitTaxInclusive derives the net/tax breakdown of a tax-inclusive gross
// amount: net = gross / (1 + rate/100), tax = gross - net.
//
// Net is rounded to 2 decimals first and tax takes the remainder, so
// net + tax == gross holds exactly whatever the rate is.
func SplitTaxInclusive(gross decimal.Decimal, ratePercent decimal.Decimal) (net decimal.Decimal, tax decimal.Decimal) {
	divisor := decimalOneHundred.Add(ratePercent)
	net = gross.Mul(decimalOneHundred).DivRound(divisor, 2)
	tax = gross.Sub(net)
	return net, tax
}

// TaxAmountExclusive computes the tax added on top of a tax-exclusive amount:
// (amount / 100) * rate, rounded to 2 decimals.
func TaxAmountExclusive(amount decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(ratePercent).DivRound(decimalOneHundred, 2)
}
