package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	// TaxRate is the IGV rate applied to taxed products.
	TaxRate = decimal.RequireFromString("0.18")
	// MinUnitAmount is the floor applied to non-positive unit value or price edits.
	MinUnitAmount = decimal.RequireFromString("0.01")

	taxFactor = decimal.NewFromInt(1).Add(TaxRate)
	hundred   = decimal.NewFromInt(100)
	one       = decimal.NewFromInt(1)
)

// Round2 rounds an amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PriceFromValue derives the tax-inclusive unit price from a tax-exclusive value.
func PriceFromValue(value decimal.Decimal, taxed bool) decimal.Decimal {
	if !taxed {
		return Round2(value)
	}
	return Round2(value.Mul(taxFactor))
}

// ValueFromPrice derives the tax-exclusive unit value from a tax-inclusive price.
func ValueFromPrice(price decimal.Decimal, taxed bool) decimal.Decimal {
	if !taxed {
		return Round2(price)
	}
	return Round2(price.Div(taxFactor))
}

// FromFloat converts operator input into an amount rounded to cents.
func FromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return Round2(decimal.NewFromFloat(f))
}

// Sum adds the amounts and rounds the result to cents.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round2(total)
}

func invalid(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
