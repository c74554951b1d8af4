package pricing_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "%s: expected %s got %s", field, want, got.StringFixed(2))
}

func requireSameLine(t *testing.T, want, got pricing.Line) {
	t.Helper()
	require.Equal(t, want.Taxed, got.Taxed)
	require.Equal(t, want.Quantity, got.Quantity)
	requireAmount(t, want.UnitValue.String(), got.UnitValue, "unitValue")
	requireAmount(t, want.UnitPrice.String(), got.UnitPrice, "unitPrice")
	requireAmount(t, want.Discount.String(), got.Discount, "discount")
	requireAmount(t, want.Subtotal.String(), got.Subtotal, "subtotal")
	requireAmount(t, want.Tax.String(), got.Tax, "tax")
	requireAmount(t, want.Total.String(), got.Total, "total")
}

func TestNewLineInclusiveExample(t *testing.T) {
	engine := pricing.Engine{}
	line := engine.NewLine(dec("82.60"), true)

	requireAmount(t, "70.00", line.UnitValue, "unitValue")
	requireAmount(t, "82.60", line.UnitPrice, "unitPrice")
	requireAmount(t, "82.60", line.Subtotal, "subtotal")
	requireAmount(t, "12.60", line.Tax, "tax")
	requireAmount(t, "82.60", line.Total, "total")
	require.Equal(t, 1, line.Quantity)

	line = engine.WithQuantity(line, 3)
	requireAmount(t, "247.80", line.Subtotal, "subtotal")
	requireAmount(t, "0", line.Discount, "discount")
	requireAmount(t, "37.80", line.Tax, "tax")
	requireAmount(t, "247.80", line.Total, "total")
}

func TestNewLineExclusive(t *testing.T) {
	engine := pricing.Engine{Mode: pricing.ModeExclusive}
	line := engine.NewLine(dec("82.60"), true)

	requireAmount(t, "70.00", line.Subtotal, "subtotal")
	requireAmount(t, "12.60", line.Tax, "tax")
	requireAmount(t, "82.60", line.Total, "total")

	line = engine.WithQuantity(line, 3)
	requireAmount(t, "210.00", line.Subtotal, "subtotal")
	requireAmount(t, "37.80", line.Tax, "tax")
	requireAmount(t, "247.80", line.Total, "total")
}

func TestUntaxedLineKeepsPriceEqualToValue(t *testing.T) {
	for _, mode := range []pricing.Mode{pricing.ModeInclusive, pricing.ModeExclusive} {
		engine := pricing.Engine{Mode: mode}
		line := engine.NewLine(dec("50.00"), false)
		require.True(t, line.UnitPrice.Equal(line.UnitValue))
		requireAmount(t, "0", line.Tax, "tax")

		line = engine.WithUnitValue(line, 12.345)
		requireAmount(t, "12.35", line.UnitValue, "unitValue")
		require.True(t, line.UnitPrice.Equal(line.UnitValue))

		line = engine.WithUnitPrice(line, 9.99)
		require.True(t, line.UnitPrice.Equal(line.UnitValue))
		requireAmount(t, "9.99", line.Total, "total")
	}
}

func TestTaxRoundTripWithinOneCent(t *testing.T) {
	cent := dec("0.01")
	for cents := int64(1); cents <= 50_000; cents += 7 {
		v := decimal.New(cents, -2)
		back := pricing.ValueFromPrice(pricing.PriceFromValue(v, true), true)
		require.Truef(t, back.Sub(v).Abs().LessThanOrEqual(cent), "value %s came back as %s", v, back)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	for _, mode := range []pricing.Mode{pricing.ModeInclusive, pricing.ModeExclusive} {
		engine := pricing.Engine{Mode: mode}
		line := engine.NewLine(dec("33.33"), true)
		line = engine.WithQuantity(line, 7)
		line = engine.WithDiscountPercent(line, 12.5)

		again := engine.Recompute(line)
		requireSameLine(t, line, again)
		requireSameLine(t, again, engine.Recompute(again))
		require.True(t, engine.Consistent(line))
	}
}

func TestDiscountRatioPreservedAcrossQuantity(t *testing.T) {
	engine := pricing.Engine{}
	line := engine.NewLine(dec("82.60"), true)
	line = engine.WithDiscountPercent(line, 10)
	requireAmount(t, "8.26", line.Discount, "discount")

	before := line.Discount.Div(line.Subtotal)
	line = engine.WithQuantity(line, 3)
	requireAmount(t, "24.78", line.Discount, "discount")
	after := line.Discount.Div(line.Subtotal)
	require.True(t, before.Sub(after).Abs().LessThan(dec("0.0001")))
}

func TestDiscountScalesOnPriceEdits(t *testing.T) {
	engine := pricing.Engine{}
	line := engine.WithQuantity(engine.NewLine(dec("100.00"), true), 2)
	line = engine.WithDiscountPercent(line, 25)
	requireAmount(t, "50.00", line.Discount, "discount")

	line = engine.WithUnitPrice(line, 200)
	requireAmount(t, "400.00", line.Subtotal, "subtotal")
	requireAmount(t, "100.00", line.Discount, "discount")
	requireAmount(t, "169.49", line.UnitValue, "unitValue")

	line = engine.WithUnitValue(line, 50)
	requireAmount(t, "59.00", line.UnitPrice, "unitPrice")
	requireAmount(t, "118.00", line.Subtotal, "subtotal")
	requireAmount(t, "29.50", line.Discount, "discount")
}

func TestTotalInvariantHolds(t *testing.T) {
	steps := func(engine pricing.Engine, l pricing.Line) []pricing.Line {
		out := []pricing.Line{l}
		l = engine.WithQuantity(l, 4)
		out = append(out, l)
		l = engine.WithDiscountPercent(l, 15)
		out = append(out, l)
		l = engine.WithUnitPrice(l, 19.99)
		out = append(out, l)
		l = engine.WithUnitValue(l, 3.333)
		out = append(out, l)
		l = engine.WithQuantity(l, 1)
		return append(out, l)
	}

	exclusive := pricing.Engine{Mode: pricing.ModeExclusive}
	for _, l := range steps(exclusive, exclusive.NewLine(dec("11.80"), true)) {
		want := pricing.Round2(l.Subtotal.Sub(l.Discount).Add(l.Tax))
		require.Truef(t, want.Equal(l.Total), "total %s != %s", l.Total, want)
	}

	inclusive := pricing.Engine{}
	for _, l := range steps(inclusive, inclusive.NewLine(dec("11.80"), true)) {
		want := pricing.Round2(l.Subtotal.Sub(l.Discount))
		require.Truef(t, want.Equal(l.Total), "total %s != %s", l.Total, want)
		require.True(t, l.Tax.LessThanOrEqual(l.Total))
	}
}

func TestInvalidInputsAreCoerced(t *testing.T) {
	engine := pricing.Engine{}
	line := engine.NewLine(dec("10.00"), true)

	require.Equal(t, 1, engine.WithQuantity(line, 0).Quantity)
	require.Equal(t, 1, engine.WithQuantity(line, -5).Quantity)

	requireAmount(t, "0", engine.WithDiscountPercent(line, -3).Discount, "discount")
	requireAmount(t, "0", engine.WithDiscountPercent(line, math.NaN()).Discount, "discount")

	requireAmount(t, "0.01", engine.WithUnitValue(line, 0).UnitValue, "unitValue")
	requireAmount(t, "0.01", engine.WithUnitValue(line, math.NaN()).UnitValue, "unitValue")
	requireAmount(t, "0.01", engine.WithUnitPrice(line, -2).UnitPrice, "unitPrice")
	requireAmount(t, "0.01", engine.WithUnitPrice(line, 0.001).UnitPrice, "unitPrice")
}

func TestSummarize(t *testing.T) {
	engine := pricing.Engine{}
	taxed := engine.WithQuantity(engine.NewLine(dec("82.60"), true), 2)
	plain := engine.NewLine(dec("10.00"), false)
	plain = engine.WithDiscountPercent(plain, 50)

	totals := engine.Summarize([]pricing.Line{taxed, plain}, dec("5.00"))
	requireAmount(t, "175.20", totals.Subtotal, "subtotal")
	requireAmount(t, "5.00", totals.LineDiscounts, "lineDiscounts")
	requireAmount(t, "10.00", totals.Discounts, "discounts")
	requireAmount(t, "165.20", totals.TaxableBase, "taxableBase")
	requireAmount(t, "25.20", totals.Tax, "tax")
	requireAmount(t, "165.20", totals.GrandTotal, "grandTotal")

	exclusive := pricing.Engine{Mode: pricing.ModeExclusive}
	line := exclusive.NewLine(dec("82.60"), true)
	totals = exclusive.Summarize([]pricing.Line{line}, decimal.Zero)
	requireAmount(t, "70.00", totals.TaxableBase, "taxableBase")
	requireAmount(t, "82.60", totals.GrandTotal, "grandTotal")

	empty := engine.Summarize(nil, dec("-3"))
	requireAmount(t, "0", empty.GrandTotal, "grandTotal")
}

func TestParseMode(t *testing.T) {
	require.Equal(t, pricing.ModeExclusive, pricing.ParseMode(" Exclusive "))
	require.Equal(t, pricing.ModeInclusive, pricing.ParseMode(""))
	require.Equal(t, pricing.ModeInclusive, pricing.ParseMode("bogus"))
}
