package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects how a line's subtotal relates to its tax.
type Mode string

const (
	// ModeInclusive treats the subtotal as tax-inclusive (unit price × quantity);
	// the tax field carries the embedded IGV share and the total equals the
	// discounted subtotal.
	ModeInclusive Mode = "inclusive"
	// ModeExclusive treats the subtotal as pre-tax (unit value × quantity); the
	// tax is added on top of the discounted subtotal.
	ModeExclusive Mode = "exclusive"
)

// ParseMode maps configuration input onto a Mode, defaulting to ModeInclusive.
func ParseMode(value string) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeExclusive):
		return ModeExclusive
	default:
		return ModeInclusive
	}
}

// Line is the money state of a single cart line. Every amount is stored
// rounded to cents.
type Line struct {
	Taxed     bool            `json:"hasTax"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unitValue"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Totals aggregates a cart.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	LineDiscounts  decimal.Decimal `json:"lineDiscounts"`
	GlobalDiscount decimal.Decimal `json:"globalDiscount"`
	Discounts      decimal.Decimal `json:"discounts"`
	TaxableBase    decimal.Decimal `json:"taxableBase"`
	Tax            decimal.Decimal `json:"tax"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// Engine derives line amounts under a tax Mode. The zero value uses ModeInclusive.
//
// Every operation reads only the stored (already rounded) fields of the line it
// receives, so repeated edits never accumulate unrounded state.
type Engine struct {
	Mode Mode
}

func (e Engine) mode() Mode {
	if e.Mode == ModeExclusive {
		return ModeExclusive
	}
	return ModeInclusive
}

// NewLine prices a fresh line of quantity one from a catalog price. The price is
// tax-inclusive for taxed products and equal to the value otherwise.
func (e Engine) NewLine(price decimal.Decimal, taxed bool) Line {
	price = Round2(price)
	l := Line{
		Taxed:     taxed,
		Quantity:  1,
		UnitPrice: price,
		UnitValue: ValueFromPrice(price, taxed),
		Discount:  decimal.Zero,
	}
	return e.derive(l)
}

// WithQuantity sets the quantity, coercing non-positive input to 1. The
// discount keeps its ratio to the subtotal.
func (e Engine) WithQuantity(l Line, qty int) Line {
	if qty <= 0 {
		qty = 1
	}
	next := l
	next.Quantity = qty
	next.Discount = e.scaledDiscount(l, next)
	return e.derive(next)
}

// WithDiscountPercent replaces the discount with pct percent of the current
// subtotal. Negative or non-numeric input means no discount.
func (e Engine) WithDiscountPercent(l Line, pct float64) Line {
	if invalid(pct) || pct < 0 {
		pct = 0
	}
	next := l
	next.Discount = Round2(e.base(next).Mul(decimal.NewFromFloat(pct)).Div(hundred))
	return e.derive(next)
}

// WithUnitValue sets the tax-exclusive unit value and derives the unit price.
// Non-positive or non-numeric input is raised to MinUnitAmount.
func (e Engine) WithUnitValue(l Line, value float64) Line {
	v := MinUnitAmount
	if !invalid(value) && value > 0 {
		v = Round2(decimal.NewFromFloat(value))
		if !v.IsPositive() {
			v = MinUnitAmount
		}
	}
	next := l
	next.UnitValue = v
	next.UnitPrice = PriceFromValue(v, l.Taxed)
	next.Discount = e.scaledDiscount(l, next)
	return e.derive(next)
}

// WithUnitPrice sets the unit price and derives the tax-exclusive unit value.
// Non-positive or non-numeric input is raised to MinUnitAmount.
func (e Engine) WithUnitPrice(l Line, price float64) Line {
	p := MinUnitAmount
	if !invalid(price) && price > 0 {
		p = Round2(decimal.NewFromFloat(price))
		if !p.IsPositive() {
			p = MinUnitAmount
		}
	}
	next := l
	next.UnitPrice = p
	next.UnitValue = ValueFromPrice(p, l.Taxed)
	next.Discount = e.scaledDiscount(l, next)
	return e.derive(next)
}

// Recompute rederives subtotal, tax and total from the stored inputs of l.
func (e Engine) Recompute(l Line) Line {
	return e.derive(l)
}

// Consistent reports whether the derived fields of l match its inputs.
func (e Engine) Consistent(l Line) bool {
	d := e.derive(l)
	return d.Subtotal.Equal(l.Subtotal) && d.Tax.Equal(l.Tax) && d.Total.Equal(l.Total)
}

// Summarize aggregates lines and the cart-level discount.
func (e Engine) Summarize(lines []Line, globalDiscount decimal.Decimal) Totals {
	if globalDiscount.IsNegative() {
		globalDiscount = decimal.Zero
	}
	globalDiscount = Round2(globalDiscount)
	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
		lineDiscounts = lineDiscounts.Add(l.Discount)
		if l.Taxed {
			tax = tax.Add(l.Tax)
		}
	}
	t := Totals{
		Subtotal:       Round2(subtotal),
		LineDiscounts:  Round2(lineDiscounts),
		GlobalDiscount: globalDiscount,
		Tax:            Round2(tax),
	}
	t.Discounts = Round2(t.LineDiscounts.Add(globalDiscount))
	t.TaxableBase = Round2(t.Subtotal.Sub(t.Discounts))
	if e.mode() == ModeExclusive {
		t.GrandTotal = Round2(t.TaxableBase.Add(t.Tax))
	} else {
		t.GrandTotal = t.TaxableBase
	}
	return t
}

// base is the pre-discount subtotal for the line's current quantity.
func (e Engine) base(l Line) decimal.Decimal {
	unit := l.UnitPrice
	if e.mode() == ModeExclusive {
		unit = l.UnitValue
	}
	return Round2(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// scaledDiscount reapplies prev's discount ratio to next's subtotal. A zero
// previous subtotal counts as 1.
func (e Engine) scaledDiscount(prev, next Line) decimal.Decimal {
	if prev.Discount.IsZero() {
		return decimal.Zero
	}
	oldSubtotal := prev.Subtotal
	if oldSubtotal.IsZero() {
		oldSubtotal = one
	}
	return Round2(e.base(next).Mul(prev.Discount).Div(oldSubtotal))
}

func (e Engine) derive(l Line) Line {
	l.Subtotal = e.base(l)
	l.Discount = Round2(l.Discount)
	net := l.Subtotal.Sub(l.Discount)
	l.Tax = decimal.Zero
	switch e.mode() {
	case ModeExclusive:
		if l.Taxed {
			l.Tax = Round2(net.Mul(TaxRate))
		}
		l.Total = Round2(net.Add(l.Tax))
	default:
		if l.Taxed {
			l.Tax = Round2(net.Sub(net.Div(taxFactor)))
		}
		l.Total = Round2(net)
	}
	return l
}
