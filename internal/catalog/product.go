package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// DefaultUnit is the unit of measure assigned when none is provided.
const DefaultUnit = "UN"

var (
	// ErrNotFound is returned by stores when a product or warehouse does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicateCode is returned when another product already uses the internal code.
	ErrDuplicateCode = errors.New("catalog: duplicate product code")
)

// Product is a sellable catalog item. Price1 is tax exclusive, Price2 tax
// inclusive and Price3 a third list tier that pricing never reads.
type Product struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Price1        decimal.Decimal `json:"price1"`
	Price2        decimal.Decimal `json:"price2"`
	Price3        decimal.Decimal `json:"price3"`
	HasTax        bool            `json:"hasTax"`
	TracksSerials bool            `json:"tracksSerials"`
	Serials       []string        `json:"serials,omitempty"`
	History       string          `json:"history,omitempty"`
}

// SalePrice returns the unit price charged at the point of sale.
func (p Product) SalePrice() decimal.Decimal {
	if p.HasTax {
		return p.Price2
	}
	return p.Price1
}

// Matches reports whether term is a case-insensitive substring of the name or code.
func (p Product) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Code), term)
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	if p.Serials != nil {
		p.Serials = append([]string(nil), p.Serials...)
	}
	return p
}

// SerialMismatch reports whether a serial-tracked product carries a different
// number of serials than units in stock. It is informational only.
func SerialMismatch(p Product, stock int) bool {
	return p.TracksSerials && len(p.Serials) != stock
}

// Warehouse is a stock location.
type Warehouse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ProductInput is the create/update payload for products.
type ProductInput struct {
	Code          string          `json:"code" validate:"required,max=32"`
	Name          string          `json:"name" validate:"required,max=200"`
	Unit          string          `json:"unit" validate:"omitempty,max=10"`
	Price1        decimal.Decimal `json:"price1"`
	Price2        decimal.Decimal `json:"price2"`
	Price3        decimal.Decimal `json:"price3"`
	HasTax        bool            `json:"hasTax"`
	TracksSerials bool            `json:"tracksSerials"`
	Serials       []string        `json:"serials" validate:"omitempty,dive,required,max=64"`
	History       string          `json:"history" validate:"max=500"`
}

// priceErrors lists the price fields that are negative.
func (in ProductInput) priceErrors() map[string]string {
	details := map[string]string{}
	for field, v := range map[string]decimal.Decimal{"price1": in.Price1, "price2": in.Price2, "price3": in.Price3} {
		if v.IsNegative() {
			details[field] = "gte"
		}
	}
	return details
}

// normalize trims text fields, fills the missing price tier from the other one
// and drops serials from products that do not track them.
func (in ProductInput) normalize() Product {
	p := Product{
		Code:          strings.TrimSpace(in.Code),
		Name:          strings.TrimSpace(in.Name),
		Unit:          strings.ToUpper(strings.TrimSpace(in.Unit)),
		Price1:        pricing.Round2(in.Price1),
		Price2:        pricing.Round2(in.Price2),
		Price3:        pricing.Round2(in.Price3),
		HasTax:        in.HasTax,
		TracksSerials: in.TracksSerials,
		History:       strings.TrimSpace(in.History),
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	switch {
	case p.Price2.IsZero() && p.Price1.IsPositive():
		p.Price2 = pricing.PriceFromValue(p.Price1, p.HasTax)
	case p.Price1.IsZero() && p.Price2.IsPositive():
		p.Price1 = pricing.ValueFromPrice(p.Price2, p.HasTax)
	}
	if p.TracksSerials {
		p.Serials = make([]string, 0, len(in.Serials))
		for _, s := range in.Serials {
			if s = strings.TrimSpace(s); s != "" {
				p.Serials = append(p.Serials, s)
			}
		}
	}
	return p
}
