package cart_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/sales"
)

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s got %s", want, got.StringFixed(2))
}

func product(t *testing.T, code string) *catalog.Product {
	t.Helper()
	for _, p := range catalog.DemoProducts() {
		if p.Code == code {
			return &p
		}
	}
	t.Fatalf("unknown demo product %s", code)
	return nil
}

func newCart() *cart.Cart {
	return cart.New(pricing.Engine{}, cart.DefaultDocument(sales.CurrencyPEN))
}

func TestAddProductPricesFromCatalog(t *testing.T) {
	c := newCart()
	l, ok := c.AddProduct(product(t, "P002"))
	require.True(t, ok)
	require.NotEmpty(t, l.ID)
	require.Equal(t, "Mouse Inalámbrico", l.Name)
	require.Equal(t, 1, l.Quantity)
	requireAmount(t, "70.00", l.UnitValue)
	requireAmount(t, "82.60", l.UnitPrice)
	requireAmount(t, "82.60", l.Subtotal)
	requireAmount(t, "12.60", l.Tax)
	requireAmount(t, "82.60", l.Total)

	_, ok = c.AddProduct(nil)
	require.False(t, ok)
	require.Equal(t, 1, c.Len())
}

func TestLineEdits(t *testing.T) {
	c := newCart()
	l, _ := c.AddProduct(product(t, "P002"))

	l, ok := c.UpdateQuantity(l.ID, 3)
	require.True(t, ok)
	requireAmount(t, "247.80", l.Subtotal)
	requireAmount(t, "0", l.Discount)
	requireAmount(t, "37.80", l.Tax)
	requireAmount(t, "247.80", l.Total)

	l, _ = c.UpdateDiscountPercent(l.ID, 10)
	requireAmount(t, "24.78", l.Discount)
	requireAmount(t, "34.02", l.Tax)
	requireAmount(t, "223.02", l.Total)

	l, _ = c.UpdateQuantity(l.ID, 6)
	requireAmount(t, "495.60", l.Subtotal)
	requireAmount(t, "49.56", l.Discount)

	l, _ = c.UpdateQuantity(l.ID, -4)
	require.Equal(t, 1, l.Quantity)

	l, _ = c.UpdateUnitPrice(l.ID, math.NaN())
	requireAmount(t, "0.01", l.UnitPrice)

	l, _ = c.UpdateUnitValue(l.ID, 100)
	requireAmount(t, "118.00", l.UnitPrice)

	_, ok = c.UpdateQuantity("missing", 2)
	require.False(t, ok)
	_, ok = c.RemoveLine("missing")
	require.False(t, ok)
}

func TestTotalsWithGlobalDiscount(t *testing.T) {
	c := newCart()
	mouse, _ := c.AddProduct(product(t, "P002"))
	c.UpdateQuantity(mouse.ID, 3)
	c.UpdateDiscountPercent(mouse.ID, 10)
	c.AddProduct(product(t, "P001"))
	requireAmount(t, "10", c.SetGlobalDiscount(10))

	totals := c.Totals()
	requireAmount(t, "483.80", totals.Subtotal)
	requireAmount(t, "24.78", totals.LineDiscounts)
	requireAmount(t, "34.78", totals.Discounts)
	requireAmount(t, "449.02", totals.TaxableBase)
	requireAmount(t, "70.02", totals.Tax)
	requireAmount(t, "449.02", totals.GrandTotal)

	requireAmount(t, "0", c.SetGlobalDiscount(-5))
	requireAmount(t, "0", c.SetGlobalDiscount(math.NaN()))
}

func TestExclusiveModeTotals(t *testing.T) {
	c := cart.New(pricing.Engine{Mode: pricing.ModeExclusive}, cart.DefaultDocument(""))
	l, _ := c.AddProduct(product(t, "P002"))
	requireAmount(t, "70.00", l.Subtotal)
	requireAmount(t, "12.60", l.Tax)
	requireAmount(t, "82.60", l.Total)
	requireAmount(t, "82.60", c.Totals().GrandTotal)
}

func TestRemoveAndReset(t *testing.T) {
	c := newCart()
	first, _ := c.AddProduct(product(t, "P001"))
	c.AddProduct(product(t, "P005"))
	removed, ok := c.RemoveLine(first.ID)
	require.True(t, ok)
	require.Equal(t, "P001", removed.ProductCode)
	require.Len(t, c.Lines(), 1)

	c.SetClient(cart.Client{Name: "  Juan Pérez "})
	c.SetNotes("entrega en tienda")
	c.SetGlobalDiscount(5)
	require.True(t, c.SetDocument(cart.Document{Type: sales.DocumentBoleta, Currency: sales.CurrencyUSD}))
	c.Reset()

	require.Zero(t, c.Len())
	totals := c.Totals()
	requireAmount(t, "0", totals.GlobalDiscount)
	requireAmount(t, "0", totals.GrandTotal)
	require.True(t, c.SetDocument(cart.Document{Type: sales.DocumentFactura, Currency: sales.CurrencyPEN}))
}

func TestSetDocumentRejectsUnknownValues(t *testing.T) {
	c := newCart()
	require.False(t, c.SetDocument(cart.Document{Type: "Ticket", Currency: sales.CurrencyPEN}))
	require.False(t, c.SetDocument(cart.Document{Type: sales.DocumentBoleta, Currency: "EUR"}))
	require.False(t, c.SetDocument(cart.Document{Type: sales.DocumentBoleta, Currency: sales.CurrencyPEN, IssueDate: "01/05/2024"}))
	require.False(t, c.SetDocument(cart.Document{Type: sales.DocumentBoleta, Currency: sales.CurrencyPEN, PaymentMethod: "Yape"}))
	require.True(t, c.SetDocument(cart.Document{
		Type:          sales.DocumentBoleta,
		Currency:      sales.CurrencyPEN,
		Operation:     cart.OperationService,
		PaymentMethod: cart.PaymentCredit,
		IssueDate:     "2024-05-01",
		DueDate:       "2024-05-31",
	}))
}
