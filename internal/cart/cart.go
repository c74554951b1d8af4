package cart

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/sales"
)

// Operation and payment kinds shown on the document header.
const (
	OperationSale    = "Venta"
	OperationService = "Servicio"
	OperationNote    = "Nota"

	PaymentCash   = "Contado"
	PaymentCredit = "Credito"
)

// DefaultExchangeRate is the PEN per USD rate a new document starts with.
var DefaultExchangeRate = decimal.RequireFromString("3.80")

// Line is a priced cart entry for one product.
type Line struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductCode string `json:"productCode"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	pricing.Line
}

// Client is the buyer attached to the document. ID is empty for walk-in
// clients typed by name.
type Client struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Document is the header of the sale being prepared.
type Document struct {
	Type          string          `json:"type"`
	Currency      string          `json:"currency"`
	Operation     string          `json:"operation"`
	PaymentMethod string          `json:"paymentMethod"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	IssueDate     string          `json:"issueDate,omitempty"`
	DueDate       string          `json:"dueDate,omitempty"`
}

func (d Document) valid() bool {
	if d.Type != sales.DocumentBoleta && d.Type != sales.DocumentFactura {
		return false
	}
	if d.Currency != sales.CurrencyPEN && d.Currency != sales.CurrencyUSD {
		return false
	}
	switch d.Operation {
	case OperationSale, OperationService, OperationNote:
	default:
		return false
	}
	if d.PaymentMethod != PaymentCash && d.PaymentMethod != PaymentCredit {
		return false
	}
	if !d.ExchangeRate.IsPositive() {
		return false
	}
	for _, day := range []string{d.IssueDate, d.DueDate} {
		if day == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, day); err != nil {
			return false
		}
	}
	return true
}

// DefaultDocument is the header a new cart starts with.
func DefaultDocument(currency string) Document {
	if currency == "" {
		currency = sales.CurrencyPEN
	}
	return Document{
		Type:          sales.DocumentFactura,
		Currency:      currency,
		Operation:     OperationSale,
		PaymentMethod: PaymentCash,
		ExchangeRate:  DefaultExchangeRate,
	}
}

// Cart is the single in-progress sale. It is not safe for concurrent use;
// Service serialises access.
type Cart struct {
	engine         pricing.Engine
	lines          []Line
	client         Client
	document       Document
	globalDiscount decimal.Decimal
	notes          string
	productSearch  string
	clientSearch   string
}

// New builds an empty cart priced by engine.
func New(engine pricing.Engine, doc Document) *Cart {
	return &Cart{engine: engine, document: doc, globalDiscount: decimal.Zero}
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// Len reports the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// AddProduct appends a line of quantity one for p. A nil product is a no-op.
func (c *Cart) AddProduct(p *catalog.Product) (Line, bool) {
	if p == nil {
		return Line{}, false
	}
	l := Line{
		ID:          uuid.NewString(),
		ProductID:   p.ID,
		ProductCode: p.Code,
		Name:        p.Name,
		Unit:        p.Unit,
		Line:        c.engine.NewLine(p.SalePrice(), p.HasTax),
	}
	c.lines = append(c.lines, l)
	return l, true
}

// UpdateQuantity sets the quantity of a line; non-positive values become 1.
func (c *Cart) UpdateQuantity(lineID string, qty int) (Line, bool) {
	return c.edit(lineID, func(l pricing.Line) pricing.Line { return c.engine.WithQuantity(l, qty) })
}

// UpdateDiscountPercent sets the line discount as a percentage of its subtotal.
func (c *Cart) UpdateDiscountPercent(lineID string, pct float64) (Line, bool) {
	return c.edit(lineID, func(l pricing.Line) pricing.Line { return c.engine.WithDiscountPercent(l, pct) })
}

// UpdateUnitValue sets the tax-exclusive unit value of a line.
func (c *Cart) UpdateUnitValue(lineID string, value float64) (Line, bool) {
	return c.edit(lineID, func(l pricing.Line) pricing.Line { return c.engine.WithUnitValue(l, value) })
}

// UpdateUnitPrice sets the unit price of a line.
func (c *Cart) UpdateUnitPrice(lineID string, price float64) (Line, bool) {
	return c.edit(lineID, func(l pricing.Line) pricing.Line { return c.engine.WithUnitPrice(l, price) })
}

func (c *Cart) edit(lineID string, fn func(pricing.Line) pricing.Line) (Line, bool) {
	i := c.index(lineID)
	if i < 0 {
		return Line{}, false
	}
	c.lines[i].Line = fn(c.lines[i].Line)
	return c.lines[i], true
}

// RemoveLine drops a line and returns it.
func (c *Cart) RemoveLine(lineID string) (Line, bool) {
	i := c.index(lineID)
	if i < 0 {
		return Line{}, false
	}
	removed := c.lines[i]
	c.lines = slices.Delete(c.lines, i, i+1)
	return removed, true
}

// SetGlobalDiscount sets the cart-level discount amount. Negative or
// non-numeric input clears it.
func (c *Cart) SetGlobalDiscount(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}
	c.globalDiscount = pricing.FromFloat(amount)
	return c.globalDiscount
}

// SetClient attaches the buyer.
func (c *Cart) SetClient(client Client) {
	client.Name = strings.TrimSpace(client.Name)
	c.client = client
}

// SetDocument replaces the document header. Invalid headers are rejected and
// leave the current one in place.
func (c *Cart) SetDocument(doc Document) bool {
	if doc.ExchangeRate.IsZero() {
		doc.ExchangeRate = c.document.ExchangeRate
	}
	if doc.Operation == "" {
		doc.Operation = c.document.Operation
	}
	if doc.PaymentMethod == "" {
		doc.PaymentMethod = c.document.PaymentMethod
	}
	if !doc.valid() {
		return false
	}
	doc.ExchangeRate = pricing.Round2(doc.ExchangeRate)
	c.document = doc
	return true
}

// SetNotes stores free-form observations printed on the document.
func (c *Cart) SetNotes(notes string) {
	c.notes = strings.TrimSpace(notes)
}

// Reset clears lines, client, discount, notes and search terms. The document
// header is kept.
func (c *Cart) Reset() {
	c.lines = nil
	c.client = Client{}
	c.globalDiscount = decimal.Zero
	c.notes = ""
	c.productSearch = ""
	c.clientSearch = ""
}

// Totals aggregates the cart.
func (c *Cart) Totals() pricing.Totals {
	lines := make([]pricing.Line, len(c.lines))
	for i, l := range c.lines {
		lines[i] = l.Line
	}
	return c.engine.Summarize(lines, c.globalDiscount)
}

func (c *Cart) index(lineID string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ID == lineID })
}

// View is a read-only snapshot of the cart.
type View struct {
	Series         string         `json:"series"`
	Number         string         `json:"number"`
	DocumentNumber string         `json:"documentNumber"`
	Document       Document       `json:"document"`
	Client         Client         `json:"client"`
	Notes          string         `json:"notes,omitempty"`
	ProductSearch  string         `json:"productSearch,omitempty"`
	ClientSearch   string         `json:"clientSearch,omitempty"`
	Lines          []Line         `json:"lines"`
	Totals         pricing.Totals `json:"totals"`
}

func (c *Cart) view() View {
	lines := c.Lines()
	if lines == nil {
		lines = []Line{}
	}
	return View{
		Document:      c.document,
		Client:        c.client,
		Notes:         c.notes,
		ProductSearch: c.productSearch,
		ClientSearch:  c.clientSearch,
		Lines:         lines,
		Totals:        c.Totals(),
	}
}
