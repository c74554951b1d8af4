package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a sale or purchase does not exist.
	ErrNotFound = errors.New("sales: not found")
	// ErrDuplicateNumber is returned when the series/number pair is already used.
	ErrDuplicateNumber = errors.New("sales: duplicate document number")
	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("sales: invalid status transition")
)

// Status is the payment state of a sale or purchase.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusVoid    Status = "void"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusVoid:
		return true
	}
	return false
}

// CanTransition reports whether a record in state s may move to next.
// Void is terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusVoid
	case StatusPaid:
		return next == StatusVoid
	}
	return false
}

// Document types and currencies accepted on sales.
const (
	DocumentBoleta  = "Boleta"
	DocumentFactura = "Factura"
	CurrencyPEN     = "PEN"
	CurrencyUSD     = "USD"
)

// Item is a denormalised line of a sale or purchase. Subtotal is the line total.
type Item struct {
	ProductCode string          `json:"productCode" validate:"required"`
	ProductName string          `json:"productName" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Sale is an immutable committed sales document.
type Sale struct {
	ID           string          `json:"id"`
	Series       string          `json:"series"`
	Number       string          `json:"number"`
	Date         time.Time       `json:"date"`
	ClientID     string          `json:"clientId,omitempty"`
	ClientName   string          `json:"clientName"`
	DocumentType string          `json:"documentType"`
	Currency     string          `json:"currency"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Status       Status          `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	Items        []Item          `json:"items"`
}

// DocumentNumber renders the printable series-number reference.
func (s Sale) DocumentNumber() string {
	return s.Series + "-" + s.Number
}

// Purchase is a supplier purchase document.
type Purchase struct {
	ID           string          `json:"id"`
	Series       string          `json:"series"`
	Number       string          `json:"number"`
	Date         time.Time       `json:"date"`
	SupplierID   string          `json:"supplierId,omitempty"`
	SupplierName string          `json:"supplierName"`
	Currency     string          `json:"currency"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Status       Status          `json:"status"`
	Items        []Item          `json:"items"`
}
