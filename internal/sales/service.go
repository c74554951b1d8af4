package sales

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

// SupplierDirectory resolves the supplier a purchase references.
type SupplierDirectory interface {
	Get(ctx context.Context, id string) (suppliers.Supplier, error)
}

// ListFilter narrows sale listings. Zero values match everything.
type ListFilter struct {
	Status Status
	From   time.Time
	To     time.Time
	Term   string
}

func (f ListFilter) match(s Sale) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && s.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !s.Date.Before(f.To) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Term)); term != "" {
		return strings.Contains(strings.ToLower(s.ClientName), term) ||
			strings.Contains(strings.ToLower(s.DocumentNumber()), term)
	}
	return true
}

// PurchaseInput is the payload for registering a supplier purchase. Unit
// prices are tax exclusive. A supplierId links the purchase to the supplier
// directory and fills supplierName when it is omitted.
type PurchaseInput struct {
	Series       string `json:"series" validate:"required,max=8"`
	Number       string `json:"number" validate:"required,max=12"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName" validate:"required_without=SupplierID,max=200"`
	Currency     string `json:"currency" validate:"omitempty,oneof=PEN USD"`
	Untaxed      bool   `json:"untaxed"`
	Status       Status `json:"status" validate:"omitempty,oneof=pending paid void"`
	Items        []Item `json:"items" validate:"required,min=1,dive"`
}

// FinanceSummary aggregates sales against purchases. Void documents are excluded.
type FinanceSummary struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	GrossProfit    decimal.Decimal `json:"grossProfit"`
	PaidSales      decimal.Decimal `json:"paidSales"`
	PaidPurchases  decimal.Decimal `json:"paidPurchases"`
	CashFlow       decimal.Decimal `json:"cashFlow"`
	SalesCount     int             `json:"salesCount"`
	PurchasesCount int             `json:"purchasesCount"`
}

// Service exposes sale history, purchases and finance aggregates.
type Service struct {
	sales     Repository
	purchases PurchaseRepository
	tally     *Tally
	suppliers SupplierDirectory
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Sales     Repository
	Purchases PurchaseRepository
	Tally     *Tally
	Suppliers SupplierDirectory
	Validator *validator.Validate
	Logger    zerolog.Logger
	Now       func() time.Time
}

// NewService constructs a sales service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Sales == nil || cfg.Purchases == nil {
		return nil, errors.New("sales: repositories are required")
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{sales: cfg.Sales, purchases: cfg.Purchases, tally: cfg.Tally, suppliers: cfg.Suppliers, validate: v, logger: cfg.Logger, now: now}, nil
}

// List returns the sales matching f in issue order.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Sale, error) {
	rows, err := s.sales.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Sale, 0, len(rows))
	for _, sale := range rows {
		if f.match(sale) {
			out = append(out, sale)
		}
	}
	return out, nil
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id string) (Sale, error) {
	sale, err := s.sales.Get(ctx, id)
	if err != nil {
		return Sale{}, wrap(err)
	}
	return sale, nil
}

// SetStatus moves a sale to status when the transition is allowed.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Sale, error) {
	if !status.Valid() {
		return Sale{}, common.BadRequest("invalid status", map[string]string{"status": "oneof"})
	}
	current, err := s.sales.Get(ctx, id)
	if err != nil {
		return Sale{}, wrap(err)
	}
	if current.Status == status {
		return current, nil
	}
	if !current.Status.CanTransition(status) {
		return Sale{}, wrap(fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status))
	}
	updated, err := s.sales.SetStatus(ctx, id, status)
	if err != nil {
		return Sale{}, wrap(err)
	}
	s.logger.Info().Str("sale_id", id).Str("from", string(current.Status)).Str("to", string(status)).Msg("sale status changed")
	return updated, nil
}

// Purchases returns all purchases.
func (s *Service) Purchases(ctx context.Context) ([]Purchase, error) {
	return s.purchases.ListPurchases(ctx)
}

// CreatePurchase validates in, prices its items and stores the purchase.
func (s *Service) CreatePurchase(ctx context.Context, in PurchaseInput) (Purchase, error) {
	if err := common.ValidateStruct(s.validate, in); err != nil {
		return Purchase{}, err
	}
	date := s.now().UTC()
	if in.Date != "" {
		parsed, err := time.Parse(time.DateOnly, in.Date)
		if err != nil {
			return Purchase{}, common.BadRequest("invalid date", map[string]string{"date": "datetime"})
		}
		date = parsed
	}
	supplierName, err := s.supplierName(ctx, strings.TrimSpace(in.SupplierID), strings.TrimSpace(in.SupplierName))
	if err != nil {
		return Purchase{}, err
	}
	p := Purchase{
		Series:       strings.TrimSpace(in.Series),
		Number:       strings.TrimSpace(in.Number),
		Date:         date,
		SupplierID:   strings.TrimSpace(in.SupplierID),
		SupplierName: supplierName,
		Currency:     in.Currency,
		Status:       in.Status,
		Items:        make([]Item, 0, len(in.Items)),
	}
	if p.Currency == "" {
		p.Currency = CurrencyPEN
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	subtotal := decimal.Zero
	for i, item := range in.Items {
		if item.UnitPrice.IsNegative() {
			return Purchase{}, common.BadRequest("validation failed", map[string]string{fmt.Sprintf("items[%d].unitPrice", i): "gte"})
		}
		item.UnitPrice = pricing.Round2(item.UnitPrice)
		item.Subtotal = pricing.Round2(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		subtotal = subtotal.Add(item.Subtotal)
		p.Items = append(p.Items, item)
	}
	p.Subtotal = pricing.Round2(subtotal)
	p.Tax = decimal.Zero
	if !in.Untaxed {
		p.Tax = pricing.Round2(p.Subtotal.Mul(pricing.TaxRate))
	}
	p.Total = p.Subtotal.Add(p.Tax)
	saved, err := s.purchases.AppendPurchase(ctx, p)
	if err != nil {
		return Purchase{}, fmt.Errorf("sales: %w", err)
	}
	return saved, nil
}

// Summary computes the finance overview.
func (s *Service) Summary(ctx context.Context) (FinanceSummary, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return FinanceSummary{}, err
	}
	purchases, err := s.purchases.ListPurchases(ctx)
	if err != nil {
		return FinanceSummary{}, err
	}
	var sum FinanceSummary
	for _, sale := range sales {
		if sale.Status == StatusVoid {
			continue
		}
		sum.SalesCount++
		sum.TotalSales = sum.TotalSales.Add(sale.Total)
		if sale.Status == StatusPaid {
			sum.PaidSales = sum.PaidSales.Add(sale.Total)
		}
	}
	for _, p := range purchases {
		if p.Status == StatusVoid {
			continue
		}
		sum.PurchasesCount++
		sum.TotalPurchases = sum.TotalPurchases.Add(p.Total)
		if p.Status == StatusPaid {
			sum.PaidPurchases = sum.PaidPurchases.Add(p.Total)
		}
	}
	sum.GrossProfit = sum.TotalSales.Sub(sum.TotalPurchases)
	sum.CashFlow = sum.PaidSales.Sub(sum.PaidPurchases)
	return sum, nil
}

// Daily returns the tally of sales committed on day. It fails when no tally is configured.
func (s *Service) Daily(ctx context.Context, day time.Time) (DailyTotals, error) {
	if s.tally == nil {
		return DailyTotals{}, common.NewAppError("TALLY_DISABLED", "daily tally requires redis", http.StatusServiceUnavailable, nil)
	}
	return s.tally.Day(ctx, day)
}

func wrap(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return common.NotFound("sale not found", err)
	case errors.Is(err, ErrInvalidTransition):
		return common.NewAppError("INVALID_TRANSITION", err.Error(), http.StatusConflict, err)
	case errors.Is(err, ErrDuplicateNumber):
		return common.NewAppError("DUPLICATE_NUMBER", "document number already used", http.StatusConflict, err)
	default:
		return fmt.Errorf("sales: %w", err)
	}
}

// supplierName checks that id names a known supplier and returns the name to
// record on the purchase. An explicit name wins over the directory's.
func (s *Service) supplierName(ctx context.Context, id, name string) (string, error) {
	if id == "" || s.suppliers == nil {
		if name == "" {
			return "", common.BadRequest("validation failed", map[string]string{"supplierName": "required"})
		}
		return name, nil
	}
	sup, err := s.suppliers.Get(ctx, id)
	switch {
	case errors.Is(err, suppliers.ErrNotFound):
		return "", common.BadRequest("unknown supplier", map[string]string{"supplierId": "exists"})
	case err != nil:
		return "", fmt.Errorf("sales: resolve supplier %s: %w", id, err)
	}
	if name == "" {
		name = sup.BusinessName
	}
	return name, nil
}
