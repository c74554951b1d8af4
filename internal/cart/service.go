package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/clients"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/notify"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/sales"
)

var (
	// ErrEmptyCart is returned by Commit when the cart has no lines.
	ErrEmptyCart = errors.New("cart: no lines")
	// ErrClientRequired is returned by Commit when no client name is set.
	ErrClientRequired = errors.New("cart: client required")
	// ErrInvalidDocument is returned when a document header is rejected.
	ErrInvalidDocument = errors.New("cart: invalid document")
)

// Catalog resolves products for the cart.
type Catalog interface {
	ByCode(ctx context.Context, code string) (catalog.Product, error)
	List(ctx context.Context, term string) ([]catalog.Product, error)
}

// Directory resolves clients for the cart.
type Directory interface {
	Get(ctx context.Context, id string) (clients.Client, error)
	Search(ctx context.Context, term, docType string) ([]clients.Client, error)
}

// Service owns the POS cart and the running document number.
type Service struct {
	mu       sync.Mutex
	cart     *Cart
	catalog  Catalog
	clients  Directory
	sales    sales.Repository
	events   *events.Bus
	notifier notify.Sink
	logger   zerolog.Logger
	now      func() time.Time
	series   string
	number   int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog     Catalog
	Clients     Directory
	Sales       sales.Repository
	Events      *events.Bus
	Notifier    notify.Sink
	Engine      pricing.Engine
	Series      string
	StartNumber int
	Currency    string
	Logger      zerolog.Logger
	Now         func() time.Time
}

// NewService constructs the cart service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("cart: catalog is required")
	}
	if cfg.Sales == nil {
		return nil, errors.New("cart: sales repository is required")
	}
	series := strings.ToUpper(strings.TrimSpace(cfg.Series))
	if series == "" {
		series = "F001"
	}
	start := cfg.StartNumber
	if start <= 0 {
		start = 1
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cart:     New(cfg.Engine, DefaultDocument(cfg.Currency)),
		catalog:  cfg.Catalog,
		clients:  cfg.Clients,
		sales:    cfg.Sales,
		events:   cfg.Events,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		now:      now,
		series:   series,
		number:   start,
	}, nil
}

// Sync moves the document counter past the highest number already stored for
// the series, so a restart never reissues a number.
func (s *Service) Sync(ctx context.Context) error {
	rows, err := s.sales.List(ctx)
	if err != nil {
		return fmt.Errorf("cart: sync numbering: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range rows {
		if sale.Series != s.series {
			continue
		}
		n, err := strconv.Atoi(sale.Number)
		if err != nil {
			continue
		}
		if n >= s.number {
			s.number = n + 1
		}
	}
	return nil
}

// View returns a snapshot of the cart.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Service) viewLocked() View {
	v := s.cart.view()
	v.Series = s.series
	v.Number = formatNumber(s.number)
	v.DocumentNumber = v.Series + "-" + v.Number
	return v
}

// AddByCode adds the product with the given internal code. Unknown codes are a
// no-op reported as false.
func (s *Service) AddByCode(ctx context.Context, code string) (Line, bool, error) {
	p, err := s.catalog.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Line{}, false, nil
		}
		return Line{}, false, err
	}
	l, ok := s.AddProduct(ctx, &p)
	return l, ok, nil
}

// AddProduct appends a line for p. A nil product is a no-op.
func (s *Service) AddProduct(ctx context.Context, p *catalog.Product) (Line, bool) {
	s.mu.Lock()
	l, ok := s.cart.AddProduct(p)
	s.observeLocked()
	s.mu.Unlock()
	if ok {
		notify.Send(ctx, s.notifier, notify.SeveritySuccess, "Producto agregado", "Se agregó "+l.Name)
	}
	return l, ok
}

// UpdateQuantity edits a line quantity.
func (s *Service) UpdateQuantity(lineID string, qty int) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(lineID, qty)
}

// UpdateDiscountPercent edits a line discount.
func (s *Service) UpdateDiscountPercent(lineID string, pct float64) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateDiscountPercent(lineID, pct)
}

// UpdateUnitValue edits a line unit value.
func (s *Service) UpdateUnitValue(lineID string, value float64) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateUnitValue(lineID, value)
}

// UpdateUnitPrice edits a line unit price.
func (s *Service) UpdateUnitPrice(lineID string, price float64) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateUnitPrice(lineID, price)
}

// RemoveLine drops a line.
func (s *Service) RemoveLine(ctx context.Context, lineID string) (Line, bool) {
	s.mu.Lock()
	l, ok := s.cart.RemoveLine(lineID)
	s.observeLocked()
	s.mu.Unlock()
	if ok {
		notify.Send(ctx, s.notifier, notify.SeverityInfo, "Producto eliminado", "Se eliminó "+l.Name)
	}
	return l, ok
}

// SetGlobalDiscount sets the cart-level discount and returns the stored amount.
func (s *Service) SetGlobalDiscount(amount float64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.SetGlobalDiscount(amount)
}

// SetClient attaches a walk-in client typed by the operator.
func (s *Service) SetClient(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetClient(c)
}

// SelectClient attaches a registered client.
func (s *Service) SelectClient(ctx context.Context, id string) (Client, error) {
	if s.clients == nil {
		return Client{}, common.NewAppError("CLIENTS_DISABLED", "client directory unavailable", http.StatusServiceUnavailable, nil)
	}
	found, err := s.clients.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	c := Client{ID: found.ID, Name: found.Name, Document: found.DocumentLabel(), Address: found.Address}
	s.SetClient(c)
	return c, nil
}

// SetDocument replaces the document header.
func (s *Service) SetDocument(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cart.SetDocument(doc) {
		return common.NewAppError("INVALID_DOCUMENT", "document type, currency, operation, payment method or dates are invalid", http.StatusBadRequest, ErrInvalidDocument)
	}
	return nil
}

// SetNotes stores document observations.
func (s *Service) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetNotes(notes)
}

// SearchProducts records the product search term and returns its matches.
func (s *Service) SearchProducts(ctx context.Context, term string) ([]catalog.Product, error) {
	s.mu.Lock()
	s.cart.productSearch = strings.TrimSpace(term)
	s.mu.Unlock()
	return s.catalog.List(ctx, term)
}

// SearchClients records the client search term and returns picker matches.
func (s *Service) SearchClients(ctx context.Context, term, docType string) ([]clients.Client, error) {
	if s.clients == nil {
		return []clients.Client{}, nil
	}
	s.mu.Lock()
	s.cart.clientSearch = strings.TrimSpace(term)
	s.mu.Unlock()
	return s.clients.Search(ctx, term, docType)
}

// Reset clears the cart without touching the document number.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Reset()
	s.observeLocked()
}

// Commit turns the cart into a pending sale. On success the cart is cleared
// and the document number advances by one; on any failure both are left as
// they were. The sale event is published after the cart is released so slow
// publishers never block other cart operations.
func (s *Service) Commit(ctx context.Context) (sales.Sale, error) {
	saved, err := s.commitLocked(ctx)
	if err != nil {
		return sales.Sale{}, err
	}

	if _, err := s.events.Emit(ctx, events.TopicSaleCommitted, saved.DocumentNumber(), saved); err != nil {
		s.logger.Warn().Err(err).Str("document", saved.DocumentNumber()).Msg("sale event emit failed")
	}
	if obs.SalesCommittedTotal != nil {
		obs.SalesCommittedTotal.WithLabelValues(saved.DocumentType, saved.Currency).Inc()
	}
	notify.Send(ctx, s.notifier, notify.SeveritySuccess, "Venta guardada", "Venta "+saved.DocumentNumber()+" guardada correctamente")
	s.logger.Info().Str("document", saved.DocumentNumber()).Str("total", saved.Total.StringFixed(2)).Msg("sale committed")
	return saved, nil
}

func (s *Service) commitLocked(ctx context.Context) (sales.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Len() == 0 {
		notify.Send(ctx, s.notifier, notify.SeverityWarning, "Venta incompleta", "Debe agregar al menos un ítem a la venta")
		return sales.Sale{}, common.NewAppError("EMPTY_CART", "cart has no lines", http.StatusUnprocessableEntity, ErrEmptyCart)
	}
	if s.cart.client.Name == "" {
		notify.Send(ctx, s.notifier, notify.SeverityWarning, "Venta incompleta", "Debe seleccionar o ingresar un cliente")
		return sales.Sale{}, common.NewAppError("CLIENT_REQUIRED", "a client is required", http.StatusUnprocessableEntity, ErrClientRequired)
	}

	sale := s.buildSaleLocked()
	saved, err := s.sales.Append(ctx, sale)
	if err != nil {
		s.logger.Error().Err(err).Str("document", sale.DocumentNumber()).Msg("sale commit failed")
		notify.Send(ctx, s.notifier, notify.SeverityError, "Error al guardar", "No se pudo guardar la venta "+sale.DocumentNumber())
		if errors.Is(err, sales.ErrDuplicateNumber) {
			return sales.Sale{}, common.NewAppError("DUPLICATE_NUMBER", "document number already used", http.StatusConflict, err)
		}
		return sales.Sale{}, fmt.Errorf("cart: commit: %w", err)
	}

	s.cart.Reset()
	s.number++
	s.observeLocked()
	return saved, nil
}

func (s *Service) buildSaleLocked() sales.Sale {
	totals := s.cart.Totals()
	lines := s.cart.Lines()
	items := make([]sales.Item, len(lines))
	for i, l := range lines {
		items[i] = sales.Item{
			ProductCode: l.ProductCode,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Total,
		}
	}
	return sales.Sale{
		ID:           uuid.NewString(),
		Series:       s.series,
		Number:       formatNumber(s.number),
		Date:         s.now().UTC(),
		ClientID:     s.cart.client.ID,
		ClientName:   s.cart.client.Name,
		DocumentType: s.cart.document.Type,
		Currency:     s.cart.document.Currency,
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discounts,
		Tax:          totals.Tax,
		Total:        totals.GrandTotal,
		Status:       sales.StatusPending,
		Notes:        s.cart.notes,
		Items:        items,
	}
}

func (s *Service) observeLocked() {
	if obs.CartLines != nil {
		obs.CartLines.Set(float64(s.cart.Len()))
	}
}

func formatNumber(n int) string {
	return fmt.Sprintf("%06d", n)
}
