package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// Catalog resolves the product and warehouse attributes joined onto allocations.
type Catalog interface {
	List(ctx context.Context, term string) ([]catalog.Product, error)
	ByID(ctx context.Context, id string) (catalog.Product, error)
	Warehouses(ctx context.Context) ([]catalog.Warehouse, error)
}

// WarehouseItem is one product row in a warehouse listing.
type WarehouseItem struct {
	ProductID string          `json:"productId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Serials   []string        `json:"serials,omitempty"`
}

// WarehouseStock is the warehouse browser view. Counts cover the filtered items.
type WarehouseStock struct {
	Warehouse    catalog.Warehouse `json:"warehouse"`
	Items        []WarehouseItem   `json:"items"`
	ProductCount int               `json:"productCount"`
	TotalStock   int               `json:"totalStock"`
}

// ProductWarehouse is one warehouse row of a product's stock.
type ProductWarehouse struct {
	Warehouse catalog.Warehouse `json:"warehouse"`
	Quantity  int               `json:"quantity"`
	Serials   []string          `json:"serials,omitempty"`
}

// ProductStock is a product's stock across warehouses.
type ProductStock struct {
	ProductID      string             `json:"productId"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Warehouses     []ProductWarehouse `json:"warehouses"`
	Total          int                `json:"total"`
	SerialMismatch bool               `json:"serialMismatch"`
}

// Service answers stock queries and applies reassignments.
type Service struct {
	store   Store
	catalog Catalog
	events  *events.Bus
	logger  zerolog.Logger

	// mu serialises read-modify-write reassignments.
	mu sync.Mutex
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store   Store
	Catalog Catalog
	Events  *events.Bus
	Logger  zerolog.Logger
}

// NewService constructs a stock service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("stock: store is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("stock: catalog is required")
	}
	return &Service{store: cfg.Store, catalog: cfg.Catalog, events: cfg.Events, logger: cfg.Logger}, nil
}

// ForWarehouse lists the products held in warehouseID whose name or code
// contains term. Rows for products missing from the catalog are dropped.
func (s *Service) ForWarehouse(ctx context.Context, warehouseID, term string) (WarehouseStock, error) {
	wh, err := s.warehouse(ctx, warehouseID)
	if err != nil {
		return WarehouseStock{}, err
	}
	rows, err := s.store.ByWarehouse(ctx, warehouseID)
	if err != nil {
		return WarehouseStock{}, fmt.Errorf("stock: %w", err)
	}
	products, err := s.catalog.List(ctx, "")
	if err != nil {
		return WarehouseStock{}, err
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	view := WarehouseStock{Warehouse: wh, Items: []WarehouseItem{}}
	for _, r := range rows {
		p, ok := byID[r.ProductID]
		if !ok || !p.Matches(term) {
			continue
		}
		view.Items = append(view.Items, WarehouseItem{
			ProductID: p.ID,
			Code:      p.Code,
			Name:      p.Name,
			Unit:      p.Unit,
			Price:     p.SalePrice(),
			Quantity:  r.Quantity,
			Serials:   r.Serials,
		})
		view.TotalStock += r.Quantity
	}
	view.ProductCount = len(view.Items)
	return view, nil
}

// ForProduct lists the warehouses holding productID. Rows for unknown
// warehouses are dropped.
func (s *Service) ForProduct(ctx context.Context, productID string) (ProductStock, error) {
	p, err := s.catalog.ByID(ctx, productID)
	if err != nil {
		return ProductStock{}, err
	}
	rows, err := s.store.ByProduct(ctx, productID)
	if err != nil {
		return ProductStock{}, fmt.Errorf("stock: %w", err)
	}
	return s.productView(ctx, p, rows)
}

// TotalForProduct returns the product's stock over all warehouses and whether
// its serial list disagrees with that total.
func (s *Service) TotalForProduct(ctx context.Context, productID string) (int, bool, error) {
	view, err := s.ForProduct(ctx, productID)
	if err != nil {
		return 0, false, err
	}
	return view.Total, view.SerialMismatch, nil
}

// Reassign replaces every allocation of productID with one row per distinct
// warehouse in warehouseIDs, quantity qty[id] or 0. Unknown warehouses are
// rejected before anything is written.
func (s *Service) Reassign(ctx context.Context, productID string, warehouseIDs []string, qty map[string]int) (ProductStock, error) {
	return s.mutate(ctx, productID, func() (ProductStock, error) {
		return s.reassign(ctx, productID, Plan(productID, warehouseIDs, qty))
	})
}

// Toggle adds warehouseID to the product's allocations with quantity 0, or
// removes it when already present.
func (s *Service) Toggle(ctx context.Context, productID, warehouseID string) (ProductStock, error) {
	return s.mutate(ctx, productID, func() (ProductStock, error) {
		return s.toggle(ctx, productID, warehouseID)
	})
}

func (s *Service) toggle(ctx context.Context, productID, warehouseID string) (ProductStock, error) {
	rows, err := s.store.ByProduct(ctx, productID)
	if err != nil {
		return ProductStock{}, fmt.Errorf("stock: %w", err)
	}
	next := make([]Allocation, 0, len(rows)+1)
	removed := false
	for _, r := range rows {
		if r.WarehouseID == warehouseID {
			removed = true
			continue
		}
		next = append(next, r)
	}
	if !removed {
		next = append(next, Allocation{ProductID: productID, WarehouseID: warehouseID})
	}
	return s.reassign(ctx, productID, next)
}

// SetQuantity sets the quantity held in warehouseID, adding the warehouse when
// the product is not yet allocated there.
func (s *Service) SetQuantity(ctx context.Context, productID, warehouseID string, quantity int) (ProductStock, error) {
	return s.mutate(ctx, productID, func() (ProductStock, error) {
		return s.setQuantity(ctx, productID, warehouseID, quantity)
	})
}

func (s *Service) setQuantity(ctx context.Context, productID, warehouseID string, quantity int) (ProductStock, error) {
	rows, err := s.store.ByProduct(ctx, productID)
	if err != nil {
		return ProductStock{}, fmt.Errorf("stock: %w", err)
	}
	quantity = max(quantity, 0)
	found := false
	for i := range rows {
		if rows[i].WarehouseID == warehouseID {
			rows[i].Quantity = quantity
			found = true
		}
	}
	if !found {
		rows = append(rows, Allocation{ProductID: productID, WarehouseID: warehouseID, Quantity: quantity})
	}
	return s.reassign(ctx, productID, rows)
}

// mutate runs fn under the write lock and publishes stock.reassigned once the
// lock is released.
func (s *Service) mutate(ctx context.Context, productID string, fn func() (ProductStock, error)) (ProductStock, error) {
	s.mu.Lock()
	view, err := fn()
	s.mu.Unlock()
	if err != nil {
		return ProductStock{}, err
	}
	if _, err := s.events.Emit(ctx, events.TopicStockReassigned, productID, view); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("emit stock event")
	}
	return view, nil
}

func (s *Service) reassign(ctx context.Context, productID string, rows []Allocation) (ProductStock, error) {
	p, err := s.catalog.ByID(ctx, productID)
	if err != nil {
		return ProductStock{}, err
	}
	known, err := s.warehouseIndex(ctx)
	if err != nil {
		return ProductStock{}, err
	}
	var unknown []string
	for _, r := range rows {
		if _, ok := known[r.WarehouseID]; !ok {
			unknown = append(unknown, r.WarehouseID)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return ProductStock{}, common.BadRequest("unknown warehouse", map[string]any{"warehouseIds": unknown})
	}
	if err := s.store.Replace(ctx, productID, rows); err != nil {
		countReassign("error")
		return ProductStock{}, fmt.Errorf("stock: reassign %s: %w", productID, err)
	}
	countReassign("ok")
	view, err := s.productView(ctx, p, rows)
	if err != nil {
		return ProductStock{}, err
	}
	if view.SerialMismatch {
		s.logger.Warn().Str("product_id", productID).Int("stock", view.Total).Int("serials", len(p.Serials)).
			Msg("serial count does not match stock")
	}
	return view, nil
}

func (s *Service) productView(ctx context.Context, p catalog.Product, rows []Allocation) (ProductStock, error) {
	known, err := s.warehouseIndex(ctx)
	if err != nil {
		return ProductStock{}, err
	}
	view := ProductStock{ProductID: p.ID, Code: p.Code, Name: p.Name, Warehouses: []ProductWarehouse{}}
	for _, r := range rows {
		wh, ok := known[r.WarehouseID]
		if !ok {
			continue
		}
		view.Warehouses = append(view.Warehouses, ProductWarehouse{Warehouse: wh, Quantity: r.Quantity, Serials: r.Serials})
		view.Total += r.Quantity
	}
	view.SerialMismatch = catalog.SerialMismatch(p, view.Total)
	return view, nil
}

func (s *Service) warehouse(ctx context.Context, id string) (catalog.Warehouse, error) {
	known, err := s.warehouseIndex(ctx)
	if err != nil {
		return catalog.Warehouse{}, err
	}
	wh, ok := known[id]
	if !ok {
		return catalog.Warehouse{}, common.NotFound("warehouse not found", catalog.ErrNotFound)
	}
	return wh, nil
}

func (s *Service) warehouseIndex(ctx context.Context) (map[string]catalog.Warehouse, error) {
	rows, err := s.catalog.Warehouses(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]catalog.Warehouse, len(rows))
	for _, w := range rows {
		out[w.ID] = w
	}
	return out, nil
}

func countReassign(result string) {
	if obs.StockReassignTotal != nil {
		obs.StockReassignTotal.WithLabelValues(result).Inc()
	}
}
