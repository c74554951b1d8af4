// Package demo loads the reference catalog, stock, documents, clients and
// suppliers into persistent stores.
package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/clients"
	"github.com/noah-isme/backend-pos/internal/sales"
	"github.com/noah-isme/backend-pos/internal/stock"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

// CatalogWriter upserts catalog rows keeping their IDs.
type CatalogWriter interface {
	SaveWarehouse(ctx context.Context, w catalog.Warehouse) error
	UpsertProduct(ctx context.Context, p catalog.Product) error
}

// StockWriter replaces a product's allocation rows.
type StockWriter interface {
	Replace(ctx context.Context, productID string, rows []stock.Allocation) error
}

// DocumentWriter appends sales and purchases.
type DocumentWriter interface {
	Append(ctx context.Context, s sales.Sale) (sales.Sale, error)
	AppendPurchase(ctx context.Context, p sales.Purchase) (sales.Purchase, error)
}

// ClientWriter upserts clients keeping their IDs.
type ClientWriter interface {
	Upsert(ctx context.Context, c clients.Client) error
}

// SupplierWriter upserts suppliers keeping their IDs.
type SupplierWriter interface {
	Upsert(ctx context.Context, s suppliers.Supplier) error
}

// Targets lists the stores to seed. Nil targets are skipped.
type Targets struct {
	Catalog   CatalogWriter
	Stock     StockWriter
	Documents DocumentWriter
	Clients   ClientWriter
	Suppliers SupplierWriter
	Logger    zerolog.Logger
}

// Result counts the rows written per kind.
type Result struct {
	Warehouses  int `json:"warehouses"`
	Products    int `json:"products"`
	Allocations int `json:"allocations"`
	Sales       int `json:"sales"`
	Purchases   int `json:"purchases"`
	Clients     int `json:"clients"`
	Suppliers   int `json:"suppliers"`
}

// Seed writes the demo data set. It is idempotent: rows are upserted and
// sales whose number already exists are left alone.
func Seed(ctx context.Context, t Targets) (Result, error) {
	var res Result
	if t.Catalog != nil {
		for _, w := range catalog.DemoWarehouses() {
			if err := t.Catalog.SaveWarehouse(ctx, w); err != nil {
				return res, fmt.Errorf("seed warehouse %s: %w", w.Code, err)
			}
			res.Warehouses++
		}
		for _, p := range catalog.DemoProducts() {
			if err := t.Catalog.UpsertProduct(ctx, p); err != nil {
				return res, fmt.Errorf("seed product %s: %w", p.Code, err)
			}
			res.Products++
		}
	}
	if t.Stock != nil {
		for _, group := range byProduct(stock.DemoAllocations()) {
			if err := t.Stock.Replace(ctx, group[0].ProductID, group); err != nil {
				return res, fmt.Errorf("seed stock %s: %w", group[0].ProductID, err)
			}
			res.Allocations += len(group)
		}
	}
	if t.Suppliers != nil {
		for _, sp := range suppliers.DemoSuppliers() {
			if err := t.Suppliers.Upsert(ctx, sp); err != nil {
				return res, fmt.Errorf("seed supplier %s: %w", sp.ID, err)
			}
			res.Suppliers++
		}
	}
	if t.Documents != nil {
		for _, s := range sales.DemoSales() {
			_, err := t.Documents.Append(ctx, s)
			switch {
			case errors.Is(err, sales.ErrDuplicateNumber):
				continue
			case err != nil:
				return res, fmt.Errorf("seed sale %s: %w", s.DocumentNumber(), err)
			}
			res.Sales++
		}
		for _, p := range sales.DemoPurchases() {
			if _, err := t.Documents.AppendPurchase(ctx, p); err != nil {
				return res, fmt.Errorf("seed purchase %s: %w", p.ID, err)
			}
			res.Purchases++
		}
	}
	if t.Clients != nil {
		for _, c := range clients.DemoClients() {
			if err := t.Clients.Upsert(ctx, c); err != nil {
				return res, fmt.Errorf("seed client %s: %w", c.ID, err)
			}
			res.Clients++
		}
	}
	t.Logger.Info().
		Int("warehouses", res.Warehouses).
		Int("products", res.Products).
		Int("allocations", res.Allocations).
		Int("sales", res.Sales).
		Int("purchases", res.Purchases).
		Int("clients", res.Clients).
		Int("suppliers", res.Suppliers).
		Msg("demo data seeded")
	return res, nil
}

// byProduct groups rows per product keeping first-seen order.
func byProduct(rows []stock.Allocation) [][]stock.Allocation {
	index := map[string]int{}
	var out [][]stock.Allocation
	for _, r := range rows {
		i, ok := index[r.ProductID]
		if !ok {
			i = len(out)
			index[r.ProductID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	return out
}
