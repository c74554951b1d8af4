package demo

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/clients"
	"github.com/noah-isme/backend-pos/internal/sales"
	"github.com/noah-isme/backend-pos/internal/stock"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

type catalogRecorder struct {
	warehouses map[string]catalog.Warehouse
	products   map[string]catalog.Product
}

func (c *catalogRecorder) SaveWarehouse(_ context.Context, w catalog.Warehouse) error {
	c.warehouses[w.ID] = w
	return nil
}

func (c *catalogRecorder) UpsertProduct(_ context.Context, p catalog.Product) error {
	c.products[p.ID] = p
	return nil
}

type clientRecorder map[string]clients.Client

func (c clientRecorder) Upsert(_ context.Context, cl clients.Client) error {
	c[cl.ID] = cl
	return nil
}

type supplierRecorder map[string]suppliers.Supplier

func (r supplierRecorder) Upsert(_ context.Context, s suppliers.Supplier) error {
	r[s.ID] = s
	return nil
}

type failingStock struct{}

func (failingStock) Replace(context.Context, string, []stock.Allocation) error {
	return errors.New("disk full")
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cat := &catalogRecorder{warehouses: map[string]catalog.Warehouse{}, products: map[string]catalog.Product{}}
	stockStore := stock.NewMemoryStore(nil)
	docs := sales.NewMemoryStore(nil, nil)
	cls := clientRecorder{}
	sups := supplierRecorder{}
	targets := Targets{Catalog: cat, Stock: stockStore, Documents: docs, Clients: cls, Suppliers: sups, Logger: zerolog.Nop()}

	res, err := Seed(ctx, targets)
	require.NoError(t, err)
	require.Equal(t, 3, res.Warehouses)
	require.Equal(t, len(catalog.DemoProducts()), res.Products)
	require.Equal(t, len(stock.DemoAllocations()), res.Allocations)
	require.Equal(t, 2, res.Sales)
	require.Equal(t, 4, res.Clients)
	require.Equal(t, len(suppliers.DemoSuppliers()), res.Suppliers)

	again, err := Seed(ctx, targets)
	require.NoError(t, err)
	require.Zero(t, again.Sales, "existing numbers are skipped")

	stored, err := docs.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Len(t, cat.products, len(catalog.DemoProducts()))
	require.Len(t, cls, 4)
	require.Len(t, sups, len(suppliers.DemoSuppliers()))
	require.Equal(t, "Distribuidora ABC S.A.C.", sups["1"].BusinessName)

	rows, err := stockStore.ByWarehouse(ctx, "alm1")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
}

func TestSeedStopsOnError(t *testing.T) {
	_, err := Seed(context.Background(), Targets{Stock: failingStock{}, Logger: zerolog.Nop()})
	require.ErrorContains(t, err, "disk full")
}

func TestByProductKeepsOrder(t *testing.T) {
	groups := byProduct([]stock.Allocation{
		{ProductID: "2", WarehouseID: "alm1"},
		{ProductID: "1", WarehouseID: "alm1"},
		{ProductID: "2", WarehouseID: "alm2"},
	})
	require.Len(t, groups, 2)
	require.Equal(t, "2", groups[0][0].ProductID)
	require.Len(t, groups[0], 2)
	require.Equal(t, "alm2", groups[0][1].WarehouseID)
}
