package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/stock"
)

func TestPlanCollapsesDuplicatesAndClamps(t *testing.T) {
	rows := stock.Plan("1", []string{"alm2", "alm1", "alm2", " ", "alm3"}, map[string]int{"alm1": 4, "alm2": -3})
	require.Equal(t, []stock.Allocation{
		{ProductID: "1", WarehouseID: "alm2", Quantity: 0},
		{ProductID: "1", WarehouseID: "alm1", Quantity: 4},
		{ProductID: "1", WarehouseID: "alm3", Quantity: 0},
	}, rows)
	require.Equal(t, 4, stock.Total(rows))
}

func TestPlanEmptySelectionClearsProduct(t *testing.T) {
	require.Empty(t, stock.Plan("1", nil, map[string]int{"alm1": 9}))
}

func TestMemoryStoreReplaceIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := stock.NewMemoryStore(stock.DemoAllocations())

	before, err := store.ByWarehouse(ctx, "alm3")
	require.NoError(t, err)

	require.NoError(t, store.Replace(ctx, "1", stock.Plan("1", []string{"alm2"}, map[string]int{"alm2": 7})))

	rows, err := store.ByProduct(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, []stock.Allocation{{ProductID: "1", WarehouseID: "alm2", Quantity: 7}}, rows)

	after, err := store.ByWarehouse(ctx, "alm3")
	require.NoError(t, err)
	require.Len(t, after, len(before)-1)

	other, err := store.ByProduct(ctx, "2")
	require.NoError(t, err)
	require.Len(t, other, 2)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := stock.NewMemoryStore([]stock.Allocation{{ProductID: "3", WarehouseID: "alm1", Quantity: 2, Serials: []string{"S001"}}})
	rows, err := store.ByProduct(ctx, "3")
	require.NoError(t, err)
	rows[0].Serials[0] = "changed"
	rows[0].Quantity = 99

	again, err := store.ByProduct(ctx, "3")
	require.NoError(t, err)
	require.Equal(t, "S001", again[0].Serials[0])
	require.Equal(t, 2, again[0].Quantity)
}
