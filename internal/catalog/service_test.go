package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
)

type captureNotifier struct {
	topics []string
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.topics = append(c.topics, event.Topic)
	return nil
}

func newService(t *testing.T) (*catalog.Service, *catalog.MemoryStore, *miniredis.Miniredis, *captureNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := catalog.NewMemoryStore(catalog.DemoProducts(), catalog.DemoWarehouses())
	notifier := &captureNotifier{}
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store:  store,
		Cache:  catalog.NewCache(client, time.Minute),
		Events: &events.Bus{Notifiers: []events.Notifier{notifier}},
	})
	require.NoError(t, err)
	return svc, store, mr, notifier
}

func TestListFiltersByNameOrCode(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 25)
	require.Equal(t, "P001", all[0].Code)

	mice, err := svc.List(ctx, "  MOUSE ")
	require.NoError(t, err)
	require.Len(t, mice, 2)
	require.Equal(t, "P002", mice[0].Code)
	require.Equal(t, "P015", mice[1].Code)

	byCode, err := svc.List(ctx, "p02")
	require.NoError(t, err)
	require.Len(t, byCode, 6)
}

func TestByCodeReadsThroughCache(t *testing.T) {
	svc, store, mr, _ := newService(t)
	ctx := context.Background()

	p, err := svc.ByCode(ctx, "p002")
	require.NoError(t, err)
	require.Equal(t, "Mouse Inalámbrico", p.Name)
	require.True(t, p.Price2.Equal(decimal.RequireFromString("82.60")))
	require.True(t, mr.Exists("catalog:product:code:P002"))

	require.NoError(t, store.Delete(ctx, p.ID))
	cached, err := svc.ByCode(ctx, "P002")
	require.NoError(t, err)
	require.Equal(t, p.ID, cached.ID)
}

func TestByCodeUnknownIsNotFound(t *testing.T) {
	svc, _, _, _ := newService(t)
	_, err := svc.ByCode(context.Background(), "NOPE")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestCreateDerivesMissingPriceAndEmits(t *testing.T) {
	svc, _, _, notifier := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, catalog.ProductInput{
		Code:    " P100 ",
		Name:    "Lámpara LED",
		Price1:  decimal.RequireFromString("100"),
		HasTax:  true,
		Serials: []string{"L1"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "P100", p.Code)
	require.Equal(t, catalog.DefaultUnit, p.Unit)
	require.True(t, p.Price2.Equal(decimal.RequireFromString("118")))
	require.Nil(t, p.Serials)
	require.Equal(t, []string{events.TopicProductSaved}, notifier.topics)

	untaxed, err := svc.Create(ctx, catalog.ProductInput{
		Code:   "P101",
		Name:   "Libro",
		Price2: decimal.RequireFromString("45.5"),
	})
	require.NoError(t, err)
	require.True(t, untaxed.Price1.Equal(decimal.RequireFromString("45.5")))
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	svc, _, _, notifier := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalog.ProductInput{Name: "Sin código"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	require.Equal(t, map[string]string{"code": "required"}, appErr.Details)

	_, err = svc.Create(ctx, catalog.ProductInput{Code: "P200", Name: "X", Price1: decimal.NewFromInt(-1)})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, map[string]string{"price1": "gte"}, appErr.Details)

	_, err = svc.Create(ctx, catalog.ProductInput{Code: "p001", Name: "Duplicado"})
	require.ErrorIs(t, err, catalog.ErrDuplicateCode)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	require.Empty(t, notifier.topics)
}

func TestUpdateInvalidatesOldAndNewCodes(t *testing.T) {
	svc, _, mr, notifier := newService(t)
	ctx := context.Background()

	_, err := svc.ByCode(ctx, "P003")
	require.NoError(t, err)
	require.True(t, mr.Exists("catalog:product:code:P003"))

	updated, err := svc.Update(ctx, "3", catalog.ProductInput{
		Code:          "P003-B",
		Name:          "Silla Ergonómica Pro",
		Price1:        decimal.RequireFromString("500"),
		Price2:        decimal.RequireFromString("590"),
		HasTax:        true,
		TracksSerials: true,
		Serials:       []string{"S001", " ", "S002"},
	})
	require.NoError(t, err)
	require.Equal(t, "3", updated.ID)
	require.Equal(t, []string{"S001", "S002"}, updated.Serials)
	require.False(t, mr.Exists("catalog:product:code:P003"))

	_, err = svc.ByCode(ctx, "P003")
	require.True(t, errors.Is(err, catalog.ErrNotFound))
	got, err := svc.ByCode(ctx, "p003-b")
	require.NoError(t, err)
	require.Equal(t, "Silla Ergonómica Pro", got.Name)
	require.Equal(t, []string{events.TopicProductSaved}, notifier.topics)

	_, err = svc.Update(ctx, "missing", catalog.ProductInput{Code: "X", Name: "X"})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteEmitsAndEvicts(t *testing.T) {
	svc, _, mr, notifier := newService(t)
	ctx := context.Background()

	_, err := svc.ByCode(ctx, "P005")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "5"))
	require.False(t, mr.Exists("catalog:product:code:P005"))
	require.Equal(t, []string{events.TopicProductDeleted}, notifier.topics)

	require.ErrorIs(t, svc.Delete(ctx, "5"), catalog.ErrNotFound)
}

func TestWarehousesCached(t *testing.T) {
	svc, _, mr, _ := newService(t)
	rows, err := svc.Warehouses(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "STAN 20", rows[0].Code)
	require.True(t, mr.Exists("catalog:warehouses"))
}

func TestServiceWorksWithoutCache(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store: catalog.NewMemoryStore(catalog.DemoProducts(), catalog.DemoWarehouses()),
	})
	require.NoError(t, err)
	p, err := svc.ByCode(context.Background(), "P001")
	require.NoError(t, err)
	require.Equal(t, "Teclado Mecánico", p.Name)

	_, err = catalog.NewService(catalog.ServiceConfig{})
	require.Error(t, err)
}

func TestSerialMismatch(t *testing.T) {
	products := catalog.DemoProducts()
	chair := products[2]
	require.True(t, chair.TracksSerials)
	require.False(t, catalog.SerialMismatch(chair, 5))
	require.True(t, catalog.SerialMismatch(chair, 4))
	require.False(t, catalog.SerialMismatch(products[0], 12))
}

func TestSalePrice(t *testing.T) {
	p := catalog.Product{Price1: decimal.RequireFromString("70"), Price2: decimal.RequireFromString("82.6"), HasTax: true}
	require.True(t, p.SalePrice().Equal(decimal.RequireFromString("82.6")))
	p.HasTax = false
	require.True(t, p.SalePrice().Equal(decimal.RequireFromString("70")))
}
