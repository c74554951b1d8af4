package stock_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/stock"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _, _ := newService(t)
	h := stock.NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/api/v1/warehouses/{id}/stock", h.Warehouse)
	r.Get("/api/v1/products/{id}/stock", h.Product)
	r.Put("/api/v1/products/{id}/stock", h.Reassign)
	r.Post("/api/v1/products/{id}/stock/{warehouseId}/toggle", h.Toggle)
	r.Put("/api/v1/products/{id}/stock/{warehouseId}", h.SetQuantity)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStockHandlers(t *testing.T) {
	r := newRouter(t)

	rec := do(r, http.MethodGet, "/api/v1/warehouses/alm2/stock?q=p02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var wh struct {
		Data stock.WarehouseStock `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wh))
	require.Equal(t, 6, wh.Data.ProductCount)

	rec = do(r, http.MethodPut, "/api/v1/products/5/stock", `{"warehouseIds":["alm1","alm2"],"quantities":{"alm1":"12","alm2":3.9}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ps struct {
		Data stock.ProductStock `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
	require.Equal(t, 15, ps.Data.Total)

	rec = do(r, http.MethodGet, "/api/v1/products/5/stock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
	require.Len(t, ps.Data.Warehouses, 2)

	rec = do(r, http.MethodPost, "/api/v1/products/5/stock/alm3/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
	require.Len(t, ps.Data.Warehouses, 3)

	rec = do(r, http.MethodPut, "/api/v1/products/5/stock/alm3", `{"quantity":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
	require.Equal(t, 15, ps.Data.Total)

	rec = do(r, http.MethodPut, "/api/v1/products/5/stock", `{"warehouseIds":["x"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/warehouses/zzz/stock", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
