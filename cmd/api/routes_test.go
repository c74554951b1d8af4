package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/health"
	"github.com/noah-isme/backend-pos/internal/sales"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		TaxMode:         "inclusive",
		DocumentSeries:  "F001",
		DocumentStart:   1,
		Currency:        "PEN",
		CatalogCacheTTL: time.Minute,
		RateLimit:       "100-M",
		NotifyTTL:       5 * time.Second,
		SeedDemo:        true,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := zerolog.Nop()
	bus := &events.Bus{Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}}}
	a, err := wire(context.Background(), cfg, memoryStores(cfg.SeedDemo), &infra{}, bus, nil, logger)
	require.NoError(t, err)
	return newRouter(a, routerOptions{Logger: logger, MaxBody: 1 << 20, Health: health.Handler{Checker: &infra{}}})
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterServesCatalog(t *testing.T) {
	h := newTestServer(t, testConfig())

	rec := do(h, http.MethodGet, "/api/v1/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list.Data)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(h, http.MethodGet, "/api/v1/warehouses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/finance/daily", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/admin/queues/events", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(h, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCommitsCart(t *testing.T) {
	h := newTestServer(t, testConfig())

	rec := do(h, http.MethodPost, "/api/v1/pos/cart/items", `{"code":"P001"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(h, http.MethodPut, "/api/v1/pos/cart/client", `{"clientId":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/pos/cart/commit", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var committed struct {
		Data sales.Sale `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &committed))
	// The demo history already holds F001-000001.
	require.Equal(t, "F001-000002", committed.Data.DocumentNumber())

	rec = do(h, http.MethodGet, "/api/v1/sales/"+committed.Data.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "F001-000002")
}

func TestRouterLinksPurchasesToSuppliers(t *testing.T) {
	h := newTestServer(t, testConfig())

	rec := do(h, http.MethodGet, "/api/v1/suppliers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 3)

	items := `"items":[{"productCode":"P001","productName":"Teclado","quantity":2,"unitPrice":"10.00"}]`
	rec = do(h, http.MethodPost, "/api/v1/purchases", `{"series":"F020","number":"1","supplierId":"1",`+items+`}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data sales.Purchase `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "1", created.Data.SupplierID)
	require.Equal(t, "Distribuidora ABC S.A.C.", created.Data.SupplierName)

	rec = do(h, http.MethodPost, "/api/v1/purchases", `{"series":"F020","number":"2","supplierId":"404",`+items+`}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "supplierId")

	rec = do(h, http.MethodDelete, "/api/v1/suppliers/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(h, http.MethodGet, "/api/v1/suppliers/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRateLimitsWrites(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = "2-M"
	h := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodPut, "/api/v1/pos/cart/notes", `{"notes":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(h, http.MethodPut, "/api/v1/pos/cart/notes", `{"notes":"x"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = do(h, http.MethodGet, "/api/v1/pos/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectPprofRequiresCredentials(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := protectPprof(inner, "ops", "secret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Equal(t, []string{"*"}, allowedOrigins(nil))
}
