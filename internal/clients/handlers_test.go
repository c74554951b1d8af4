package clients_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/clients"
)

type listResponse struct {
	Data []clients.Client `json:"data"`
}

type clientResponse struct {
	Data clients.Client `json:"data"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	h := clients.NewHandler(newDirectory(t))
	r := chi.NewRouter()
	r.Get("/api/v1/clients", h.List)
	r.Get("/api/v1/clients/search", h.Search)
	r.Post("/api/v1/clients", h.Create)
	r.Get("/api/v1/clients/{id}", h.Get)
	r.Put("/api/v1/clients/{id}", h.Update)
	r.Delete("/api/v1/clients/{id}", h.Delete)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestClientHandlers(t *testing.T) {
	r := newRouter(t)

	rec := serve(r, http.MethodGet, "/api/v1/clients/search?q=juan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, "1", list.Data[0].ID)

	rec = serve(r, http.MethodGet, "/api/v1/clients?type=dni", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)

	rec = serve(r, http.MethodPost, "/api/v1/clients", `{"documentType":"DNI","documentNumber":"44556677","name":"Rosa Díaz"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created clientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "DNI: 44556677", created.Data.DocumentLabel())

	rec = serve(r, http.MethodPut, "/api/v1/clients/"+created.Data.ID, `{"documentType":"DNI","documentNumber":"44556677","name":"Rosa Díaz","status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodGet, "/api/v1/clients/"+created.Data.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got clientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, clients.StatusInactive, got.Data.Status)

	rec = serve(r, http.MethodPost, "/api/v1/clients", `{"documentType":"DNI","documentNumber":"123","name":"X"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodDelete, "/api/v1/clients/"+created.Data.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(r, http.MethodGet, "/api/v1/clients/"+created.Data.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
