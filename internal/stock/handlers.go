package stock

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes stock endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type reassignRequest struct {
	WarehouseIDs []string       `json:"warehouseIds"`
	Quantities   map[string]any `json:"quantities"`
}

type quantityRequest struct {
	Quantity any `json:"quantity"`
}

// Warehouse handles GET /api/v1/warehouses/{id}/stock?q=.
func (h *Handler) Warehouse(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ForWarehouse(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("q"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// Product handles GET /api/v1/products/{id}/stock.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ForProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// Reassign handles PUT /api/v1/products/{id}/stock.
func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req reassignRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	qty := make(map[string]int, len(req.Quantities))
	for id, v := range req.Quantities {
		qty[id] = common.LooseInt(v)
	}
	view, err := h.service.Reassign(r.Context(), chi.URLParam(r, "id"), req.WarehouseIDs, qty)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// Toggle handles POST /api/v1/products/{id}/stock/{warehouseId}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "warehouseId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// SetQuantity handles PUT /api/v1/products/{id}/stock/{warehouseId}.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	view, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "warehouseId"), common.LooseInt(req.Quantity))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}
