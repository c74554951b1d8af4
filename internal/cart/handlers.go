package cart

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes the POS cart over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// respond renders the cart view together with whether the request changed it.
func (h *Handler) respond(w http.ResponseWriter, status int, applied bool) {
	common.Data(w, status, h.service.View(), "applied": applied)
}

// Get handles GET /api/v1/pos/cart.
func (h *Handler) Get(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, h.service.View())
}

type addItemRequest struct {
	Code string `json:"code"`
}

// AddItem handles POST /api/v1/pos/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	_, ok, err := h.service.AddByCode(r.Context(), req.Code)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if ok {
		status = http.StatusCreated
	}
	h.respond(w, status, ok)
}

type updateItemRequest struct {
	Quantity        any `json:"quantity"`
	UnitValue       any `json:"unitValue"`
	UnitPrice       any `json:"unitPrice"`
	DiscountPercent any `json:"discountPercent"`
}

// UpdateItem handles PATCH /api/v1/pos/cart/items/{lineId}. Exactly one field
// is applied; numeric strings are accepted and invalid numbers are coerced by
// the pricing rules.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	set := 0
	for _, v := range []any{req.Quantity, req.UnitValue, req.UnitPrice, req.DiscountPercent} {
		if v != nil {
			set++
		}
	}
	if set != 1 {
		common.WriteError(w, common.BadRequest("exactly one of quantity, unitValue, unitPrice or discountPercent is required", nil))
		return
	}
	lineID := chi.URLParam(r, "lineId")
	var ok bool
	switch {
	case req.Quantity != nil:
		_, ok = h.service.UpdateQuantity(lineID, common.LooseInt(req.Quantity))
	case req.UnitValue != nil:
		_, ok = h.service.UpdateUnitValue(lineID, common.LooseFloat(req.UnitValue))
	case req.UnitPrice != nil:
		_, ok = h.service.UpdateUnitPrice(lineID, common.LooseFloat(req.UnitPrice))
	default:
		_, ok = h.service.UpdateDiscountPercent(lineID, common.LooseFloat(req.DiscountPercent))
	}
	h.respond(w, http.StatusOK, ok)
}

// RemoveItem handles DELETE /api/v1/pos/cart/items/{lineId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	_, ok := h.service.RemoveLine(r.Context(), chi.URLParam(r, "lineId"))
	h.respond(w, http.StatusOK, ok)
}

type discountRequest struct {
	Amount any `json:"amount"`
}

// SetDiscount handles PUT /api/v1/pos/cart/discount.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	h.service.SetGlobalDiscount(common.LooseFloat(req.Amount))
	h.respond(w, http.StatusOK, true)
}

type clientRequest struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Address  string `json:"address"`
}

// SetClient handles PUT /api/v1/pos/cart/client. A clientId selects a
// registered client; otherwise the typed fields are used as-is.
func (h *Handler) SetClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.ClientID != "" {
		if _, err := h.service.SelectClient(r.Context(), req.ClientID); err != nil {
			common.WriteError(w, err)
			return
		}
	} else {
		h.service.SetClient(Client{Name: req.Name, Document: req.Document, Address: req.Address})
	}
	h.respond(w, http.StatusOK, true)
}

type documentRequest struct {
	Type          string `json:"type"`
	Currency      string `json:"currency"`
	Operation     string `json:"operation"`
	PaymentMethod string `json:"paymentMethod"`
	ExchangeRate  any    `json:"exchangeRate"`
	IssueDate     string `json:"issueDate"`
	DueDate       string `json:"dueDate"`
}

// SetDocument handles PUT /api/v1/pos/cart/document.
func (h *Handler) SetDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	doc := Document{
		Type:          req.Type,
		Currency:      req.Currency,
		Operation:     req.Operation,
		PaymentMethod: req.PaymentMethod,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
	}
	if req.ExchangeRate != nil {
		rate := common.LooseFloat(req.ExchangeRate)
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			common.WriteError(w, common.BadRequest("exchangeRate must be a positive number", map[string]string{"exchangeRate": "gt"}))
			return
		}
		doc.ExchangeRate = decimal.NewFromFloat(rate)
	}
	if err := h.service.SetDocument(doc); err != nil {
		common.WriteError(w, err)
		return
	}
	h.respond(w, http.StatusOK, true)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// SetNotes handles PUT /api/v1/pos/cart/notes.
func (h *Handler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	h.service.SetNotes(req.Notes)
	h.respond(w, http.StatusOK, true)
}

// Reset handles POST /api/v1/pos/cart/reset.
func (h *Handler) Reset(w http.ResponseWriter, _ *http.Request) {
	h.service.Reset()
	h.respond(w, http.StatusOK, true)
}

// Commit handles POST /api/v1/pos/cart/commit.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.Commit(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, sale, "cart": h.service.View())
}

// SearchProducts handles GET /api/v1/pos/products?q=.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// SearchClients handles GET /api/v1/pos/clients?q=&type=.
func (h *Handler) SearchClients(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.SearchClients(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("type"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}
