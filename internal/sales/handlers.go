package sales

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes sales, purchase and finance endpoints.
type Handler struct {
	service *Service
	now     func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

type statusRequest struct {
	Status Status `json:"status"`
}

// List handles GET /api/v1/sales?status=&from=&to=&q=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{Status: Status(strings.ToLower(q.Get("status"))), Term: q.Get("q")}
	var err error
	if f.From, err = parseDay(q.Get("from")); err != nil {
		common.WriteError(w, common.BadRequest("invalid from date", map[string]string{"from": "datetime"}))
		return
	}
	if f.To, err = parseDay(q.Get("to")); err != nil {
		common.WriteError(w, common.BadRequest("invalid to date", map[string]string{"to": "datetime"}))
		return
	}
	if !f.To.IsZero() {
		f.To = f.To.AddDate(0, 0, 1)
	}
	rows, err := h.service.List(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Get handles GET /api/v1/sales/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, sale)
}

// SetStatus handles PATCH /api/v1/sales/{id}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	sale, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, sale)
}

// Purchases handles GET /api/v1/purchases.
func (h *Handler) Purchases(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Purchases(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// CreatePurchase handles POST /api/v1/purchases.
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var in PurchaseInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.service.CreatePurchase(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, p)
}

// Summary handles GET /api/v1/finance/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, sum)
}

// Daily handles GET /api/v1/finance/daily?date=YYYY-MM-DD (default today).
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		common.WriteError(w, common.BadRequest("invalid date", map[string]string{"date": "datetime"}))
		return
	}
	if day.IsZero() {
		day = h.now()
	}
	totals, err := h.service.Daily(r.Context(), day)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, totals)
}

func parseDay(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, v)
}
