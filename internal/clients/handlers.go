package clients

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes client endpoints.
type Handler struct {
	directory *Directory
}

// NewHandler constructs a Handler.
func NewHandler(d *Directory) *Handler {
	return &Handler{directory: d}
}

// List handles GET /api/v1/clients?q=&field=&type=&status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.directory.List(r.Context(), Query{
		Term:         q.Get("q"),
		Field:        q.Get("field"),
		DocumentType: strings.ToUpper(q.Get("type")),
		Status:       q.Get("status"),
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Search handles GET /api/v1/clients/search?q=&type= for the POS picker.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rows, err := h.directory.Search(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("type"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Get handles GET /api/v1/clients/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.directory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// Create handles POST /api/v1/clients.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in ClientInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.directory.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, c)
}

// Update handles PUT /api/v1/clients/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in ClientInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.directory.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// Delete handles DELETE /api/v1/clients/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
