package notify

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes the notification center over HTTP.
type Handler struct {
	center *Center
}

// NewHandler constructs a Handler.
func NewHandler(center *Center) *Handler {
	return &Handler{center: center}
}

// List handles GET /api/v1/notifications.
func (h *Handler) List(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, h.center.Active())
}

// Dismiss handles DELETE /api/v1/notifications/{id}.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.center.Dismiss(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrUnknownNotification) {
			common.WriteError(w, common.NotFound("notification not found", err))
			return
		}
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
