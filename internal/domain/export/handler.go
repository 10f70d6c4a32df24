package export

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudban/cloudban-api/internal/pkg/errorhandler"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
)

// Handler handles export HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates export handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ExportBanlist handles POST /api/admin/export_banlist
func (h *Handler) ExportBanlist(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Export(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.ServiceUnavailable(w, "Export destination is not configured")
			return
		}
		errorhandler.HandleError(r.Context(), w, "export_banlist", err)
		return
	}

	response.OK(w, res)
}

// Mount registers export routes. Must be mounted behind auth.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/export_banlist", h.ExportBanlist)
}
