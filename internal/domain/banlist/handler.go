package banlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cloudban/cloudban-api/internal/pkg/errorhandler"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
	"github.com/cloudban/cloudban-api/internal/pkg/validator"
)

// Handler handles public banlist HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates banlist handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Lookup handles GET /api/banlist?target_type=&target_id=
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	req := LookupRequest{
		TargetType: r.URL.Query().Get("target_type"),
		TargetID:   r.URL.Query().Get("target_id"),
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	result, err := h.service.Lookup(r.Context(), req.TargetType, req.TargetID)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "lookup_ban", err)
		return
	}

	response.OK(w, result)
}

// PublicBanlist handles GET /api/public_banlist?page=&page_size=
func (h *Handler) PublicBanlist(w http.ResponseWriter, r *http.Request) {
	page, pageSize := 1, DefaultPageSize
	fields := map[string]string{}

	if p := r.URL.Query().Get("page"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			fields["page"] = "Must be an integer"
		}
		page = v
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		v, err := strconv.Atoi(ps)
		if err != nil {
			fields["page_size"] = "Must be an integer"
		}
		pageSize = v
	}
	if len(fields) > 0 {
		errorhandler.ValidationFailed(r.Context(), w, fields)
		return
	}

	result, err := h.service.PublicPage(r.Context(), page, pageSize)
	if err != nil {
		if errors.Is(err, ErrInvalidPagination) {
			errorhandler.ValidationFailed(r.Context(), w, map[string]string{
				"page":      "Must be at least 1",
				"page_size": "Must be between 1 and 100",
			})
			return
		}
		errorhandler.HandleError(r.Context(), w, "public_banlist", err)
		return
	}

	response.WithMeta(w, result, response.NewPageMeta(result.Total, page, pageSize))
}
