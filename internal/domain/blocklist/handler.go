package blocklist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cloudban/cloudban-api/internal/middleware"
	"github.com/cloudban/cloudban-api/internal/pkg/errorhandler"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
	"github.com/cloudban/cloudban-api/internal/pkg/validator"
)

// Handler handles device block HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates blocklist handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SetBlock handles POST /api/admin/set_hwic_block?hwic=&block=&reason=
func (h *Handler) SetBlock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	block, err := strconv.ParseBool(q.Get("block"))
	if err != nil {
		errorhandler.ValidationFailed(r.Context(), w, map[string]string{"block": "Must be true or false"})
		return
	}

	req := SetBlockRequest{
		HWIC:   q.Get("hwic"),
		Block:  block,
		Reason: q.Get("reason"),
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	actor := middleware.GetAdmin(r.Context())

	if req.Block {
		result, err := h.service.Block(r.Context(), actor, req.HWIC, req.Reason)
		if err != nil {
			h.writeError(w, r, "block_hwic", err)
			return
		}
		response.OK(w, result)
		return
	}

	result, err := h.service.Unblock(r.Context(), actor, req.HWIC)
	if err != nil {
		h.writeError(w, r, "unblock_hwic", err)
		return
	}
	response.OK(w, result)
}

// List handles GET /api/admin/blocked_hwics
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	blocks, total, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "list_blocked_hwics", err)
		return
	}

	items := make([]*BlockedHWICResponse, len(blocks))
	for i, b := range blocks {
		items[i] = BlockedHWICResponseFromEntity(b)
	}

	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasNext: offset+len(items) < total,
		HasPrev: offset > 0,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrHWICRequired):
		errorhandler.ValidationFailed(r.Context(), w, map[string]string{"hwic": "This field is required"})
	default:
		errorhandler.HandleError(r.Context(), w, op, err)
	}
}
