package moderation

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cloudban/cloudban-api/internal/middleware"
	"github.com/cloudban/cloudban-api/internal/pkg/errorhandler"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
	"github.com/cloudban/cloudban-api/internal/pkg/validator"
)

// Handler handles moderation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates moderation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitReport handles POST /api/report
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	record, err := h.service.SubmitReport(r.Context(), &req, middleware.ClientIP(r))
	if err != nil {
		h.writeError(w, r, "submit_report", err)
		return
	}

	response.OK(w, SubmitReportResponse{Message: "Report submitted successfully", ID: record.ID})
}

// ApproveBan handles POST /api/admin/approve_ban
func (h *Handler) ApproveBan(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve_ban", "Ban record approved", h.service.Approve)
}

// RejectBan handles POST /api/admin/reject_ban
func (h *Handler) RejectBan(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reject_ban", "Ban record rejected", h.service.Reject)
}

func (h *Handler) decide(
	w http.ResponseWriter,
	r *http.Request,
	op, message string,
	fn func(ctx context.Context, actor string, req *OperateRecordRequest) (*BanRecord, error),
) {
	var req OperateRecordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	record, err := fn(r.Context(), middleware.GetAdmin(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, op, err)
		return
	}

	response.OK(w, DecisionResponse{Message: message, Record: RecordResponseFromEntity(record)})
}

// ModifyBanRecord handles POST /api/admin/modify_ban_record
func (h *Handler) ModifyBanRecord(w http.ResponseWriter, r *http.Request) {
	var req ModifyRecordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	record, updated, err := h.service.Modify(r.Context(), middleware.GetAdmin(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "modify_ban_record", err)
		return
	}

	response.OK(w, ModifyResponse{
		Message: "Record updated",
		Updated: updated,
		Record:  RecordResponseFromEntity(record),
	})
}

// ListPending handles GET /api/admin/list_pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListPending(r.Context())
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "list_pending", err)
		return
	}
	response.OK(w, RecordResponsesFromEntities(records))
}

// QueryBanRecords handles GET /api/admin/query_ban_records
func (h *Handler) QueryBanRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := RecordFilter{
		TargetType: TargetType(q.Get("target_type")),
		Status:     Status(q.Get("status")),
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil {
			filter.Offset = v
		}
	}
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			filter.Limit = v
		}
	}

	records, err := h.service.QueryRecords(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "query_ban_records", err)
		return
	}
	response.OK(w, RecordResponsesFromEntities(records))
}

// BanStats handles GET /api/admin/ban_stats
func (h *Handler) BanStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "ban_stats", err)
		return
	}
	response.OK(w, stats)
}

// BanStatsDetail handles GET /api/admin/ban_stats_detail
func (h *Handler) BanStatsDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.StatsDetail(r.Context())
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "ban_stats_detail", err)
		return
	}
	response.OK(w, detail)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrHWICBlocked):
		response.Forbidden(w, "HWIC is blocked")
	case errors.Is(err, ErrRecordNotFound):
		response.NotFound(w, "Record not found")
	case errors.Is(err, ErrAlreadyProcessed):
		response.Conflict(w, "Record already processed")
	case errors.Is(err, ErrInvalidStatus):
		errorhandler.ValidationFailed(r.Context(), w, map[string]string{"status": "Invalid status. Must be: pending, approved, or rejected"})
	default:
		errorhandler.HandleError(r.Context(), w, op, err)
	}
}
