package moderation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountPublic registers the report submission route. limiter guards it per client.
func (h *Handler) MountPublic(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Post("/report", h.SubmitReport)
}

// Mount registers admin moderation routes on an already protected router
func (h *Handler) Mount(r chi.Router) {
	r.Post("/approve_ban", h.ApproveBan)
	r.Post("/reject_ban", h.RejectBan)
	r.Post("/modify_ban_record", h.ModifyBanRecord)

	r.Get("/list_pending", h.ListPending)
	r.Get("/query_ban_records", h.QueryBanRecords)
	r.Get("/ban_stats", h.BanStats)
	r.Get("/ban_stats_detail", h.BanStatsDetail)
}
