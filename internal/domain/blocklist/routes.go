package blocklist

import "github.com/go-chi/chi/v5"

// Mount registers admin device-block routes on an already protected router
func (h *Handler) Mount(r chi.Router) {
	r.Post("/set_hwic_block", h.SetBlock)
	r.Get("/blocked_hwics", h.List)
}
