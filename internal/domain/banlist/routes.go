package banlist

import "github.com/go-chi/chi/v5"

// Mount registers public read routes
func (h *Handler) Mount(r chi.Router) {
	r.Get("/banlist", h.Lookup)
	r.Get("/public_banlist", h.PublicBanlist)
}
