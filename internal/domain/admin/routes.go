package admin

import "github.com/go-chi/chi/v5"

// MountLogin registers the unauthenticated login route
func (h *Handler) MountLogin(r chi.Router) {
	r.Post("/login", h.Login)
}

// Mount registers admin routes. Must be mounted behind auth.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/check_token", h.CheckToken)
	r.Get("/admin_actions", h.AdminActions)
}
