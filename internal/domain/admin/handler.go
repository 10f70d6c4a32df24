package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cloudban/cloudban-api/internal/middleware"
	"github.com/cloudban/cloudban-api/internal/pkg/errorhandler"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
	"github.com/cloudban/cloudban-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// --- Authentication ---

// Login handles POST /login with a form-encoded username and password
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid form body")
		return
	}

	req := LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			response.Unauthorized(w, "Incorrect username or password")
			return
		}
		errorhandler.HandleError(r.Context(), w, "admin_login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token.AccessToken,
		Path:     "/",
		MaxAge:   int(h.service.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	response.OK(w, token)
}

// CheckToken handles POST /api/admin/check_token
func (h *Handler) CheckToken(w http.ResponseWriter, r *http.Request) {
	response.OK(w, CheckTokenResponse{User: middleware.GetAdmin(r.Context())})
}

// --- Audit Log ---

// AdminActions handles GET /api/admin/admin_actions
func (h *Handler) AdminActions(w http.ResponseWriter, r *http.Request) {
	filter := ActionFilter{Action: r.URL.Query().Get("action")}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			filter.Offset = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			filter.Limit = v
		}
	}

	filter = filter.Normalized()
	items, total, err := h.service.ListActions(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, "list_admin_actions", err)
		return
	}

	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
		HasNext: filter.Offset+len(items) < total,
		HasPrev: filter.Offset > 0,
	})
}
