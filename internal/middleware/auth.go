package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudban/cloudban-api/internal/pkg/jwt"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
)

// AuthCookie is the cookie the login endpoint stores the bearer token in.
const AuthCookie = "Authorization"

type contextKey string

const (
	SubjectKey contextKey = "subject"
	AdminKey   contextKey = "admin"
)

// CookieAuth copies the Authorization cookie into the Authorization header when the
// request carries no explicit header, adding the Bearer scheme if it is missing.
func CookieAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if c, err := r.Cookie(AuthCookie); err == nil && c.Value != "" {
				token := c.Value
				if !strings.HasPrefix(token, "Bearer ") {
					token = "Bearer " + token
				}
				r.Header.Set("Authorization", token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Auth returns middleware that validates the bearer JWT and stores its subject in context
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			token, ok := BearerToken(r)
			if !ok {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Forbidden(w, "Token expired")
				} else {
					response.Forbidden(w, "Could not validate credentials")
				}
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that only admits the configured admin identity.
// Must run after Auth.
func RequireAdmin(username string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := GetSubject(r.Context())
			if subject == "" || subject != username {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject extracts the authenticated token subject from context
func GetSubject(ctx context.Context) string {
	if s, ok := ctx.Value(SubjectKey).(string); ok {
		return s
	}
	return ""
}

// GetAdmin extracts the authorized admin identity from context
func GetAdmin(ctx context.Context) string {
	if s, ok := ctx.Value(AdminKey).(string); ok {
		return s
	}
	return ""
}
