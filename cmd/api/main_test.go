package main

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloudban/cloudban-api/internal/config"
	"github.com/cloudban/cloudban-api/internal/domain/admin"
	"github.com/cloudban/cloudban-api/internal/domain/banlist"
	"github.com/cloudban/cloudban-api/internal/domain/blocklist"
	"github.com/cloudban/cloudban-api/internal/domain/export"
	"github.com/cloudban/cloudban-api/internal/domain/feed"
	"github.com/cloudban/cloudban-api/internal/domain/moderation"
	"github.com/cloudban/cloudban-api/internal/middleware"
	"github.com/cloudban/cloudban-api/internal/pkg/jwt"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	cfg := &config.Config{Username: "admin", AllowedOrigins: []string{"http://localhost:3000"}}
	passthrough := func(next http.Handler) http.Handler { return next }
	return testRouterWith(t, cfg, passthrough)
}

func testRouterWith(t *testing.T, cfg *config.Config, reportLimiter func(http.Handler) http.Handler) chi.Router {
	t.Helper()
	jwtService := jwt.NewService("test-secret", time.Minute)
	hub := feed.NewHub(nil)

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	return newRouter(cfg, jwtService, routeHandlers{
		moderation: moderation.NewHandler(moderation.NewService(nil, nil, nil)),
		blocklist:  blocklist.NewHandler(blocklist.NewService(nil, nil)),
		banlist:    banlist.NewHandler(banlist.NewService(nil, nil, 0)),
		admin:      admin.NewHandler(admin.NewService(nil, jwtService, admin.Credentials{Username: "admin", Password: "admin"})),
		export:     export.NewHandler(export.NewService(nil, nil, "")),
		feed:       feed.NewHandler(hub, identityFromContext, cfg.AllowedOrigins),
		health:     ok,
	}, reportLimiter)
}

func TestRouteTable(t *testing.T) {
	r := testRouter(t)

	var got []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got = append(got, method+" "+route)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(got)

	want := []string{
		"GET /api/admin/admin_actions",
		"GET /api/admin/ban_stats",
		"GET /api/admin/ban_stats_detail",
		"GET /api/admin/blocked_hwics",
		"GET /api/admin/feed",
		"GET /api/admin/list_pending",
		"GET /api/admin/query_ban_records",
		"GET /api/banlist",
		"GET /api/public_banlist",
		"GET /health",
		"POST /api/admin/approve_ban",
		"POST /api/admin/check_token",
		"POST /api/admin/export_banlist",
		"POST /api/admin/modify_ban_record",
		"POST /api/admin/reject_ban",
		"POST /api/admin/set_hwic_block",
		"POST /api/report",
		"POST /login",
	}

	index := map[string]bool{}
	for _, route := range got {
		index[route] = true
	}
	for _, route := range want {
		if !index[route] {
			t.Errorf("missing route %s (have %v)", route, got)
		}
	}
}

func TestAdminRoutesAreProtected(t *testing.T) {
	r := testRouter(t)

	for _, target := range []string{"/api/admin/list_pending", "/api/admin/feed", "/api/admin/admin_actions"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", target, rec.Code)
		}
	}
}

func TestTokenForOtherIdentityIsForbidden(t *testing.T) {
	r := testRouter(t)
	token, _, err := jwt.NewService("test-secret", time.Minute).GenerateAccessToken("mallory")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ban_stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReportLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	cfg := &config.Config{Username: "admin"}
	r := testRouterWith(t, cfg, middleware.NewRateLimiter(1, 1).Handler)

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader("{"))
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited < 18 {
		t.Fatalf("expected the single peer to be limited, only %d of 20 got 429", limited)
	}
}

func TestReportLimitUsesClientBehindTrustedProxy(t *testing.T) {
	cfg := &config.Config{Username: "admin", TrustedProxies: []string{"10.1.0.0/16"}}
	r := testRouterWith(t, cfg, middleware.NewRateLimiter(0.001, 1).Handler)

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader("{"))
		req.RemoteAddr = "10.1.2.3:40000"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("198.51.100.1"); code == http.StatusTooManyRequests {
		t.Fatal("first request from a client must pass the limiter")
	}
	if code := send("198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second request from same client, got %d", code)
	}
	if code := send("198.51.100.2"); code == http.StatusTooManyRequests {
		t.Fatal("another client behind the proxy must have its own bucket")
	}
}
