package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/cloudban/cloudban-api/internal/config"
	"github.com/cloudban/cloudban-api/internal/domain/admin"
	"github.com/cloudban/cloudban-api/internal/domain/banlist"
	"github.com/cloudban/cloudban-api/internal/domain/blocklist"
	"github.com/cloudban/cloudban-api/internal/domain/export"
	"github.com/cloudban/cloudban-api/internal/domain/feed"
	"github.com/cloudban/cloudban-api/internal/domain/moderation"
	"github.com/cloudban/cloudban-api/internal/middleware"
	"github.com/cloudban/cloudban-api/internal/pkg/cache"
	"github.com/cloudban/cloudban-api/internal/pkg/database"
	"github.com/cloudban/cloudban-api/internal/pkg/jwt"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
)

const requestTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Debug: cfg.Debug})

	log.Info().
		Str("addr", cfg.Addr()).
		Str("settings", cfg.Path()).
		Bool("debug", cfg.Debug).
		Msg("Starting cloudban API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)
	banCache := cache.New(rdb)

	jwtService := jwt.NewService(cfg.SecretKey, cfg.AccessTokenTTL)

	// ---------- Live feed ----------
	hub := feed.NewHub(rdb)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	blocklistService := blocklist.NewService(blocklist.NewRepository(db), hub)
	moderationService := moderation.NewService(moderation.NewRepository(db), blocklistService, hub)
	banlistService := banlist.NewService(banlist.NewRepository(db), banCache, cfg.CacheTTL)
	adminService := admin.NewService(admin.NewRepository(db), jwtService, admin.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
	})

	exportStore, err := export.OpenStorage(ctx, cfg.Export)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open export storage")
	}
	exportService := export.NewService(banlistService, exportStore, cfg.Export.Prefix)

	// ---------- Rate limiting ----------
	reportLimiter := middleware.NewRateLimiter(cfg.ReportRateLimitRPS, cfg.ReportRateLimitBurst)
	go reportLimiter.RunCleanup(ctx, time.Minute)

	r := newRouter(cfg, jwtService, routeHandlers{
		moderation: moderation.NewHandler(moderationService),
		blocklist:  blocklist.NewHandler(blocklistService),
		banlist:    banlist.NewHandler(banlistService),
		admin:      admin.NewHandler(adminService),
		export:     export.NewHandler(exportService),
		feed:       feed.NewHandler(hub, identityFromContext, cfg.AllowedOrigins),
		health:     healthHandler(db, banCache),
	}, reportLimiter.Handler)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // feed connections are long-lived; other routes use middleware.Timeout
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type routeHandlers struct {
	moderation *moderation.Handler
	blocklist  *blocklist.Handler
	banlist    *banlist.Handler
	admin      *admin.Handler
	export     *export.Handler
	feed       *feed.Handler
	health     http.HandlerFunc
}

func newRouter(cfg *config.Config, jwtService *jwt.Service, h routeHandlers, reportLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.CookieAuth)

	r.Get("/health", h.health)
	r.Handle("/metrics", middleware.MetricsHandler())

	r.With(middleware.Timeout(requestTimeout)).Group(h.admin.MountLogin)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			h.moderation.MountPublic(r, reportLimiter)
			h.banlist.Mount(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(jwtService))
			r.Use(middleware.RequireAdmin(cfg.Username))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				h.admin.Mount(r)
				h.moderation.Mount(r)
				h.blocklist.Mount(r)
				h.export.Mount(r)
			})

			r.Get("/feed", h.feed.Stream)
		})
	})

	return r
}

func identityFromContext(r *http.Request) string {
	return middleware.GetAdmin(r.Context())
}

func healthHandler(db *sqlx.DB, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok", "cache": "ok"}

		if err := db.PingContext(ctx); err != nil {
			logger.LogError(r.Context(), err, "Health check: database unreachable")
			response.ServiceUnavailable(w, "Database unreachable")
			return
		}

		switch {
		case !c.IsAvailable():
			status["cache"] = "disabled"
		case c.Ping(ctx) != nil:
			status["cache"] = "unreachable"
		}

		response.OK(w, status)
	}
}
