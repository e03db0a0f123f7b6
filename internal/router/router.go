package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samims/sitepulse/internal/handler"
	customMiddleware "github.com/samims/sitepulse/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Checks      *handler.CheckHandler
	Monitors    *handler.MonitorHandler
	Channels    *handler.ChannelHandler
	StatusPages *handler.StatusPageHandler
	Regions     *handler.RegionHandler
	Settings    *handler.SettingsHandler
	Health      *handler.HealthHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	AllowedOrigins []string
	// AdminJWTSecret enables bearer auth on /api when set.
	AdminJWTSecret string
	// RequestTimeout must cover the slowest upstream call.
	RequestTimeout time.Duration
}

func NewRouter(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(customMiddleware.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		if opts.AdminJWTSecret != "" {
			r.Use(customMiddleware.AdminAuth(opts.AdminJWTSecret))
		}

		r.Get("/checks/{type}", h.Checks.Run)

		r.Route("/monitors", func(r chi.Router) {
			r.Get("/", h.Monitors.List)
			r.Post("/", h.Monitors.Create)
			r.Post("/bulk", h.Monitors.Bulk)
			r.Get("/options", h.Monitors.Options)
			r.Get("/{id}", h.Monitors.Get)
			r.Put("/{id}", h.Monitors.Update)
			r.Delete("/{id}", h.Monitors.Delete)
			r.Get("/{id}/histogram", h.Monitors.Histogram)
			r.Get("/{id}/response-time", h.Monitors.ResponseTime)
			r.Get("/{id}/uptime-stats", h.Monitors.UptimeStats)
		})

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", h.Channels.List)
			r.Post("/", h.Channels.Create)
			r.Put("/{id}", h.Channels.Update)
			r.Delete("/{id}", h.Channels.Delete)
		})

		r.Route("/status-pages", func(r chi.Router) {
			r.Get("/", h.StatusPages.List)
			r.Post("/", h.StatusPages.Create)
			r.Get("/{id}", h.StatusPages.Get)
			r.Put("/{id}", h.StatusPages.Update)
			r.Delete("/{id}", h.StatusPages.Delete)
			r.Post("/{id}/publish", h.StatusPages.Publish)
			r.Post("/{id}/reset-link", h.StatusPages.ResetLink)
		})

		r.Get("/regions", h.Regions.List)
		r.Get("/regions/options", h.Regions.Options)

		r.Get("/settings", h.Settings.Get)
		r.Put("/settings", h.Settings.Update)
	})

	// Health & Readiness Routes
	r.Get("/healthz", h.Health.Liveness)
	r.Get("/readyz", h.Health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
