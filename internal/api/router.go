package api

import (
	"log/slog"
	"net/http"
	"time"

	"voicecollect/internal/api/handler"
	mw "voicecollect/internal/api/middleware"
	"voicecollect/internal/config"
	"voicecollect/internal/domain/profile"
	"voicecollect/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(profileService profile.Service, configurator *session.Configurator, realtimeHandler http.Handler, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAPIRoutes(router, cfg, profileService, configurator, logger)
	setupRealtimeRoute(router, cfg, realtimeHandler, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupAPIRoutes(router *chi.Mux, cfg *config.Config, svc profile.Service, configurator *session.Configurator, logger *slog.Logger) {
	h := handler.NewProfileHandler(svc, configurator, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/api", func(r chi.Router) {
		// Liveness stays open; auth only guards the customer resource.
		r.Get("/test", h.Test)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
			r.Post("/customer", h.SaveCustomer)
			r.Get("/customer", h.GetCustomer)
		})
	})
}

func setupRealtimeRoute(router *chi.Mux, cfg *config.Config, realtimeHandler http.Handler, logger *slog.Logger) {
	if realtimeHandler == nil {
		return
	}
	path := cfg.Realtime.Path
	if path == "" {
		path = "/realtime"
	}
	logger.Info("Setting up realtime endpoint", "path", path)
	router.Handle(path, realtimeHandler)
}
