// Package ops serves the watchdog daemon's operational HTTP endpoints:
// liveness, readiness and a view of the latest cycle. It is deliberately
// read-only; settings administration lives outside this daemon.
package ops

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/serverwatch/serverwatch/internal/watchdog"
)

// RouterConfig holds configuration for the ops router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Service   *watchdog.Service
}

// NewRouter creates a chi router with the ops routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(RequestID)
	r.Use(Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(RateLimitByIP(100, time.Minute))

	h := NewHandler(cfg.Version, cfg.BuildTime, cfg.Service)

	r.Route("/ops", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
		r.Get("/ready", h.ReadinessCheck)
		r.Get("/status", h.CycleStatus)
	})

	return r
}
