package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rutar-app/backend/internal/billing"
	"github.com/rutar-app/backend/internal/delivery"
	"github.com/rutar-app/backend/internal/user"
)

// HealthCheck verifies one external dependency.
type HealthCheck func(context.Context) error

// Handler owns the HTTP surface the mobile client and the payment provider
// talk to.
type Handler struct {
	users      *user.Service
	deliveries *delivery.Service
	processor  *billing.Processor
	log        *slog.Logger
	checks     []HealthCheck
}

// NewHandler wires the HTTP layer. Panics on nil services to fail fast during
// initialization.
func NewHandler(users *user.Service, deliveries *delivery.Service, processor *billing.Processor, log *slog.Logger, checks ...HealthCheck) *Handler {
	if users == nil || deliveries == nil || processor == nil {
		panic("api: all services are required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		users:      users,
		deliveries: deliveries,
		processor:  processor,
		log:        log,
		checks:     checks,
	}
}

// Router returns the chi router with all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/sync_user", h.syncUser)
	r.Post("/save_stop", h.saveStop)
	r.Post("/check_optimization", h.checkOptimization)
	r.Post("/update_profile", h.updateProfile)
	r.Post("/webhook", h.webhook)
	r.Get("/health", h.health)

	return r
}
