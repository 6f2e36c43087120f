package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"wastelookup/internal/services"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// Routes mounts the health endpoints on r.
func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/health/ready", h.ReadinessCheck)
	r.Get("/health/live", h.LivenessCheck)
	r.Get("/version", h.Version)
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck handles GET /api/health/ready. It answers 503 until the
// dataset can be loaded.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
