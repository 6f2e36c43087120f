package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"wastelookup/internal/collection"
	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/middleware"
	"wastelookup/internal/security"
)

// AdminTrigger labels invalidations requested over HTTP.
const AdminTrigger = "admin"

// CacheController is the maintenance side of services.CollectionService.
type CacheController interface {
	Invalidate(ctx context.Context, trigger string)
	Reload(ctx context.Context, trigger string) (collection.CacheStats, error)
	Stats() collection.CacheStats
}

// AdminHandler serves cache maintenance behind the admin gate.
type AdminHandler struct {
	cache        CacheController
	gate         *security.AdminGate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(cache CacheController, gate *security.AdminGate, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AdminHandler {
	return &AdminHandler{
		cache:        cache,
		gate:         gate,
		logger:       logger.With(slog.String("component", "admin_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the admin routes, all guarded by AdminOnly.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.AdminOnly(h.gate, h.errorHandler, h.logger))
	r.Get("/cache", h.GetCache)
	r.Post("/cache/invalidate", h.InvalidateCache)
	r.Post("/cache/reload", h.ReloadCache)
	return r
}

// GetCache handles GET /api/admin/cache
func (h *AdminHandler) GetCache(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.cache.Stats())
}

// InvalidateCache handles POST /api/admin/cache/invalidate. The next
// lookup reads the source again.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate(r.Context(), AdminTrigger)
	h.logger.InfoContext(r.Context(), "cache invalidated over http",
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.NoContent(w, r)
}

// ReloadCache handles POST /api/admin/cache/reload
func (h *AdminHandler) ReloadCache(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Reload(r.Context(), AdminTrigger)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}
