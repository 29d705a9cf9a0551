package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/cache"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/health"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/httputil"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/middleware"
)

// StorefrontHandler serves cart reads through the snapshot cache. It is the
// edge the storefront UI talks to; writes go to the cart service directly and
// the UI then refreshes the snapshot here.
type StorefrontHandler struct {
	cache  *cache.Service
	logger *slog.Logger
}

// NewStorefrontHandler creates the storefront HTTP handler.
func NewStorefrontHandler(c *cache.Service, l *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{cache: c, logger: l}
}

// GetCollection handles GET /api/v1/storefront/{userID}/items, serving the
// cached snapshot and hydrating from the cart service on a miss.
func (h *StorefrontHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items, err := h.cache.GetCollection(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// InvalidateCollection handles DELETE /api/v1/storefront/{userID}/items,
// dropping the snapshot so the next read hydrates fresh.
func (h *StorefrontHandler) InvalidateCollection(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.cache.RemoveCollection(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StorefrontRouterConfig carries the dependencies for the storefront router.
type StorefrontRouterConfig struct {
	Storefront     *StorefrontHandler
	Health         *health.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewStorefrontRouter builds the storefront edge router.
func NewStorefrontRouter(cfg StorefrontRouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/storefront/{userID}/items", func(r chi.Router) {
		r.Get("/", cfg.Storefront.GetCollection)
		r.Delete("/", cfg.Storefront.InvalidateCollection)
	})

	return r
}
