package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/health"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/middleware"
)

// RouterConfig carries the dependencies for the HTTP router.
type RouterConfig struct {
	Cart           *CartHandler
	Health         *health.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter builds the chi router with the full middleware chain, health
// probes, metrics, and the cart API.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/{userID}/items", cfg.Cart.GetItems)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.Cart.AddItem)
			r.Get("/{id}", cfg.Cart.GetItem)
			r.Patch("/{id}", cfg.Cart.UpdateQuantity)
			r.Delete("/{id}", cfg.Cart.DeleteItem)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"NOT_FOUND","message":"route not found"}}`, http.StatusNotFound)
	})

	return r
}
