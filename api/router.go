package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the handlers under /api together with /healthz and /metrics.
func NewRouter(h *Handler, visitor VisitorCookie, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Instrument(h.metrics, logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.categories)
		r.Get("/featured", h.featured)
		r.Get("/offers", h.offers)
		r.Get("/pickup-centers", h.pickupCenters)

		r.Group(func(r chi.Router) {
			r.Use(visitor.WithVisitor)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.addItem)
			r.Put("/cart/items/{id}", h.updateItem)
			r.Delete("/cart/items/{id}", h.removeItem)

			r.Get("/session", h.getSession)
			r.Post("/session/login", h.login)
			r.Post("/session/logout", h.logout)
			r.Post("/signup", h.signup)

			r.Post("/checkout", h.checkout)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)

			r.Get("/nav", h.nav)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	return r
}
