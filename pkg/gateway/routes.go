package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes returns the http.Handler with all routes and middleware configured
func (g *Gateway) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(g.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", g.healthHandler)

	r.Route("/v1", func(r chi.Router) {
		// the websocket stream outlives the request timeout
		r.Get("/rank/ws", g.rankWebsocketHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(g.cfg.RequestTimeout))

			r.Get("/health", g.healthHandler)

			r.Get("/settings", g.getSettingsHandler)
			r.Patch("/settings", g.patchSettingsHandler)

			r.Get("/gateways", g.listGatewaysHandler)
			r.Put("/gateways/defaults", g.setDefaultsHandler)
			r.Post("/gateways/user", g.addUserGatewaysHandler)
			r.Delete("/gateways/user", g.removeUserGatewaysHandler)
			r.Get("/gateways/sorted", g.sortedHandler)
			r.Get("/gateways/results", g.resultsHandler)
			r.Get("/gateways/picked", g.getPickedHandler)
			r.Put("/gateways/picked", g.setPickedHandler)

			r.Post("/rank", g.rankHandler)
		})
	})

	r.With(middleware.Timeout(g.cfg.RequestTimeout)).Get("/ipfs/*", g.contentHandler)

	if g.cfg.EnableMetrics && g.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
