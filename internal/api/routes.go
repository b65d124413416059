package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures the landing page routes: the lead API under /api,
// health and metrics, and the static site for everything else.
func SetupRoutes(h *Handlers, health *HealthChecker, static http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(accessLogFormatter{log: h.log}))
	r.Use(middleware.Recoverer)

	r.Get("/health", health.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// The form may be embedded on other origins; no credentials are involved.
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:     []string{"*"},
			AllowedMethods:     []string{"POST", "OPTIONS"},
			AllowedHeaders:     []string{"Content-Type"},
			OptionsPassthrough: true,
			MaxAge:             300,
		}))
		r.Use(subscribeCORSHeaders)

		r.Route("/subscribe", func(r chi.Router) {
			r.Post("/", h.Subscribe)
			r.Options("/", h.SubscribeOptions)
			r.MethodNotAllowed(h.SubscribeMethodNotAllowed)
		})

		r.Get("/sections", h.Sections)
	})

	if static != nil {
		r.Get("/*", static.ServeHTTP)
		r.Head("/*", static.ServeHTTP)
	}

	return r
}

// subscribeCORSHeaders sets the API's CORS headers on every response.
// cors.Handler only answers requests that carry an Origin header; the
// subscribe contract requires the same three headers on every response,
// including Origin-less OPTIONS and error replies, so they are fixed here.
// cors.Handler still negotiates the preflight (Vary, Max-Age).
func subscribeCORSHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, req)
	})
}
