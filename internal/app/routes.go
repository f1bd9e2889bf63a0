package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hit-counter/internal/counter"
	httpxmiddleware "hit-counter/internal/httpx/middleware"
	"hit-counter/internal/httpx/response"
)

// Router builds the full HTTP routing tree.
func (a *ServerApp) Router() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("server app is nil")
	}
	if a.CounterHandler == nil {
		return nil, errors.New("counter handler is not configured")
	}

	r := chi.NewRouter()
	// Forwarded client addresses are only honored behind a trusted proxy;
	// otherwise any caller could pick its own rate limit bucket.
	if a.Config.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(httpxmiddleware.RequestID)
	r.Use(httpxmiddleware.AccessLog(a.Metrics))
	r.Use(a.withPanicRecovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.Config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", httpxmiddleware.RequestIDHeader},
		ExposedHeaders: []string{"Location", httpxmiddleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(httpxmiddleware.RateLimit(a.Limiter))
		r.Get("/", a.CounterHandler.Index)
		r.Mount(counter.ListPath, a.CounterHandler.Routes())
	})

	return r, nil
}
