package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "Content-Encoding",
			idempotencyKeyHeader, traceIDHeader,
		},
		ExposedHeaders: []string{traceIDHeader, idempotentReplayHeader},
		MaxAge:         300,
	}))
	router.Use(h.withTraceID, h.withLogging, withCompressedResponses(), withGunzip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/version", h.getServerVersion)
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	})

	router.Route("/sync", func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/pull", h.pull)
		r.Post("/resolve", h.resolve)

		r.With(h.withIdempotency).Post("/push", h.push)
		r.With(h.withIdempotency).Post("/migrate", h.migrate)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
