// Package rest serves the vault over HTTP/JSON with chi. It mirrors the gRPC
// surface and reuses its wire messages.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/handler"
	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/metrics"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// maxBodyBytes bounds request bodies. The largest valid entry is well below it.
const maxBodyBytes = 64 << 10

// corsMaxAge is how long browsers may cache a preflight answer, in seconds.
const corsMaxAge = 300

// Router builds the HTTP handler tree.
type Router struct {
	vaultService   handler.VaultService
	access         Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
	corsOrigins    []string
}

// Option configures Router.
type Option func(*Router)

// WithCORS allows browser calls from the given origins. "*" allows any origin.
func WithCORS(origins []string) Option {
	return func(rt *Router) {
		rt.corsOrigins = origins
	}
}

// New creates new HTTP Router instance.
func New(
	vaultService handler.VaultService,
	access Authenticator,
	contextManager model.ContextManager,
	logger *logger.Logger,
	opts ...Option,
) *Router {
	rt := &Router{
		vaultService:   vaultService,
		access:         access,
		contextManager: contextManager,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Handler returns the root handler: operational routes plus the authenticated
// /api/v1 entry routes.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(rt.observe)
	r.Use(rt.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/entries", func(r chi.Router) {
		// Preflights are answered before authentication.
		if len(rt.corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: rt.corsOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
				AllowedHeaders: []string{"Authorization", "Content-Type"},
				MaxAge:         corsMaxAge,
			}))
		}
		r.Use(noStore)
		r.Use(rt.authenticate)

		r.Post("/", rt.createEntry)
		r.Get("/", rt.listEntries)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.getEntry)
			r.Patch("/", rt.updateEntry)
			r.Delete("/", rt.deleteEntry)
			r.Post("/reveal", rt.revealEntry)
		})
	})

	return r
}
