package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/metrics"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const bearerPrefix = "bearer "

// Authenticator resolves an owner id from a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// authenticate verifies the Authorization header and stores the owner id in the
// request context.
func (rt *Router) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := rt.access.Authenticate(r.Context(), bearerToken(r.Header.Get("Authorization")))
		if err != nil {
			writeError(w, model.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(rt.contextManager.SetOwnerIDToContext(r.Context(), ownerID)))
	})
}

func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// observe logs and measures every request. Routes are labelled by pattern.
func (rt *Router) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		d := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, route, code, d)

		args := []any{
			"method", r.Method,
			"route", route,
			"status", code,
			"duration_ms", d.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if code >= http.StatusInternalServerError {
			rt.logger.ErrorContext(r.Context(), "HTTP request failed", args...)
			return
		}
		rt.logger.InfoContext(r.Context(), "HTTP request completed", args...)
	})
}

// recoverer turns handler panics into a 500 with a JSON body.
func (rt *Router) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				rt.logger.ErrorContext(r.Context(), "HTTP router: recovered from panic",
					"panic", fmt.Sprint(rec))
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// noStore keeps API responses, secrets included, out of shared caches.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
