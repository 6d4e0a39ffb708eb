package utils

import (
	"net/http"

	"github.com/gorilla/mux"
)

// applyCORSHeaders echoes the origin back for trusted origins. Backend calls
// carry cookies, so credentials must be allowed explicitly and the origin can
// never be wildcarded.
func applyCORSHeaders(checker *OriginChecker, w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && checker.Allowed(origin) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token")
	}
}

// corsMiddleware handles CORS for matched routes.
func corsMiddleware(checker *OriginChecker) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applyCORSHeaders(checker, w, r)

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// corsFallbackHandler covers requests no route matched. Every route is
// method-restricted, so browser preflights land on the method-not-allowed
// path and still need the CORS short-circuit before the error status.
func corsFallbackHandler(checker *OriginChecker, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applyCORSHeaders(checker, w, r)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(status)
	})
}

// NewRouter constructs the base mux router with CORS and the health route.
func NewRouter(extraOrigins []string) *mux.Router {
	r := mux.NewRouter()

	checker := NewOriginChecker(extraOrigins)
	r.Use(corsMiddleware(checker))
	r.NotFoundHandler = corsFallbackHandler(checker, http.StatusNotFound)
	r.MethodNotAllowedHandler = corsFallbackHandler(checker, http.StatusMethodNotAllowed)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	return r
}
