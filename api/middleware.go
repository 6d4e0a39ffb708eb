package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"sala2/internal/auth"
	"sala2/services/csrf"
	"sala2/services/sessions"
)

// GetAccountID is re-exported for handlers wired through this package.
var GetAccountID = auth.GetAccountID

// SessionMiddleware validates the session cookie and injects the account
// into the request context. Unauthenticated requests get 401 with a
// login_required marker so the client can branch to its login prompt.
func SessionMiddleware(sessionsSvc *sessions.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := auth.SessionToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "login_required")
				return
			}

			session, err := sessionsSvc.Validate(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "login_required")
				return
			}

			ctx := context.WithValue(r.Context(), auth.ContextKeyAccountID, session.AccountID)
			ctx = context.WithValue(ctx, auth.ContextKeySession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFMiddleware enforces the double-submit handshake on mutating methods.
// The token fetched from GET /auth/csrf-token must come back in the
// X-CSRF-Token header; safe methods pass through untouched.
func CSRFMiddleware(csrfSvc *csrf.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			clientID := auth.PeekClientID(r)
			if clientID == "" {
				writeAuthError(w, http.StatusForbidden, "csrf token missing")
				return
			}

			if err := csrfSvc.Validate(clientID, r.Header.Get(auth.CSRFHeaderName)); err != nil {
				writeAuthError(w, http.StatusForbidden, "csrf token invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
