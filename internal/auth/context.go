package auth

import (
	"net/http"

	"github.com/google/uuid"

	"sala2/models"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyAccountID is the key for the account ID in the context
	ContextKeyAccountID ContextKey = "accountID"
	// ContextKeySession is the key for the session in the context
	ContextKeySession ContextKey = "session"
)

const (
	// SessionCookieName carries the opaque session token, HttpOnly.
	SessionCookieName = "sala2_session"
	// ClientCookieName identifies a browser before login. CSRF tokens and
	// cookie preferences are keyed by it.
	ClientCookieName = "sala2_client"
	// CSRFHeaderName is the header mutating backend calls must echo.
	CSRFHeaderName = "X-CSRF-Token"
)

// GetAccountID retrieves the authenticated account ID from the request context.
func GetAccountID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyAccountID).(string); ok {
		return id
	}
	return ""
}

// GetSession retrieves the validated session from the request context.
func GetSession(r *http.Request) (models.Session, bool) {
	session, ok := r.Context().Value(ContextKeySession).(models.Session)
	return session, ok
}

// SessionToken returns the session token from the request cookie, if any.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ClientID returns the client ID cookie value, minting and setting a new one
// when the browser has none yet.
func ClientID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(ClientCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// PeekClientID returns the client ID cookie value without minting one.
func PeekClientID(r *http.Request) string {
	cookie, err := r.Cookie(ClientCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
