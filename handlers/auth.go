package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"sala2/internal/auth"
	"sala2/services/accounts"
	"sala2/services/collections"
	"sala2/services/csrf"
	"sala2/services/mail"
	"sala2/services/sessions"
)

// AuthHandler handles the authentication endpoints. The session travels in
// an HttpOnly cookie; the CSRF token is fetched once and echoed on mutating
// calls.
type AuthHandler struct {
	accounts     *accounts.Service
	sessions     *sessions.Service
	csrf         *csrf.Service
	mail         *mail.Service
	collections  *collections.Service
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie marks the session
// cookie Secure for HTTPS deployments.
func NewAuthHandler(
	accountsSvc *accounts.Service,
	sessionsSvc *sessions.Service,
	csrfSvc *csrf.Service,
	mailSvc *mail.Service,
	collectionsSvc *collections.Service,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		accounts:     accountsSvc,
		sessions:     sessionsSvc,
		csrf:         csrfSvc,
		mail:         mailSvc,
		collections:  collectionsSvc,
		secureCookie: secureCookie,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse represents account info returned to the client.
type AccountResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// CSRFToken issues the per-client token for the double-submit handshake.
// It also mints the client cookie when the browser has none.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	clientID := auth.ClientID(w, r)
	token := h.csrf.Issue(clientID)
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// Register creates a new account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Register(req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailExists):
			writeError(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, accounts.ErrFullNameRequired),
			errors.Is(err, accounts.ErrEmailRequired),
			errors.Is(err, accounts.ErrEmailInvalid),
			errors.Is(err, accounts.ErrPasswordRequired),
			errors.Is(err, accounts.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	if err := h.startSession(w, r, account.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AccountResponse{
		ID:       account.ID,
		FullName: account.FullName,
		Email:    account.Email,
	})
}

// Login authenticates and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.startSession(w, r, account.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		ID:       account.ID,
		FullName: account.FullName,
		Email:    account.Email,
	})
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionToken(r); token != "" {
		if err := h.sessions.Revoke(token); err != nil && !errors.Is(err, sessions.ErrSessionNotFound) {
			writeError(w, http.StatusInternalServerError, "failed to revoke session")
			return
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Verify reports whether the request carries a valid session, returning the
// account when it does.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := auth.SessionToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		h.clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		h.clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"account": AccountResponse{
			ID:       account.ID,
			FullName: account.FullName,
			Email:    account.Email,
		},
	})
}

// RecoverRequest represents the password recovery request body.
type RecoverRequest struct {
	Email string `json:"email"`
}

// Recover replaces the account's password with a generated one, mails it to
// the owner, and revokes any open sessions. The response never reveals
// whether the email is registered.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if account, ok := h.accounts.GetByEmail(req.Email); ok {
		generated, err := h.accounts.ResetPassword(account.ID)
		if err != nil {
			log.Printf("[handlers] password reset for %s failed: %v", account.ID, err)
		} else {
			h.sessions.RevokeAllForAccount(account.ID)
			if err := h.mail.SendPasswordReset(account.Email, generated); err != nil {
				log.Printf("[handlers] password reset mail for %s failed: %v", account.ID, err)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteAccount removes the logged-in account along with its sessions and
// collections, then clears the cookie.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Validate(auth.SessionToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "login_required")
		return
	}

	if err := h.accounts.Delete(session.AccountID); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.sessions.RevokeAllForAccount(session.AccountID)
	if err := h.collections.Clear(session.AccountID); err != nil {
		log.Printf("[handlers] failed to clear collections for %s: %v", session.AccountID, err)
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "account deleted"})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, accountID string) error {
	session, err := h.sessions.Create(accountID, r.Header.Get("User-Agent"), getClientIPAddress(r))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
