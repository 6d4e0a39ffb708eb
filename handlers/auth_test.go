package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sala2/internal/auth"
	"sala2/internal/database"
	"sala2/services/accounts"
	"sala2/services/collections"
	"sala2/services/csrf"
	"sala2/services/mail"
	"sala2/services/sessions"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	accountsSvc, err := accounts.NewService(t.TempDir())
	require.NoError(t, err)
	sessionsSvc, err := sessions.NewService("", time.Hour)
	require.NoError(t, err)
	mailSvc, err := mail.NewService(afero.NewMemMapFs(), "/outbox", mail.SMTPConfig{})
	require.NoError(t, err)

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	collectionsSvc := collections.NewService(database.NewCollectionsRepository(db.Connection()))

	return NewAuthHandler(accountsSvc, sessionsSvc, csrf.NewService(time.Hour), mailSvc, collectionsSvc, false)
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCSRFTokenMintsClientCookie(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	h.CSRFToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["csrfToken"])

	clientCookie := cookieByName(rec.Result(), auth.ClientCookieName)
	require.NotNil(t, clientCookie)
	assert.NotEmpty(t, clientCookie.Value)
}

func TestCSRFTokenIsStableForSameClient(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil)
	req.AddCookie(&http.Cookie{Name: auth.ClientCookieName, Value: "client-1"})
	rec := httptest.NewRecorder()
	h.CSRFToken(rec, req)

	var first map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = httptest.NewRecorder()
	h.CSRFToken(rec, req)
	var second map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.Equal(t, first["csrfToken"], second["csrfToken"])
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	h := newAuthHandler(t)

	body := `{"fullName":"Ana García","email":"ana@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	sessionCookie := cookieByName(rec.Result(), auth.SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ana García", resp.FullName)
}

func TestRegisterDuplicateEmailIs409(t *testing.T) {
	h := newAuthHandler(t)

	body := `{"fullName":"Ana","email":"ana@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidationIs400(t *testing.T) {
	h := newAuthHandler(t)

	body := `{"fullName":"Ana","email":"ana@example.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginLogoutVerifyFlow(t *testing.T) {
	h := newAuthHandler(t)

	// Register
	body := `{"fullName":"Ana","email":"ana@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Login
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"s3cret-pass"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	sessionCookie := cookieByName(rec.Result(), auth.SessionCookieName)
	require.NotNil(t, sessionCookie)

	// Verify with the cookie
	req = httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	h.Verify(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var verify struct {
		Authenticated bool            `json:"authenticated"`
		Account       AccountResponse `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.True(t, verify.Authenticated)
	assert.Equal(t, "ana@example.com", verify.Account.Email)

	// Logout
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := cookieByName(rec.Result(), auth.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// Verify again: no longer authenticated
	req = httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	h.Verify(rec, req)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.False(t, verify.Authenticated)
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	h := newAuthHandler(t)

	body := `{"fullName":"Ana","email":"ana@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecoverInvalidatesOldCredentials(t *testing.T) {
	h := newAuthHandler(t)

	body := `{"fullName":"Ana","email":"ana@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	sessionCookie := cookieByName(rec.Result(), auth.SessionCookieName)
	require.NotNil(t, sessionCookie)

	req = httptest.NewRequest(http.MethodPost, "/auth/recover", strings.NewReader(`{"email":"ana@example.com"}`))
	rec = httptest.NewRecorder()
	h.Recover(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password is gone.
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"s3cret-pass"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Old sessions are revoked.
	req = httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	h.Verify(rec, req)

	var verify struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.False(t, verify.Authenticated)
}

func TestRecoverUnknownEmailLooksIdentical(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/recover", strings.NewReader(`{"email":"nobody@example.com"}`))
	rec := httptest.NewRecorder()
	h.Recover(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRecoverWithoutEmailIs400(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/recover", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Recover(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccountRemovesAccountAndSessions(t *testing.T) {
	h := newAuthHandler(t)

	body := `{"fullName":"Ana","email":"ana@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	sessionCookie := cookieByName(rec.Result(), auth.SessionCookieName)
	require.NotNil(t, sessionCookie)

	req = httptest.NewRequest(http.MethodDelete, "/auth/account", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	h.DeleteAccount(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := cookieByName(rec.Result(), auth.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// Credentials no longer work.
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"s3cret-pass"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteAccountWithoutSessionIs401(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/auth/account", nil)
	rec := httptest.NewRecorder()
	h.DeleteAccount(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "login_required")
}

func TestVerifyWithoutCookieIsAnonymous(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var verify struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.False(t, verify.Authenticated)
}
