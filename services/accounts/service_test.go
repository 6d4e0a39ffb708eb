package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)
	return svc
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)

	account, err := svc.Register("Ana García", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "Ana García", account.FullName)
	assert.NotEqual(t, "s3cret-pass", account.PasswordHash)

	got, err := svc.Authenticate("ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register("", "ana@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrFullNameRequired)

	_, err = svc.Register("Ana", "", "s3cret-pass")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register("Ana", "not-an-email", "s3cret-pass")
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.Register("Ana", "ana@example.com", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = svc.Register("Ana", "ana@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register("Otra Ana", "ANA@Example.com", "other-pass1")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthenticateRejectsWrongPasswordAndUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate("ana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdatePassword(t *testing.T) {
	svc := newTestService(t)

	account, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(account.ID, "new-password"))

	_, err = svc.Authenticate("ana@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("ana@example.com", "new-password")
	assert.NoError(t, err)
}

func TestResetPasswordGeneratesUsableCredential(t *testing.T) {
	svc := newTestService(t)

	account, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	generated, err := svc.ResetPassword(account.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(generated), MinPasswordLength)

	_, err = svc.Authenticate("ana@example.com", generated)
	assert.NoError(t, err)
}

func TestPersistenceAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	require.NoError(t, err)
	account, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	reloaded, err := NewService(dir)
	require.NoError(t, err)

	got, ok := reloaded.Get(account.ID)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = reloaded.Authenticate("ana@example.com", "s3cret-pass")
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)

	account, err := svc.Register("Ana", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(account.ID))
	assert.False(t, svc.Exists(account.ID))
	assert.ErrorIs(t, svc.Delete(account.ID), ErrAccountNotFound)
}
