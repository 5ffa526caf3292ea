package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expressbuy/internal/domain"
	"expressbuy/internal/services"
)

func reg(email, pw, confirm string) services.Registration {
	return services.Registration{FullName: "Ada Lovelace", Email: email, Password: pw, ConfirmPassword: confirm}
}

func TestAuth_RegisterRules(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.Register(reg("Ada@Example.com", "Passw0rd!", "Passw0rd!"))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "Passw0rd!", u.Hash)

	_, err = f.auth.Register(reg("ada@example.com", "Passw0rd!", "Passw0rd!"))
	assert.ErrorIs(t, err, services.ErrConflict, "duplicate email")

	_, err = f.auth.Register(reg("bob@example.com", "Passw0rd!", "Passw0rd?"))
	assert.ErrorIs(t, err, services.ErrValidation, "mismatch")
	_, err = f.auth.Register(reg("bob@example.com", "weak", "weak"))
	assert.ErrorIs(t, err, services.ErrValidation, "weak password")
	_, err = f.auth.Register(reg("not-an-email", "Passw0rd!", "Passw0rd!"))
	assert.ErrorIs(t, err, services.ErrValidation, "bad email")
}

func TestAuth_AdminBootstrap(t *testing.T) {
	f := newFixture(t)

	open, err := f.auth.AdminBootstrapOpen()
	require.NoError(t, err)
	assert.True(t, open)

	a, err := f.auth.RegisterAdmin(reg("root@example.com", "Passw0rd!", "Passw0rd!"))
	require.NoError(t, err)
	assert.True(t, a.IsAdmin())

	open, err = f.auth.AdminBootstrapOpen()
	require.NoError(t, err)
	assert.False(t, open)
}

func TestAuth_Login(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")

	_, _, err := f.auth.Login("nobody@example.com", "Passw0rd!")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, _, err = f.auth.Login("ada@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.EqualError(t, err, "Incorrect password")

	got, tok, err := f.auth.Login("ADA@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := f.auth.Tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.False(t, claims.IsAdmin())
}

func TestTokenService_RejectsTamperedAndExpired(t *testing.T) {
	ts := services.NewTokenService("secret-a", time.Minute)
	u := &domain.User{ID: "u1", Email: "a@b.co", Role: domain.RoleAdmin}

	tok, err := ts.Issue(u)
	require.NoError(t, err)
	c, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.True(t, c.IsAdmin())

	_, err = services.NewTokenService("secret-b", time.Minute).Parse(tok)
	assert.ErrorIs(t, err, services.ErrBadToken)

	_, err = ts.Parse(tok + "x")
	assert.ErrorIs(t, err, services.ErrBadToken)

	expired := services.NewTokenService("secret-a", -time.Minute)
	old, err := expired.Issue(u)
	require.NoError(t, err)
	_, err = ts.Parse(old)
	assert.ErrorIs(t, err, services.ErrBadToken)
}
