package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("user-123", RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, role, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
	assert.Equal(t, RoleUser, role)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue("doc-9", RoleDoctor)
	require.NoError(t, err)

	_, _, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	_, _, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestZeroTTLOmitsExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	token, err := issuer.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	subject, role, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
	assert.Equal(t, RoleAdmin, role)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}
