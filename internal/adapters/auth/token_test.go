package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("42", []string{domain.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.True(t, claims.HasRole(domain.RoleAdmin))
	assert.False(t, claims.HasRole("moderator"))
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	verifier := NewJWTVerifier("other-secret")

	token, err := issuer.Issue("42", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", -time.Minute)
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("42", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")

	_, err := verifier.Verify("not-a-token")
	require.Error(t, err)
}
