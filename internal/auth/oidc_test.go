package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/athletix/internal/apperror"
)

const testIssuer = "https://issuer.example.com"

// newStaticOIDCVerifier skips discovery and trusts one RSA key directly.
func newStaticOIDCVerifier(t *testing.T) (*OIDCVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: "athletix-web"}),
	}, key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestOIDCVerifier(t *testing.T) {
	v, key := newStaticOIDCVerifier(t)
	ctx := context.Background()
	now := time.Now()

	valid := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "oidc-user-7",
		Audience:  jwt.ClaimStrings{"athletix-web"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	t.Run("valid ID token", func(t *testing.T) {
		sub, err := v.Verify(ctx, signIDToken(t, key, valid))
		require.NoError(t, err)
		assert.Equal(t, "oidc-user-7", sub)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := valid
		c.Audience = jwt.ClaimStrings{"someone-else"}
		_, err := v.Verify(ctx, signIDToken(t, key, c))
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
		assert.Equal(t, "Invalid token", err.Error())
	})

	t.Run("expired", func(t *testing.T) {
		c := valid
		c.IssuedAt = jwt.NewNumericDate(now.Add(-2 * time.Hour))
		c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
		_, err := v.Verify(ctx, signIDToken(t, key, c))
		assert.Equal(t, "Token has expired", err.Error())
	})

	t.Run("signed by unknown key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		_, err = v.Verify(ctx, signIDToken(t, other, valid))
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	})
}
