// Package auth verifies bearer credentials and manages local password
// credentials.
//
// VERIFICATION FLOW:
//  1. The client sends "Authorization: Bearer <token>".
//  2. RequireSubject extracts the token and hands it to a Verifier.
//  3. The Verifier returns the subject (user id) the token was issued to.
//  4. The subject must equal the {userId} in the URL, or the request is 403.
//
// Three Verifiers exist, selected by AUTH_MODE:
//   - TokenService   (jwt)    HS256 tokens signed with a shared secret. Both
//     tokens this server issues at /login and tokens from a hosted auth
//     provider that shares the secret.
//   - RemoteVerifier (remote) asks the identity provider's user endpoint.
//   - OIDCVerifier   (oidc)   checks ID tokens against an issuer's JWKS.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/athletix/internal/apperror"
)

const defaultTokenTTL = time.Hour

// TokenConfig configures a TokenService. Issuer and Audience are optional;
// when set, tokens must carry matching iss / aud claims.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenService signs and validates HS256 access tokens.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

var _ Verifier = (*TokenService)(nil)

// NewTokenService creates a TokenService. The secret must be at least 16
// characters. Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
	}, nil
}

// TTL is the lifetime of tokens from Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs a token whose subject is userID.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    s.issuer,
	}
	if s.audience != "" {
		c.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify validates the token and returns its subject. Every rejection is
// an apperror.ErrUnauthorized whose message is safe to show the client.
//
// jwt.WithValidMethods pins HS256 so a token claiming "none" or an RSA
// algorithm is refused before the key is ever used.
func (s *TokenService) Verify(_ context.Context, tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Unauthorized("Token has expired")
		}
		return "", apperror.Unauthorized("Invalid token")
	}
	if !token.Valid || c.Subject == "" {
		return "", apperror.Unauthorized("Invalid token")
	}
	return c.Subject, nil
}
