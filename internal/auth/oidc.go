package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/sakif/athletix/internal/apperror"
)

// OIDCVerifier validates ID tokens issued by an OpenID Connect provider.
// Signing keys are fetched from the issuer's JWKS and cached by go-oidc.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ Verifier = (*OIDCVerifier)(nil)

// NewOIDCVerifier performs discovery against issuerURL. An empty clientID
// skips the audience check.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("auth: OIDC discovery for %s: %w", issuerURL, err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{
			ClientID:          clientID,
			SkipClientIDCheck: clientID == "",
		}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, token string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) || strings.Contains(err.Error(), "expired") {
			return "", apperror.Unauthorized("Token has expired")
		}
		return "", apperror.Unauthorized("Invalid token")
	}
	if idToken.Subject == "" {
		return "", apperror.Unauthorized("Invalid token")
	}
	return idToken.Subject, nil
}
