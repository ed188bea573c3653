package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sakif/athletix/internal/apperror"
)

// RemoteVerifier delegates verification to a hosted identity provider by
// calling its "current user" endpoint with the bearer token, e.g.
// https://<project>.supabase.co/auth/v1/user. A 200 with a user id means
// the token is good.
type RemoteVerifier struct {
	userURL string
	apiKey  string
	client  *http.Client
}

var _ Verifier = (*RemoteVerifier)(nil)

// NewRemoteVerifier builds a verifier for userURL. apiKey, if set, is sent
// as the "apikey" header some providers require. A nil client means
// http.DefaultClient.
func NewRemoteVerifier(userURL, apiKey string, client *http.Client) *RemoteVerifier {
	return &RemoteVerifier{userURL: userURL, apiKey: apiKey, client: client}
}

type remoteUser struct {
	ID string `json:"id"`
}

// remoteError covers the error shapes hosted auth APIs return.
type remoteError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e remoteError) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	}
	return "Invalid token"
}

// Verify calls the provider. oauth2.NewClient wraps the transport so the
// token rides in the Authorization header.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (string, error) {
	if v.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userURL, nil)
	if err != nil {
		return "", fmt.Errorf("auth: building identity request: %w", err)
	}
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &apperror.AppError{
			Err:     apperror.ErrUnauthorized,
			Message: "Unable to verify token",
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e remoteError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return "", apperror.Unauthorized(e.text())
	}

	var u remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return "", fmt.Errorf("auth: decoding identity response: %w", err)
	}
	if u.ID == "" {
		return "", apperror.Unauthorized("Invalid token")
	}
	return u.ID, nil
}
