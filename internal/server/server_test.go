package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/athletix/internal/config"
	"github.com/sakif/athletix/internal/notify"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 5000, CORSOrigins: []string{"http://localhost:3000"}},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", AutoMigrate: true},
		Auth:     config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: "server-test-secret-123"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func send(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServer_RegisterLoginAndEditSettings(t *testing.T) {
	h := newTestServer(t).Handler()

	rr := send(t, h, http.MethodPost, "/register", "",
		`{"name":"Ana Cruz","email":"ana@example.com","password":"Str0ng!pass","sport":"Volleyball"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = send(t, h, http.MethodPost, "/login", "", `{"email":"ana@example.com","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&session))

	settingsPath := "/api/settings/" + created.UserID

	rr = send(t, h, http.MethodPut, settingsPath, session.AccessToken,
		`{"user":{"location":"Cebu","position":"Setter"},"achievements":[{"title":"MVP","year":2023}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = send(t, h, http.MethodGet, "/api/athletes/"+created.UserID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var profile map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Equal(t, "Cebu", profile["location"])
	assert.Equal(t, "Setter", profile["position"])
	assert.Equal(t, "Volleyball", profile["sport"])
	assert.Len(t, profile["achievements"], 1)

	rr = send(t, h, http.MethodGet, settingsPath, "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t).Handler()

	rr := send(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/settings/abc", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestNewVerifier(t *testing.T) {
	t.Run("jwt requires a secret", func(t *testing.T) {
		_, _, err := newVerifier(context.Background(), config.AuthConfig{Mode: config.AuthModeJWT})
		assert.Error(t, err)
	})

	t.Run("remote keeps the login issuer", func(t *testing.T) {
		tokens, v, err := newVerifier(context.Background(), config.AuthConfig{
			Mode:          config.AuthModeRemote,
			RemoteUserURL: "https://id.example.com/auth/v1/user",
			JWTSecret:     "server-test-secret-123",
		})
		require.NoError(t, err)
		assert.NotNil(t, tokens)
		assert.NotNil(t, v)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, _, err := newVerifier(context.Background(), config.AuthConfig{Mode: "ldap"})
		assert.Error(t, err)
	})
}

func TestNewNotifier(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	_, isLog := newNotifier(config.MailConfig{}, logger).(*notify.LogNotifier)
	assert.True(t, isLog, "no SMTP account should fall back to logging")

	_, isSMTP := newNotifier(config.MailConfig{
		Host: "smtp.gmail.com", Port: 587, Username: "security@athletix.app", Password: "app-password",
	}, logger).(*notify.SMTPNotifier)
	assert.True(t, isSMTP)
}
