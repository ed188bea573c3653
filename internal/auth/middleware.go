package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/athletix/internal/apperror"
)

// Verifier turns a bearer token into the subject it was issued to.
// Rejections are apperror.ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, token string) (subject string, err error)
}

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const subjectKey contextKey = "subject"

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Authorize verifies token and checks that its subject is target.
// Missing or rejected tokens are Unauthorized; a valid token for anyone
// else is Forbidden.
func Authorize(ctx context.Context, v Verifier, token, target string) (string, error) {
	if token == "" {
		return "", apperror.Unauthorized("Missing auth token")
	}

	subject, err := v.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return "", err
		}
		return "", apperror.Unauthorized("Invalid token")
	}

	if subject != target {
		return "", apperror.Forbidden("Forbidden")
	}
	return subject, nil
}

// RequireSubject guards routes that act on one user's data. It runs before
// the handler touches the store: the token must be present, valid, and
// issued to the user named by the URL parameter param.
//
// Failures are written as {"error": "..."} with 401 or 403.
func RequireSubject(v Verifier, param string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := BearerToken(r)
			target := chi.URLParam(r, param)

			subject, err := Authorize(r.Context(), v, token, target)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, apperror.ErrForbidden) {
					status = http.StatusForbidden
					logger.Warn("subject mismatch",
						slog.String("target", target),
						slog.String("path", r.URL.Path),
					)
				}
				writeAuthError(w, status, err)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the verified subject set by RequireSubject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey).(string)
	return id, ok && id != ""
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	msg := "Unauthorized"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
