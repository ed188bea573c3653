// Package handler turns HTTP requests into service calls and service
// results into JSON responses.
//
// ERROR BODIES:
// Endpoints report failures as a single-key object. Most use
//
//	{"error": "Forbidden"}
//
// while the account endpoints and the athlete-not-found case use
//
//	{"message": "Athlete not found"}
//
// Clients already parse both shapes, so each handler picks its key
// explicitly.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/athletix/internal/apperror"
)

// errorKey is the JSON field an endpoint reports failures under.
type errorKey string

const (
	keyError   errorKey = "error"
	keyMessage errorKey = "message"
)

// maxBodyBytes caps request bodies. A settings save with every list filled
// stays well under this.
const maxBodyBytes = 1 << 20

// writeJSON sends data with the given status. Headers must be set before
// WriteHeader; anything set after the first body write is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError sends {key: message}.
func writeError(w http.ResponseWriter, key errorKey, status int, message string) {
	writeJSON(w, status, map[string]string{string(key): message})
}

// statusFor maps the apperror taxonomy to HTTP. Anything unclassified is a
// 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the AppError message, which is always safe to show,
// or fallback for errors that might carry internal detail.
func clientMessage(err error, fallback string) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// decodeJSON reads a single JSON value from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
