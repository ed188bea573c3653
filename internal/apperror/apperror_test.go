package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	storeCause := errors.New("disk full")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "u-1"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFoundMessage wraps ErrNotFound",
			err:       NotFoundMessage("Athlete not found"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("user", "user is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("credential", "a@b.c"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Missing auth token"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Store wraps ErrStore",
			err:       Store("updating profile", storeCause),
			target:    ErrStore,
			wantMatch: true,
		},
		{
			name:      "Store exposes its cause",
			err:       Store("updating profile", storeCause),
			target:    storeCause,
			wantMatch: true,
		},
		{
			name:      "wrapped Forbidden still matches",
			err:       fmt.Errorf("service: %w", Forbidden("Forbidden")),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("user", "u-1"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrForbidden",
			err:       Unauthorized("bad token"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "u-1"),
			wantMessage: "user not found with id u-1",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("password", "Passwords do not match"),
			wantMessage: "Passwords do not match",
		},
		{
			name:        "Store names the failed step, not the cause",
			err:         Store("deleting achievements", errors.New("SQLITE_BUSY")),
			wantMessage: "deleting achievements failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service/settings: %w", ValidationFailed("user", "user is required"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As() did not find *AppError")
	}
	if appErr.Field != "user" {
		t.Errorf("Field = %q, want %q", appErr.Field, "user")
	}
}
