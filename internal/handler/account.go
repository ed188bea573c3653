package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/service"
)

// AccountHandler manages registration, login and password changes.
// Every response uses the "message" key.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister       → create the profile and its credential
//   - HandleLogin          → check the credential, issue a bearer token
//   - HandleLogout         → acknowledge; tokens are stateless
//   - HandleUpdatePassword → re-verify, store the new password, email the owner
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /register
// REQUEST BODY: {"name", "email", "password", "role", "gender", "birthDate", "region", "sport", "bio"}
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, keyMessage, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.fail(w, "registration failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// HandleLogin exchanges an email and password for a bearer token.
//
// HTTP: POST /login
// REQUEST BODY: {"email": "...", "password": "..."}
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, keyMessage, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		h.fail(w, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleLogout has nothing to revoke. The client drops its token.
//
// HTTP: POST /logout
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleUpdatePassword changes a password after checking the current one.
//
// HTTP: POST /api/update-password
// REQUEST BODY: {"email", "currentPassword", "newPassword", "confirmPassword"}
//
// A 500 after the new password was stored means the notification email
// could not be sent.
func (h *AccountHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in service.PasswordChangeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, keyMessage, http.StatusBadRequest, "All fields are required")
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), in); err != nil {
		status := statusFor(err)
		if status != http.StatusInternalServerError {
			writeError(w, keyMessage, status, clientMessage(err, ""))
			return
		}
		h.logger.Error("password update failed", slog.String("error", err.Error()))
		writeError(w, keyMessage, status, "Server error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated and user notified by email",
	})
}

func (h *AccountHandler) fail(w http.ResponseWriter, what string, err error) {
	status := statusFor(err)
	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		h.logger.Error(what, slog.String("error", err.Error()))
		writeError(w, keyMessage, http.StatusInternalServerError, "Server error")
		return
	}
	writeError(w, keyMessage, status, appErr.Message)
}
