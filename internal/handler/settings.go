package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/athletix/internal/service"
)

// SettingsHandler serves the settings page of the signed-in user.
//
// Both routes sit behind auth.RequireSubject, so by the time a handler runs
// the bearer token has been verified and its subject equals {userId}.
// Failures use the "error" key.
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *slog.Logger
}

func NewSettingsHandler(settings *service.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// HandleGet returns {user, achievements, education}.
//
// HTTP: GET /api/settings/{userId}
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	view, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("loading settings failed",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, keyError, status, clientMessage(err, "Server error"))
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandlePut reconciles the stored profile with the submitted state.
//
// HTTP: PUT /api/settings/{userId}
// REQUEST BODY:
//
//	{
//	  "user": {"fullname": "...", "height": "180", "phone": "...", ...},
//	  "achievements": [{"achievement_id": "...", "title": "MVP", "year": "2022"}],
//	  "education": [{"school": "...", "startYear": "2015"}],
//	  "deletedAchievementIds": ["..."],
//	  "deletedEducationIds": ["..."]
//	}
//
// A 500 names the step that failed. Steps before it have been applied
// unless atomic writes are enabled.
func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var upd service.SettingsUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		h.logger.Warn("invalid settings body",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, keyError, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.settings.Save(r.Context(), userID, upd); err != nil {
		writeError(w, keyError, statusFor(err), clientMessage(err, "Server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
