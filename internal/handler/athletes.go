package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/service"
)

// AthleteHandler serves the public athlete directory. No authentication.
type AthleteHandler struct {
	athletes *service.AthleteService
	logger   *slog.Logger
}

func NewAthleteHandler(athletes *service.AthleteService, logger *slog.Logger) *AthleteHandler {
	return &AthleteHandler{athletes: athletes, logger: logger}
}

// HandleList returns every athlete as a summary card.
//
// HTTP: GET /api/athletes
func (h *AthleteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.athletes.List(r.Context())
	if err != nil {
		h.logger.Error("listing athletes failed", slog.String("error", err.Error()))
		writeError(w, keyError, http.StatusInternalServerError, "Failed to load athletes")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleGet returns one athlete's public profile.
//
// HTTP: GET /api/athletes/{id}
//
// Not found is reported under "message", other failures under "error".
func (h *AthleteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	profile, err := h.athletes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeError(w, keyMessage, http.StatusNotFound, "Athlete not found")
			return
		}
		h.logger.Error("loading athlete failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, keyError, http.StatusInternalServerError, "Failed to load athlete")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
