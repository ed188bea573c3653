package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/model"
	"github.com/sakif/athletix/internal/repository"
)

// Age is a whole number of years, or a placeholder when no birthdate is
// on file. A birthdate that cannot be read encodes as null.
type Age struct {
	Years    int
	Known    bool
	Invalid  bool
	Fallback string
}

func (a Age) MarshalJSON() ([]byte, error) {
	switch {
	case a.Known:
		return json.Marshal(a.Years)
	case a.Invalid:
		return []byte("null"), nil
	default:
		return json.Marshal(a.Fallback)
	}
}

// ageFrom subtracts calendar years only. Someone born in December is
// counted a year older from January 1st.
func ageFrom(birthdate *string, now time.Time, fallback string) Age {
	if birthdate == nil || *birthdate == "" {
		return Age{Fallback: fallback}
	}
	born, ok := parseBirthdate(*birthdate)
	if !ok {
		return Age{Invalid: true}
	}
	return Age{Years: now.Year() - born.Year(), Known: true}
}

func parseBirthdate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// or returns *p unless it is nil or empty.
func or(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

// Stat is a headline number on the athlete card.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// placeholderStats are shown until per-game statistics are recorded.
func placeholderStats() []Stat {
	return []Stat{
		{Label: "PPG", Value: "0.0"},
		{Label: "RPG", Value: "0.0"},
		{Label: "APG", Value: "0.0"},
	}
}

// AthleteSummary is one card in the public athlete list. Missing text
// fields are "".
type AthleteSummary struct {
	ID                 string                   `json:"id"`
	Name               string                   `json:"name"`
	Sport              string                   `json:"sport"`
	Position           string                   `json:"position"`
	Age                Age                      `json:"age"`
	Gender             string                   `json:"gender"`
	Location           string                   `json:"location"`
	Achievements       int                      `json:"achievements"`
	Stats              []Stat                   `json:"stats"`
	VerificationStatus model.VerificationStatus `json:"verification_status"`
}

// Video is a highlight link on the profile page.
type Video struct {
	URL string `json:"url"`
}

// AthleteProfile is the public profile page. Missing text fields are "N/A".
type AthleteProfile struct {
	ID                 string                   `json:"id"`
	Name               string                   `json:"name"`
	Sport              string                   `json:"sport"`
	Position           string                   `json:"position"`
	Age                Age                      `json:"age"`
	Gender             string                   `json:"gender"`
	Location           string                   `json:"location"`
	Bio                string                   `json:"bio"`
	VerificationStatus model.VerificationStatus `json:"verification_status"`
	Height             *int                     `json:"height"`
	Weight             *int                     `json:"weight"`
	JerseyNumber       *string                  `json:"jerseyNumber"`
	Email              *string                  `json:"email"`
	ContactNum         *string                  `json:"contactNum"`
	Videos             []Video                  `json:"videos"`
	Achievements       []model.Achievement      `json:"achievements"`
}

// AthleteService builds the public, read-only athlete projections.
type AthleteService struct {
	store  repository.ProfileStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAthleteService(store repository.ProfileStore, logger *slog.Logger) *AthleteService {
	return &AthleteService{store: store, logger: logger, now: time.Now}
}

// List returns a summary card for every athlete.
func (s *AthleteService) List(ctx context.Context) ([]AthleteSummary, error) {
	users, err := s.store.ListAthletes(ctx)
	if err != nil {
		return nil, apperror.Store("loading athletes", err)
	}

	details, err := s.store.ListDetails(ctx)
	if err != nil {
		return nil, apperror.Store("loading athlete details", err)
	}
	byUser := make(map[string]*model.UserDetail, len(details))
	for i := range details {
		if _, seen := byUser[details[i].UserID]; !seen {
			byUser[details[i].UserID] = &details[i]
		}
	}

	now := s.now()
	out := make([]AthleteSummary, 0, len(users))
	for _, u := range users {
		var position *string
		if d := byUser[u.ID]; d != nil {
			position = d.Position
		}
		out = append(out, AthleteSummary{
			ID:                 u.ID,
			Name:               u.Fullname,
			Sport:              or(u.SportName, ""),
			Position:           or(position, ""),
			Age:                ageFrom(u.Birthdate, now, ""),
			Gender:             or(u.Gender, ""),
			Location:           or(u.Location, ""),
			Achievements:       0,
			Stats:              placeholderStats(),
			VerificationStatus: u.VerificationStatus,
		})
	}
	return out, nil
}

// Get returns one athlete's public profile. Unknown ids and non-athlete
// accounts are both "Athlete not found".
func (s *AthleteService) Get(ctx context.Context, id string) (*AthleteProfile, error) {
	u, err := s.store.GetAthlete(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Debug("athlete not found", slog.String("id", id))
			return nil, apperror.NotFoundMessage("Athlete not found")
		}
		return nil, apperror.Store("loading athlete", err)
	}

	d, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, apperror.Store("loading athlete details", err)
	}
	if d == nil {
		d = &model.UserDetail{}
	}

	achievements, err := s.store.ListAchievements(ctx, id)
	if err != nil {
		return nil, apperror.Store("loading achievements", err)
	}

	videos := []Video{}
	if d.VideoURL != nil && *d.VideoURL != "" {
		videos = append(videos, Video{URL: *d.VideoURL})
	}

	return &AthleteProfile{
		ID:                 u.ID,
		Name:               u.Fullname,
		Sport:              or(u.SportName, "N/A"),
		Position:           or(d.Position, "N/A"),
		Age:                ageFrom(u.Birthdate, s.now(), "N/A"),
		Gender:             or(u.Gender, "N/A"),
		Location:           or(u.Location, "N/A"),
		Bio:                or(u.Bio, ""),
		VerificationStatus: u.VerificationStatus,
		Height:             d.HeightCM,
		Weight:             d.WeightKG,
		JerseyNumber:       d.JerseyNumber,
		Email:              d.Email,
		ContactNum:         d.ContactNum,
		Videos:             videos,
		Achievements:       achievements,
	}, nil
}
