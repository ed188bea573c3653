// Package service holds the business logic between HTTP handlers and the
// repositories. Nothing here knows about HTTP; failures are apperror values
// the handler layer maps to status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/model"
	"github.com/sakif/athletix/internal/repository"
)

// ProfileInput is the "user" object of a settings save. Profile fields and
// detail fields arrive flattened together.
type ProfileInput struct {
	Fullname  *string `json:"fullname"`
	Birthdate *string `json:"birthdate"`
	Gender    *string `json:"gender"`
	Location  *string `json:"location"`
	Bio       *string `json:"bio"`

	Height       IntInput  `json:"height"`
	Weight       IntInput  `json:"weight"`
	Position     *string   `json:"position"`
	JerseyNumber TextInput `json:"jersey_number"`
	Phone        *string   `json:"phone"`
	ContactNum   *string   `json:"contact_num"`
	Email        *string   `json:"email"`
	VideoURL     *string   `json:"video_url"`
}

// AchievementInput without an id is a new row.
type AchievementInput struct {
	ID          TextInput `json:"achievement_id"`
	Title       *string   `json:"title"`
	Year        IntInput  `json:"year"`
	Description *string   `json:"description"`
}

// EducationInput without an id is a new row.
type EducationInput struct {
	ID        TextInput `json:"education_id"`
	School    *string   `json:"school"`
	Degree    *string   `json:"degree"`
	Field     *string   `json:"field"`
	StartYear IntInput  `json:"startYear"`
	EndYear   IntInput  `json:"endYear"`
}

// SettingsUpdate is the desired state submitted by the settings page.
type SettingsUpdate struct {
	User                  *ProfileInput      `json:"user"`
	Achievements          []AchievementInput `json:"achievements"`
	Education             []EducationInput   `json:"education"`
	DeletedAchievementIDs []TextInput        `json:"deletedAchievementIds"`
	DeletedEducationIDs   []TextInput        `json:"deletedEducationIds"`
}

// ProfileView is a User merged with its UserDetail. Detail fields are null
// when the user has never saved details.
type ProfileView struct {
	ID                 string                   `json:"user_id"`
	Fullname           string                   `json:"fullname"`
	Location           *string                  `json:"location"`
	Birthdate          *string                  `json:"birthdate"`
	Gender             *string                  `json:"gender"`
	Bio                *string                  `json:"bio"`
	SportName          *string                  `json:"sport_name"`
	Role               model.Role               `json:"role"`
	VerificationStatus model.VerificationStatus `json:"verification_status"`

	Email        *string `json:"email"`
	ContactNum   *string `json:"contact_num"`
	HeightCM     *int    `json:"height_cm"`
	WeightKG     *int    `json:"weight_kg"`
	Position     *string `json:"position"`
	JerseyNumber *string `json:"jersey_number"`
	VideoURL     *string `json:"video_url"`
}

// SettingsView is what the settings page loads.
type SettingsView struct {
	User         ProfileView         `json:"user"`
	Achievements []model.Achievement `json:"achievements"`
	Education    []model.Education   `json:"education"`
}

// SettingsService reads and reconciles a user's editable profile.
//
// Writes run as six independent steps. With atomic set, they share one
// store transaction instead and a failure leaves nothing applied.
type SettingsService struct {
	store  repository.ProfileStore
	atomic bool
	logger *slog.Logger
}

func NewSettingsService(store repository.ProfileStore, atomic bool, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: store, atomic: atomic, logger: logger}
}

// Get returns the merged profile and both collections. The caller must
// already have authorized access to userID.
func (s *SettingsService) Get(ctx context.Context, userID string) (*SettingsView, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage("User record not found")
		}
		return nil, apperror.Store("loading profile", err)
	}

	detail, err := s.store.GetDetail(ctx, userID)
	if err != nil {
		return nil, apperror.Store("loading profile details", err)
	}

	achievements, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, apperror.Store("loading achievements", err)
	}

	education, err := s.store.ListEducation(ctx, userID)
	if err != nil {
		return nil, apperror.Store("loading education", err)
	}

	return &SettingsView{
		User:         mergeProfile(user, detail),
		Achievements: achievements,
		Education:    education,
	}, nil
}

func mergeProfile(u *model.User, d *model.UserDetail) ProfileView {
	v := ProfileView{
		ID:                 u.ID,
		Fullname:           u.Fullname,
		Location:           u.Location,
		Birthdate:          u.Birthdate,
		Gender:             u.Gender,
		Bio:                u.Bio,
		SportName:          u.SportName,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
	}
	if d != nil {
		v.Email = d.Email
		v.ContactNum = d.ContactNum
		v.HeightCM = d.HeightCM
		v.WeightKG = d.WeightKG
		v.Position = d.Position
		v.JerseyNumber = d.JerseyNumber
		v.VideoURL = d.VideoURL
	}
	return v
}

// Save applies upd to userID's profile. Steps run in this order:
//  1. update user fields (only those supplied)
//  2. upsert the detail row
//  3. delete listed achievements
//  4. update or insert each submitted achievement
//  5. delete listed education rows
//  6. update or insert each submitted education row
//
// Every mutation is scoped to userID. Outside atomic mode a failure stops
// the sequence but earlier steps stay committed.
func (s *SettingsService) Save(ctx context.Context, userID string, upd SettingsUpdate) error {
	if upd.User == nil {
		return apperror.ValidationFailed("user", "user is required")
	}

	run := func(ctx context.Context) error { return s.apply(ctx, userID, upd) }

	var err error
	if s.atomic {
		err = s.store.WithinTx(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}

	s.logger.Info("settings saved",
		slog.String("userID", userID),
		slog.Int("achievements", len(upd.Achievements)),
		slog.Int("education", len(upd.Education)),
		slog.Bool("atomic", s.atomic),
	)
	return nil
}

func (s *SettingsService) apply(ctx context.Context, userID string, upd SettingsUpdate) error {
	p := upd.User
	now := time.Now().UTC()

	// 1. user fields. A cleared date input is "not supplied", never "".
	birthdate := p.Birthdate
	if birthdate != nil && strings.TrimSpace(*birthdate) == "" {
		birthdate = nil
	}
	err := s.store.UpdateUserFields(ctx, userID, model.UserFieldsUpdate{
		Fullname:  p.Fullname,
		Birthdate: birthdate,
		Gender:    p.Gender,
		Location:  p.Location,
		Bio:       p.Bio,
		UpdatedAt: now,
	})
	if err != nil {
		return s.stepFailed(userID, "updating profile", err)
	}

	// 2. detail row
	contact := p.Phone
	if contact == nil {
		contact = p.ContactNum
	}
	err = s.store.UpsertDetail(ctx, &model.UserDetail{
		UserID:       userID,
		HeightCM:     p.Height.Ptr(),
		WeightKG:     p.Weight.Ptr(),
		Position:     p.Position,
		JerseyNumber: p.JerseyNumber.Ptr(),
		ContactNum:   contact,
		Email:        p.Email,
		VideoURL:     p.VideoURL,
	})
	if err != nil {
		return s.stepFailed(userID, "saving profile details", err)
	}

	// 3-4. achievements
	if err := s.store.DeleteAchievements(ctx, userID, ids(upd.DeletedAchievementIDs)); err != nil {
		return s.stepFailed(userID, "deleting achievements", err)
	}
	for i, in := range upd.Achievements {
		a := &model.Achievement{
			UserID:      userID,
			Title:       in.Title,
			Year:        in.Year.Ptr(),
			Description: in.Description,
		}
		if in.ID.Present() {
			a.ID = in.ID.Value
			err = s.store.UpdateAchievement(ctx, a)
		} else {
			err = s.store.InsertAchievement(ctx, a)
		}
		if err != nil {
			return s.stepFailed(userID, fmt.Sprintf("saving achievement %d", i+1), err)
		}
	}

	// 5-6. education
	if err := s.store.DeleteEducation(ctx, userID, ids(upd.DeletedEducationIDs)); err != nil {
		return s.stepFailed(userID, "deleting education", err)
	}
	for i, in := range upd.Education {
		e := &model.Education{
			UserID:    userID,
			School:    in.School,
			Degree:    in.Degree,
			Field:     in.Field,
			StartYear: in.StartYear.Ptr(),
			EndYear:   in.EndYear.Ptr(),
		}
		if in.ID.Present() {
			e.ID = in.ID.Value
			err = s.store.UpdateEducation(ctx, e)
		} else {
			err = s.store.InsertEducation(ctx, e)
		}
		if err != nil {
			return s.stepFailed(userID, fmt.Sprintf("saving education entry %d", i+1), err)
		}
	}

	return nil
}

func (s *SettingsService) stepFailed(userID, step string, err error) error {
	s.logger.Error("settings save failed",
		slog.String("userID", userID),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
	return apperror.Store(step, err)
}
