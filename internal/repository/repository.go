// Package repository declares the data-accessor contracts. Services depend
// on these interfaces; internal/repository/sqldb implements them.
package repository

import (
	"context"

	"github.com/sakif/athletix/internal/model"
)

type UserRepository interface {
	// GetUser returns apperror.ErrNotFound when no row exists.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetAthlete is GetUser restricted to role = athlete.
	GetAthlete(ctx context.Context, id string) (*model.User, error)
	ListAthletes(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUserFields(ctx context.Context, id string, upd model.UserFieldsUpdate) error
}

type DetailRepository interface {
	// GetDetail returns (nil, nil) when the user has no detail row.
	GetDetail(ctx context.Context, userID string) (*model.UserDetail, error)
	ListDetails(ctx context.Context) ([]model.UserDetail, error)
	// UpsertDetail updates the row if one exists, otherwise inserts it.
	UpsertDetail(ctx context.Context, detail *model.UserDetail) error
}

// AchievementRepository mutations are owner-scoped: an id that does not
// belong to userID is silently ignored.
type AchievementRepository interface {
	ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error)
	InsertAchievement(ctx context.Context, a *model.Achievement) error
	UpdateAchievement(ctx context.Context, a *model.Achievement) error
	DeleteAchievements(ctx context.Context, userID string, ids []string) error
}

// EducationRepository follows the same ownership rule as achievements.
type EducationRepository interface {
	ListEducation(ctx context.Context, userID string) ([]model.Education, error)
	InsertEducation(ctx context.Context, e *model.Education) error
	UpdateEducation(ctx context.Context, e *model.Education) error
	DeleteEducation(ctx context.Context, userID string, ids []string) error
}

type CredentialRepository interface {
	// CreateCredential returns apperror.ErrConflict when the email is taken.
	CreateCredential(ctx context.Context, c *model.Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// UnitOfWork runs fn inside a single store transaction. Repository calls
// made with the ctx passed to fn join that transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProfileStore is everything the settings and athlete services read and write.
type ProfileStore interface {
	UserRepository
	DetailRepository
	AchievementRepository
	EducationRepository
	UnitOfWork
}
