package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/auth"
	"github.com/sakif/athletix/internal/model"
	"github.com/sakif/athletix/internal/notify"
	"github.com/sakif/athletix/internal/repository"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name      string `json:"name"      validate:"required,max=120"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required"`
	Role      string `json:"role"      validate:"omitempty,oneof=athlete scout organizer"`
	Gender    string `json:"gender"    validate:"omitempty,oneof=male female other"`
	BirthDate string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Region    string `json:"region"    validate:"max=120"`
	Sport     string `json:"sport"     validate:"max=80"`
	Bio       string `json:"bio"       validate:"max=2000"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeInput is the change-password form.
type PasswordChangeInput struct {
	Email           string `json:"email"           validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Session is returned by a successful login.
type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        SessionUser `json:"user"`
}

type SessionUser struct {
	ID       string     `json:"id"`
	Fullname string     `json:"fullname"`
	Role     model.Role `json:"role"`
}

// AccountService owns the local identity store: registration, login and
// password changes.
type AccountService struct {
	users     repository.UserRepository
	creds     repository.CredentialRepository
	uow       repository.UnitOfWork
	passwords *auth.PasswordService
	tokens    *auth.TokenService // nil disables password login
	notifier  notify.Notifier
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	creds repository.CredentialRepository,
	uow repository.UnitOfWork,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	notifier notify.Notifier,
	logger *slog.Logger,
) *AccountService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &AccountService{
		users:     users,
		creds:     creds,
		uow:       uow,
		passwords: passwords,
		tokens:    tokens,
		notifier:  notifier,
		validate:  v,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Register creates the profile row and its credential together.
// A taken email is apperror.ErrConflict.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := s.validate.Struct(in); err != nil {
		return nil, fieldError(err)
	}
	if missing := auth.PolicyViolations(in.Password); len(missing) > 0 {
		return nil, apperror.ValidationFailed("password", "Password must contain "+strings.Join(missing, ", "))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password is too long")
	}

	role := model.Role(in.Role)
	if role == "" {
		role = model.RoleAthlete
	}

	user := &model.User{
		ID:                 uuid.NewString(),
		Fullname:           in.Name,
		SportName:          optional(in.Sport),
		Birthdate:          optional(in.BirthDate),
		Gender:             optional(in.Gender),
		Bio:                optional(in.Bio),
		Location:           optional(in.Region),
		Role:               role,
		VerificationStatus: model.VerificationUnverified,
		RegistrationDate:   time.Now().UTC(),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.creds.CreateCredential(ctx, &model.Credential{
			UserID:       user.ID,
			Email:        in.Email,
			PasswordHash: hash,
		})
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "An account with this email already exists",
				Field:   "email",
			}
		}
		return nil, fmt.Errorf("service/account: registering %s: %w", in.Email, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Login checks the credential and issues an access token whose subject is
// the user id.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if s.tokens == nil {
		return nil, apperror.Forbidden("Password login is disabled")
	}

	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, fieldError(err)
	}

	userID, err := s.checkPassword(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return nil, apperror.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/account: loading user %s: %w", userID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: issuing token: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        SessionUser{ID: user.ID, Fullname: user.Fullname, Role: user.Role},
	}, nil
}

// ChangePassword verifies the current password, stores the new one, then
// notifies the account owner by email. The new password is already saved
// when a notification failure is reported.
func (s *AccountService) ChangePassword(ctx context.Context, in PasswordChangeInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return apperror.ValidationFailed(fe.Field(), "All fields are required")
				}
			}
		}
		return apperror.ValidationFailed("confirmPassword", "Passwords do not match")
	}

	email := normalizeEmail(in.Email)
	userID, err := s.checkPassword(ctx, email, in.CurrentPassword)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return apperror.Unauthorized("Current password is incorrect")
		}
		return err
	}

	hash, err := s.passwords.Hash(in.NewPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", "Password is too long")
	}
	if err := s.creds.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("service/account: updating password for %s: %w", userID, err)
	}

	s.logger.Info("password changed", slog.String("userID", userID))

	if err := s.notifier.PasswordChanged(ctx, email, time.Now()); err != nil {
		return fmt.Errorf("service/account: notifying %s: %w", userID, err)
	}
	return nil
}

// checkPassword returns the credential's user id, or ErrUnauthorized for an
// unknown email or wrong password. Both cases look the same to the caller.
func (s *AccountService) checkPassword(ctx context.Context, email, password string) (string, error) {
	cred, err := s.creds.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("invalid credentials")
		}
		return "", fmt.Errorf("service/account: loading credential: %w", err)
	}

	if err := s.passwords.Verify(cred.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return "", apperror.Unauthorized("invalid credentials")
		}
		return "", fmt.Errorf("service/account: verifying password: %w", err)
	}
	return cred.UserID, nil
}

// fieldError converts the first validator failure into a ValidationFailed.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", "Invalid request")
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "email":
		msg = "email must be a valid email address"
	case "oneof":
		msg = fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		msg = fe.Field() + " must be a date in YYYY-MM-DD format"
	case "max":
		msg = fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		msg = fe.Field() + " is invalid"
	}
	return apperror.ValidationFailed(fe.Field(), msg)
}
