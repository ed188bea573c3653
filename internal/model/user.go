// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the account type chosen at registration.
type Role string

const (
	RoleAthlete   Role = "athlete"
	RoleScout     Role = "scout"
	RoleOrganizer Role = "organizer"
)

// VerificationStatus tracks whether an athlete profile has been vetted.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
)

// Genders accepted by the users.gender column.
var Genders = []string{"male", "female", "other"}

// User is the core profile row. One per subject.
//
// Nullable columns are pointers: a nil Bio and an empty Bio are different
// states, and the read model renders them differently.
type User struct {
	ID                 string             `json:"user_id"`
	Fullname           string             `json:"fullname"`
	SportID            *string            `json:"sport_id,omitempty"`
	SportName          *string            `json:"sport_name,omitempty"`
	Birthdate          *string            `json:"birthdate"` // yyyy-mm-dd
	Gender             *string            `json:"gender"`
	Bio                *string            `json:"bio"`
	Location           *string            `json:"location"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	RegistrationDate   time.Time          `json:"registration_date"`
	UpdatedAt          *time.Time         `json:"updated_at,omitempty"`
}

// UserFieldsUpdate is a partial update of the users row.
// Nil fields are left untouched; UpdatedAt is always written.
type UserFieldsUpdate struct {
	Fullname  *string
	Birthdate *string
	Gender    *string
	Location  *string
	Bio       *string
	UpdatedAt time.Time
}

// Credential is the identity-store record for password login.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
