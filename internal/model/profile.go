package model

import "time"

// UserDetail holds the extended athletic attributes. At most one per user;
// absence is a normal state, not an error.
type UserDetail struct {
	UserID       string     `json:"user_id"`
	HeightCM     *int       `json:"height_cm"`
	WeightKG     *int       `json:"weight_kg"`
	Position     *string    `json:"position"`
	JerseyNumber *string    `json:"jersey_number"`
	ContactNum   *string    `json:"contact_num"`
	Email        *string    `json:"email"`
	VideoURL     *string    `json:"video_url"`
	UpdatedAt    *time.Time `json:"-"`
}

// Achievement is owned by exactly one user. ID is assigned by the store.
type Achievement struct {
	ID          string    `json:"achievement_id"`
	UserID      string    `json:"-"`
	Title       *string   `json:"title"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Education is owned by exactly one user. ID is assigned by the store.
type Education struct {
	ID        string    `json:"education_id"`
	UserID    string    `json:"-"`
	School    *string   `json:"school"`
	Degree    *string   `json:"degree"`
	Field     *string   `json:"field"`
	StartYear *int      `json:"start_year"`
	EndYear   *int      `json:"end_year"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
