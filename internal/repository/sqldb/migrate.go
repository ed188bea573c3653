package sqldb

import (
	"context"
	"fmt"
	"strings"
)

// schema is applied statement by statement. %TS% becomes the dialect's
// timestamp type. Dates of birth stay TEXT (yyyy-mm-dd) on both dialects so
// the driver never reinterprets them as instants.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id             TEXT PRIMARY KEY,
		fullname            TEXT NOT NULL DEFAULT '',
		sport_id            TEXT,
		sport_name          TEXT,
		birthdate           TEXT,
		gender              TEXT CHECK (gender IN ('male', 'female', 'other')),
		bio                 TEXT,
		location            TEXT,
		role                TEXT NOT NULL DEFAULT 'athlete'
		                    CHECK (role IN ('athlete', 'scout', 'organizer')),
		verification_status TEXT NOT NULL DEFAULT 'unverified'
		                    CHECK (verification_status IN ('unverified', 'pending', 'verified')),
		registration_date   %TS% NOT NULL,
		updated_at          %TS%
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,

	`CREATE TABLE IF NOT EXISTS user_details (
		user_id       TEXT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
		height_cm     INTEGER,
		weight_kg     INTEGER,
		position      TEXT,
		jersey_number TEXT,
		contact_num   TEXT,
		email         TEXT,
		video_url     TEXT,
		updated_at    %TS%
	)`,

	`CREATE TABLE IF NOT EXISTS achievements (
		achievement_id TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		title          TEXT,
		year           INTEGER,
		description    TEXT,
		created_at     %TS% NOT NULL,
		updated_at     %TS% NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS education (
		education_id TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		school       TEXT,
		degree       TEXT,
		field        TEXT,
		start_year   INTEGER,
		end_year     INTEGER,
		created_at   %TS% NOT NULL,
		updated_at   %TS% NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_education_user ON education(user_id, start_year)`,

	`CREATE TABLE IF NOT EXISTS credentials (
		user_id       TEXT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    %TS% NOT NULL,
		updated_at    %TS% NOT NULL
	)`,
}

// Migrate creates any missing tables and indexes. Safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	ts := "DATETIME"
	if db.dialect == Postgres {
		ts = "TIMESTAMPTZ"
	}

	for i, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, strings.ReplaceAll(stmt, "%TS%", ts)); err != nil {
			return fmt.Errorf("sqldb: migration step %d: %w", i+1, err)
		}
	}
	return nil
}
