package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/model"
)

const userColumns = `user_id, fullname, sport_id, sport_name, birthdate, gender, bio, location,
	role, verification_status, registration_date, updated_at`

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	var sportID, sportName, birthdate, gender, bio, loc sql.NullString
	var role, status string
	var updatedAt sql.NullTime

	err := s.Scan(
		&u.ID,
		&u.Fullname,
		&sportID,
		&sportName,
		&birthdate,
		&gender,
		&bio,
		&loc,
		&role,
		&status,
		&u.RegistrationDate,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.SportID = strPtr(sportID)
	u.SportName = strPtr(sportName)
	u.Birthdate = strPtr(birthdate)
	u.Gender = strPtr(gender)
	u.Bio = strPtr(bio)
	u.Location = strPtr(loc)
	u.Role = model.Role(role)
	u.VerificationStatus = model.VerificationStatus(status)
	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}
	return &u, nil
}

// GetUser returns apperror.ErrNotFound if no user has that id.
func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqldb: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetAthlete is GetUser restricted to athlete accounts. A scout's id is
// reported as not found.
func (db *DB) GetAthlete(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ? AND role = ?`,
		id, string(model.RoleAthlete)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("athlete", id)
		}
		return nil, fmt.Errorf("sqldb: getting athlete %s: %w", id, err)
	}
	return u, nil
}

func (db *DB) ListAthletes(ctx context.Context) ([]model.User, error) {
	rows, err := db.query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ?
		 ORDER BY registration_date ASC, user_id ASC`,
		string(model.RoleAthlete))
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing athletes: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqldb: scanning athlete row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating athlete rows: %w", err)
	}
	return users, nil
}

// CreateUser inserts a new profile row. The caller assigns the id.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = model.RoleAthlete
	}
	if u.VerificationStatus == "" {
		u.VerificationStatus = model.VerificationUnverified
	}

	_, err := db.exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Fullname,
		nullStr(u.SportID),
		nullStr(u.SportName),
		nullStr(u.Birthdate),
		nullStr(u.Gender),
		nullStr(u.Bio),
		nullStr(u.Location),
		string(u.Role),
		string(u.VerificationStatus),
		u.RegistrationDate,
		nil,
	)
	if err != nil {
		return fmt.Errorf("sqldb: inserting user %s: %w", u.ID, err)
	}
	return nil
}

// UpdateUserFields writes only the non-nil fields plus updated_at.
// Updating a user that does not exist affects no rows and is not an error.
func (db *DB) UpdateUserFields(ctx context.Context, id string, upd model.UserFieldsUpdate) error {
	sets := []string{}
	args := []any{}

	add := func(column string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, column+" = ?")
		args = append(args, *v)
	}
	add("fullname", upd.Fullname)
	add("birthdate", upd.Birthdate)
	add("gender", upd.Gender)
	add("location", upd.Location)
	add("bio", upd.Bio)

	if upd.UpdatedAt.IsZero() {
		upd.UpdatedAt = time.Now().UTC()
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, upd.UpdatedAt, id)

	_, err := db.exec(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE user_id = ?`,
		args...)
	if err != nil {
		return fmt.Errorf("sqldb: updating user %s: %w", id, err)
	}
	return nil
}
