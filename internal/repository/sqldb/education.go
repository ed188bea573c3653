package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/athletix/internal/model"
)

// ListEducation orders by start year with unknown years last. The
// "start_year IS NULL" key gives the same order on SQLite and PostgreSQL.
func (db *DB) ListEducation(ctx context.Context, userID string) ([]model.Education, error) {
	rows, err := db.query(ctx,
		`SELECT education_id, user_id, school, degree, field, start_year, end_year, created_at, updated_at
		 FROM education WHERE user_id = ?
		 ORDER BY start_year IS NULL, start_year ASC, created_at ASC, education_id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing education for %s: %w", userID, err)
	}
	defer rows.Close()

	out := []model.Education{}
	for rows.Next() {
		var e model.Education
		var school, degree, field sql.NullString
		var start, end sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &school, &degree, &field, &start, &end, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqldb: scanning education row: %w", err)
		}
		e.School = strPtr(school)
		e.Degree = strPtr(degree)
		e.Field = strPtr(field)
		e.StartYear = intPtr(start)
		e.EndYear = intPtr(end)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating education rows: %w", err)
	}
	return out, nil
}

func (db *DB) InsertEducation(ctx context.Context, e *model.Education) error {
	now := time.Now().UTC()
	e.ID = xid.New().String()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := db.exec(ctx,
		`INSERT INTO education (education_id, user_id, school, degree, field, start_year, end_year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID,
		nullStr(e.School), nullStr(e.Degree), nullStr(e.Field),
		nullInt(e.StartYear), nullInt(e.EndYear),
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqldb: inserting education for %s: %w", e.UserID, err)
	}
	return nil
}

func (db *DB) UpdateEducation(ctx context.Context, e *model.Education) error {
	e.UpdatedAt = time.Now().UTC()

	_, err := db.exec(ctx,
		`UPDATE education
		 SET school = ?, degree = ?, field = ?, start_year = ?, end_year = ?, updated_at = ?
		 WHERE education_id = ? AND user_id = ?`,
		nullStr(e.School), nullStr(e.Degree), nullStr(e.Field),
		nullInt(e.StartYear), nullInt(e.EndYear),
		e.UpdatedAt, e.ID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqldb: updating education %s: %w", e.ID, err)
	}
	return nil
}

func (db *DB) DeleteEducation(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := db.exec(ctx,
		`DELETE FROM education WHERE user_id = ? AND education_id IN (`+placeholders(len(ids))+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("sqldb: deleting education for %s: %w", userID, err)
	}
	return nil
}
