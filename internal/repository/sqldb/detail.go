package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/athletix/internal/model"
)

const detailColumns = `user_id, height_cm, weight_kg, position, jersey_number, contact_num, email, video_url, updated_at`

func scanDetail(s rowScanner) (*model.UserDetail, error) {
	var d model.UserDetail
	var height, weight sql.NullInt64
	var position, jersey, contact, email, video sql.NullString
	var updatedAt sql.NullTime

	if err := s.Scan(&d.UserID, &height, &weight, &position, &jersey, &contact, &email, &video, &updatedAt); err != nil {
		return nil, err
	}

	d.HeightCM = intPtr(height)
	d.WeightKG = intPtr(weight)
	d.Position = strPtr(position)
	d.JerseyNumber = strPtr(jersey)
	d.ContactNum = strPtr(contact)
	d.Email = strPtr(email)
	d.VideoURL = strPtr(video)
	if updatedAt.Valid {
		t := updatedAt.Time
		d.UpdatedAt = &t
	}
	return &d, nil
}

// GetDetail returns (nil, nil) when the user has no detail row.
func (db *DB) GetDetail(ctx context.Context, userID string) (*model.UserDetail, error) {
	d, err := scanDetail(db.queryRow(ctx,
		`SELECT `+detailColumns+` FROM user_details WHERE user_id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqldb: getting details for %s: %w", userID, err)
	}
	return d, nil
}

// ListDetails returns every detail row. The athlete list pairs these with
// users in memory.
func (db *DB) ListDetails(ctx context.Context) ([]model.UserDetail, error) {
	rows, err := db.query(ctx, `SELECT `+detailColumns+` FROM user_details`)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing details: %w", err)
	}
	defer rows.Close()

	details := []model.UserDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("sqldb: scanning detail row: %w", err)
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating detail rows: %w", err)
	}
	return details, nil
}

// UpsertDetail overwrites every detail column. Nil fields are written as NULL.
func (db *DB) UpsertDetail(ctx context.Context, d *model.UserDetail) error {
	var exists int
	err := db.queryRow(ctx,
		`SELECT COUNT(*) FROM user_details WHERE user_id = ?`, d.UserID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqldb: checking details for %s: %w", d.UserID, err)
	}

	now := time.Now().UTC()
	d.UpdatedAt = &now

	if exists > 0 {
		_, err = db.exec(ctx,
			`UPDATE user_details
			 SET height_cm = ?, weight_kg = ?, position = ?, jersey_number = ?,
			     contact_num = ?, email = ?, video_url = ?, updated_at = ?
			 WHERE user_id = ?`,
			nullInt(d.HeightCM),
			nullInt(d.WeightKG),
			nullStr(d.Position),
			nullStr(d.JerseyNumber),
			nullStr(d.ContactNum),
			nullStr(d.Email),
			nullStr(d.VideoURL),
			now,
			d.UserID,
		)
		if err != nil {
			return fmt.Errorf("sqldb: updating details for %s: %w", d.UserID, err)
		}
		return nil
	}

	_, err = db.exec(ctx,
		`INSERT INTO user_details (`+detailColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.UserID,
		nullInt(d.HeightCM),
		nullInt(d.WeightKG),
		nullStr(d.Position),
		nullStr(d.JerseyNumber),
		nullStr(d.ContactNum),
		nullStr(d.Email),
		nullStr(d.VideoURL),
		now,
	)
	if err != nil {
		return fmt.Errorf("sqldb: inserting details for %s: %w", d.UserID, err)
	}
	return nil
}
