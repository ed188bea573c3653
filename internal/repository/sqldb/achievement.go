package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/athletix/internal/model"
)

// ListAchievements returns the user's achievements oldest first.
// xid ids sort by creation time, so they break created_at ties.
func (db *DB) ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	rows, err := db.query(ctx,
		`SELECT achievement_id, user_id, title, year, description, created_at, updated_at
		 FROM achievements WHERE user_id = ?
		 ORDER BY created_at ASC, achievement_id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing achievements for %s: %w", userID, err)
	}
	defer rows.Close()

	out := []model.Achievement{}
	for rows.Next() {
		var a model.Achievement
		var title, desc sql.NullString
		var year sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &title, &year, &desc, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqldb: scanning achievement row: %w", err)
		}
		a.Title = strPtr(title)
		a.Year = intPtr(year)
		a.Description = strPtr(desc)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating achievement rows: %w", err)
	}
	return out, nil
}

// InsertAchievement assigns a new id and timestamps, then inserts.
func (db *DB) InsertAchievement(ctx context.Context, a *model.Achievement) error {
	now := time.Now().UTC()
	a.ID = xid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := db.exec(ctx,
		`INSERT INTO achievements (achievement_id, user_id, title, year, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, nullStr(a.Title), nullInt(a.Year), nullStr(a.Description), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqldb: inserting achievement for %s: %w", a.UserID, err)
	}
	return nil
}

// UpdateAchievement matches on both id and owner. A foreign or unknown id
// updates nothing.
func (db *DB) UpdateAchievement(ctx context.Context, a *model.Achievement) error {
	a.UpdatedAt = time.Now().UTC()

	_, err := db.exec(ctx,
		`UPDATE achievements SET title = ?, year = ?, description = ?, updated_at = ?
		 WHERE achievement_id = ? AND user_id = ?`,
		nullStr(a.Title), nullInt(a.Year), nullStr(a.Description), a.UpdatedAt, a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqldb: updating achievement %s: %w", a.ID, err)
	}
	return nil
}

// DeleteAchievements removes the listed ids that belong to userID.
func (db *DB) DeleteAchievements(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := db.exec(ctx,
		`DELETE FROM achievements WHERE user_id = ? AND achievement_id IN (`+placeholders(len(ids))+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("sqldb: deleting achievements for %s: %w", userID, err)
	}
	return nil
}
