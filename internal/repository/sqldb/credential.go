package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/athletix/internal/apperror"
	"github.com/sakif/athletix/internal/model"
)

// CreateCredential stores a login credential. A taken email is a conflict.
func (db *DB) CreateCredential(ctx context.Context, c *model.Credential) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.exec(ctx,
		`INSERT INTO credentials (user_id, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Email, c.PasswordHash, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("credential", c.Email)
		}
		return fmt.Errorf("sqldb: inserting credential for %s: %w", c.UserID, err)
	}
	return nil
}

// GetCredentialByEmail returns apperror.ErrNotFound for an unknown email.
func (db *DB) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var c model.Credential
	err := db.queryRow(ctx,
		`SELECT user_id, email, password_hash, created_at, updated_at
		 FROM credentials WHERE email = ?`,
		email,
	).Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("credential", email)
		}
		return nil, fmt.Errorf("sqldb: getting credential: %w", err)
	}
	return &c, nil
}

func (db *DB) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := db.exec(ctx,
		`UPDATE credentials SET password_hash = ?, updated_at = ? WHERE user_id = ?`,
		hash, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqldb: updating password for %s: %w", userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("credential", userID)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
