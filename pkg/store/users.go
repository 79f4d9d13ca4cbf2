package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/types"
)

// ErrNotFound is returned by single-row fetches that match zero rows.
var ErrNotFound = errors.New("not found")

// InsertUser persists a new user. passwordHash must already be hashed —
// this layer never hashes or verifies passwords (that's pkg/auth).
func InsertUser(ctx context.Context, db DBTX, email, passwordHash, firstName, lastName string) (types.User, error) {
	id := uuid.NewString()
	row := db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, password_hash, first_name, last_name, created_at, updated_at
	`, id, email, passwordHash, firstName, lastName)
	return scanUser(row)
}

// GetUserByID fetches a user by id.
func GetUserByID(ctx context.Context, db DBTX, id string) (types.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email, including the stored password
// hash, for use by the login use case (spec §4.4).
func GetUserByEmail(ctx context.Context, db DBTX, email string) (types.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

// UpdateUserPassword overwrites the stored password hash.
func UpdateUserPassword(ctx context.Context, db DBTX, id, passwordHash string) error {
	tag, err := db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.User{}, ErrNotFound
	}
	if err != nil {
		return types.User{}, apperr.WrapPersistence(err)
	}
	return u, nil
}
