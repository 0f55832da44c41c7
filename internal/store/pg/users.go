package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machwork/identity/internal/domain/repository"
)

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ pool *pgxpool.Pool }

const userCols = `id, email, password_hash, first_name, last_name,
email_verified_at, mfa_enabled, mfa_secret, is_active, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, input repository.CreateUserInput) (*repository.User, error) {
	const q = `
INSERT INTO users (id, email, password_hash, first_name, last_name, is_active)
VALUES (gen_random_uuid(), LOWER($1), $2, $3, $4, true)
RETURNING ` + userCols
	row := queryable(ctx, r.pool).QueryRow(ctx, q, input.Email, input.PasswordHash, input.FirstName, input.LastName)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = LOWER($1) LIMIT 1`
	u, err := scanUser(queryable(ctx, r.pool).QueryRow(ctx, q, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1 LIMIT 1`
	u, err := scanUser(queryable(ctx, r.pool).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) SetEmailVerified(ctx context.Context, userID string, at time.Time) error {
	const q = `UPDATE users SET email_verified_at = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, userID, at)
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, userID, hash)
}

func (r *UserRepo) SetMFASecret(ctx context.Context, userID, secret string) error {
	const q = `UPDATE users SET mfa_secret = $2, mfa_enabled = false, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, userID, secret)
}

func (r *UserRepo) EnableMFA(ctx context.Context, userID string) error {
	const q = `UPDATE users SET mfa_enabled = true, updated_at = now() WHERE id = $1 AND mfa_secret IS NOT NULL`
	return r.exec(ctx, q, userID)
}

func (r *UserRepo) DisableMFA(ctx context.Context, userID string) error {
	const q = `UPDATE users SET mfa_enabled = false, mfa_secret = NULL, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, userID)
}

func (r *UserRepo) exec(ctx context.Context, q string, args ...any) error {
	tag, err := queryable(ctx, r.pool).Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmailVerifiedAt, &u.MFAEnabled, &u.MFASecret, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
