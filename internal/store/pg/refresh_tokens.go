package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machwork/identity/internal/domain/repository"
)

// RefreshTokenRepo implementa repository.RefreshTokenRepository.
type RefreshTokenRepo struct{ pool *pgxpool.Pool }

func (r *RefreshTokenRepo) Create(ctx context.Context, input repository.CreateRefreshTokenInput) (string, error) {
	const q = `
INSERT INTO refresh_tokens (id, user_id, jti, token_hash, issued_at, expires_at)
VALUES (gen_random_uuid(), $1, $2, $3, now(), $4)
RETURNING id`
	var id string
	if err := queryable(ctx, r.pool).QueryRow(ctx, q, input.UserID, input.JTI, input.TokenHash, input.ExpiresAt).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Rotate: revocar-si-activo + insertar reemplazo + enlazar replaced_by,
// todo en una transacción. El UPDATE condicional garantiza que de dos
// rotaciones concurrentes con el mismo hash solo una gana.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, oldHash string, next repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const qRevoke = `
UPDATE refresh_tokens
SET revoked_at = now()
WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > now()
RETURNING id, user_id, jti, token_hash, issued_at, expires_at, revoked_at, replaced_by`
	var old repository.RefreshToken
	err = tx.QueryRow(ctx, qRevoke, oldHash).Scan(
		&old.ID, &old.UserID, &old.JTI, &old.TokenHash,
		&old.IssuedAt, &old.ExpiresAt, &old.RevokedAt, &old.ReplacedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ya rotado, revocado o vencido: siempre falla, sin gracia
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	const qInsert = `
INSERT INTO refresh_tokens (id, user_id, jti, token_hash, issued_at, expires_at)
VALUES (gen_random_uuid(), $1, $2, $3, now(), $4)
RETURNING id`
	var newID string
	if err := tx.QueryRow(ctx, qInsert, next.UserID, next.JTI, next.TokenHash, next.ExpiresAt).Scan(&newID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE refresh_tokens SET replaced_by = $2 WHERE id = $1`, old.ID, newID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	old.ReplacedBy = &newID
	return &old, nil
}

func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	const q = `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	tag, err := queryable(ctx, r.pool).Exec(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
