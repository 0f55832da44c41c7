package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machwork/identity/internal/domain/repository"
)

// ActionTokenRepo implementa repository.ActionTokenRepository.
type ActionTokenRepo struct{ pool *pgxpool.Pool }

func (r *ActionTokenRepo) Create(ctx context.Context, input repository.CreateActionTokenInput) (*repository.ActionToken, error) {
	const q = `
INSERT INTO action_tokens (id, user_id, purpose, token_hash, expires_at)
VALUES (gen_random_uuid(), $1, $2, $3, $4)
RETURNING id, created_at`
	t := repository.ActionToken{
		UserID:    input.UserID,
		Purpose:   input.Purpose,
		TokenHash: input.TokenHash,
		ExpiresAt: input.ExpiresAt,
	}
	err := queryable(ctx, r.pool).QueryRow(ctx, q, input.UserID, input.Purpose, input.TokenHash, input.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume marca el token como usado en un solo UPDATE condicional.
// Dos consumos concurrentes del mismo token: uno gana, el otro ve
// used_at ya seteado.
func (r *ActionTokenRepo) Consume(ctx context.Context, purpose repository.ActionTokenPurpose, tokenHash string, at time.Time) (string, error) {
	const q = `
UPDATE action_tokens
SET used_at = $3
WHERE purpose = $1 AND token_hash = $2 AND used_at IS NULL AND expires_at > $3
RETURNING user_id`
	var userID string
	err := queryable(ctx, r.pool).QueryRow(ctx, q, purpose, tokenHash, at).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	// distinguir inexistente de usado/expirado
	const qExists = `SELECT EXISTS (SELECT 1 FROM action_tokens WHERE purpose = $1 AND token_hash = $2)`
	var exists bool
	if err := queryable(ctx, r.pool).QueryRow(ctx, qExists, purpose, tokenHash).Scan(&exists); err != nil {
		return "", err
	}
	if exists {
		return "", repository.ErrTokenExpired
	}
	return "", repository.ErrNotFound
}

func (r *ActionTokenRepo) DeleteExpired(ctx context.Context) (int, error) {
	const q = `DELETE FROM action_tokens WHERE used_at IS NOT NULL OR expires_at < now()`
	tag, err := queryable(ctx, r.pool).Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
