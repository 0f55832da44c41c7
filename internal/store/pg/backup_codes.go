package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BackupCodeRepo implementa repository.BackupCodeRepository.
type BackupCodeRepo struct{ pool *pgxpool.Pool }

// Replace borra el pool anterior e inserta el nuevo en una transacción.
func (r *BackupCodeRepo) Replace(ctx context.Context, userID string, hashes []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}
	const q = `INSERT INTO mfa_backup_codes (id, user_id, code_hash) VALUES (gen_random_uuid(), $1, $2)`
	for _, h := range hashes {
		if _, err := tx.Exec(ctx, q, userID, h); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Use consume el code con un UPDATE condicional: true solo si este
// llamado lo marcó como usado.
func (r *BackupCodeRepo) Use(ctx context.Context, userID, codeHash string, at time.Time) (bool, error) {
	const q = `
UPDATE mfa_backup_codes
SET used_at = $3
WHERE user_id = $1 AND code_hash = $2 AND used_at IS NULL
RETURNING id`
	var id string
	err := queryable(ctx, r.pool).QueryRow(ctx, q, userID, codeHash, at).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *BackupCodeRepo) DeleteAll(ctx context.Context, userID string) error {
	_, err := queryable(ctx, r.pool).Exec(ctx, `DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID)
	return err
}
