package repository

import (
	"context"
	"time"
)

// MfaBackupCode es un código de recuperación de un solo uso.
type MfaBackupCode struct {
	ID       string
	UserID   string
	CodeHash string
	UsedAt   *time.Time
}

// BackupCodeRepository define operaciones sobre los backup codes de MFA.
type BackupCodeRepository interface {
	// Replace reemplaza el pool completo del usuario por los hashes dados.
	// Se invoca una vez por ciclo de enable; los codes no sobreviven
	// generaciones de MFA.
	Replace(ctx context.Context, userID string, hashes []string) error

	// Use marca un code como usado si existe y used_at IS NULL, en una sola
	// operación atómica. Retorna true solo si el code fue consumido ahora.
	Use(ctx context.Context, userID, codeHash string, at time.Time) (bool, error)

	// DeleteAll elimina el pool completo del usuario (disable de MFA).
	DeleteAll(ctx context.Context, userID string) error
}
